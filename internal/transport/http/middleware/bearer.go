package middleware

import (
	"net/http"

	"github.com/IgorGrieder/shortlink/internal/auth"
	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
)

const AuthorizationHeader = "Authorization"

// BearerTokenMiddleware copies the bearer token of the request into its
// context, where auth.FromContext picks it up. When required is false a
// missing token is left for the link pipeline to report.
func BearerTokenMiddleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get(AuthorizationHeader))
			if !ok {
				if required {
					httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithToken(r.Context(), token)))
		})
	}
}
