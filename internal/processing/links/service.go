package links

import (
	"context"
	"errors"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
)

// RedirectPath is the path segment the public host serves short links under.
const RedirectPath = "/r/"

type Deps struct {
	Creator  URLCreator
	Auth     AuthTokenProvider
	Captcha  CaptchaProvider
	Resolver DescriptorResolver
}

// Service runs the short-link creation pipeline. It holds read-only
// collaborators only and is safe for concurrent use.
type Service struct {
	creator       URLCreator
	auth          AuthTokenProvider
	captcha       CaptchaProvider
	resolver      DescriptorResolver
	publicBaseURL string
}

func NewService(deps Deps, publicBaseURL string) *Service {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = taxonomy.NewResolver(nil)
	}

	return &Service{
		creator:       deps.Creator,
		auth:          deps.Auth,
		captcha:       deps.Captcha,
		resolver:      resolver,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// CreateShortLink validates req, invokes the createURL mutation once and
// classifies the outcome. Every returned error is a *Failure. The long link
// is trimmed once; the trimmed value is both validated and sent.
func (s *Service) CreateShortLink(ctx context.Context, req LinkRequest) (CreatedLink, error) {
	req.OriginalURL = strings.TrimSpace(req.OriginalURL)
	if err := ValidateLongLink(req.OriginalURL); err != nil {
		return CreatedLink{}, validationFailure(FieldLongLink, err)
	}
	if err := ValidateCustomAlias(req.Alias); err != nil {
		return CreatedLink{}, validationFailure(FieldCustomAlias, err)
	}

	token, err := s.authToken(ctx)
	if err != nil {
		return CreatedLink{}, authorizationFailure(err)
	}

	captchaResponse, err := s.captchaResponse(ctx)
	if err != nil {
		return CreatedLink{}, creationFailure(taxonomy.CodeNotHuman, s.resolver.Resolve(taxonomy.CodeNotHuman), err)
	}

	var alias *string
	if req.Alias != "" {
		a := req.Alias
		alias = &a
	}

	link, err := s.creator.CreateURL(ctx, CreateURLInput{
		OriginalURL:     req.OriginalURL,
		CustomAlias:     alias,
		AuthToken:       token,
		CaptchaResponse: captchaResponse,
	})
	if err != nil {
		return CreatedLink{}, s.classify(err)
	}
	if link.IsEmpty() {
		return CreatedLink{}, creationFailure("", taxonomy.Unknown, ErrEmptyPayload)
	}

	return link, nil
}

// AliasToLink builds the shareable short URL for alias. It does not validate.
func (s *Service) AliasToLink(alias string) string {
	return s.publicBaseURL + RedirectPath + alias
}

func (s *Service) classify(err error) *Failure {
	var remote *RemoteError
	if !errors.As(err, &remote) {
		return creationFailure("", taxonomy.Unknown, err)
	}

	code, ok := taxonomy.Prioritize(remote.Codes)
	if !ok {
		return creationFailure("", taxonomy.Unknown, err)
	}
	if taxonomy.IsAuthorization(code) {
		return authorizationFailure(err)
	}
	return creationFailure(code, s.resolver.Resolve(code), err)
}

func (s *Service) authToken(ctx context.Context) (string, error) {
	if s.auth == nil {
		return "", ErrNoAuthToken
	}
	token, err := s.auth.AuthToken(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoAuthToken
	}
	return token, nil
}

func (s *Service) captchaResponse(ctx context.Context) (string, error) {
	if s.captcha == nil {
		return "", errors.New("captcha provider not configured")
	}
	return s.captcha.Execute(ctx, CaptchaActionCreateShortLink)
}
