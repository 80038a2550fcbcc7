package middleware

import (
	"net/http"
	"time"

	"github.com/IgorGrieder/shortlink/internal/auth"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietRoutes are logged at debug level only.
var quietRoutes = map[string]struct{}{
	"GET /health":  {},
	"GET /metrics": {},
}

// LoggingMiddleware pins a correlation id on the request, so the envelope
// written by httputils and the log line share it, then logs the outcome.
// Only the presence of a bearer token is logged, never its value.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		correlationID := r.Header.Get(httputils.CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
			r.Header.Set(httputils.CorrelationIDHeader, correlationID)
		}
		_, hasToken := auth.BearerToken(r.Header.Get(AuthorizationHeader))

		wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = r.Method + " " + normalizePath(r.URL.Path)
		}

		fields := []zap.Field{
			zap.String("correlation_id", correlationID),
			zap.String("route", route),
			zap.Int("status", wrapped.statusCode),
			zap.Int("bytes", wrapped.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("bearer_token", hasToken),
		}

		span := trace.SpanFromContext(r.Context())
		if span.SpanContext().IsValid() {
			fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
		}

		if ce := logger.L().Check(requestLevel(r.Pattern, wrapped.statusCode), "request completed"); ce != nil {
			ce.Write(fields...)
		}
	})
}

func requestLevel(pattern string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	if _, ok := quietRoutes[pattern]; ok {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *loggingResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}
