package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
	gql "github.com/IgorGrieder/shortlink/pkg/graphql"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Path is appended to the configured GraphQL base URL.
const Path = "/graphql"

const RequestIDHeader = "X-Request-Id"

const createURLMutation = `
mutation params(
  $captchaResponse: String!
  $urlInput: URLInput!
  $authToken: String!
) {
  createURL(
    captchaResponse: $captchaResponse
    url: $urlInput
    authToken: $authToken
  ) {
    alias
    originalURL
  }
}`

var _ links.URLCreator = (*URLClient)(nil)

// urlInput mirrors the URLInput schema type. CustomAlias has no omitempty so
// a nil alias is sent as an explicit null.
type urlInput struct {
	OriginalURL string  `json:"originalURL"`
	CustomAlias *string `json:"customAlias"`
}

type createURLData struct {
	CreateURL *links.CreatedLink `json:"createURL"`
}

// URLClient issues the createURL mutation.
type URLClient struct {
	client *gql.Client
	tracer trace.Tracer
}

// Endpoint joins baseURL with Path.
func Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + Path
}

func NewURLClient(client *gql.Client) *URLClient {
	return &URLClient{
		client: client,
		tracer: otel.Tracer("shortlink/storage/graphql"),
	}
}

// CreateURL sends exactly one request. Backend errors come back as
// *links.RemoteError, everything else wraps links.ErrTransport. A response
// without data yields an empty CreatedLink and no error.
func (c *URLClient) CreateURL(ctx context.Context, in links.CreateURLInput) (links.CreatedLink, error) {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "graphql.createURL",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.type", "mutation"),
			attribute.String("graphql.operation.name", "createURL"),
			attribute.Bool("shortlink.custom_alias", in.CustomAlias != nil),
			attribute.String("shortlink.request_id", requestID),
		),
	)
	defer span.End()

	var data createURLData
	err := c.client.Do(ctx, gql.Request{
		Query:         createURLMutation,
		OperationName: "params",
		Variables: map[string]any{
			"captchaResponse": in.CaptchaResponse,
			"urlInput": urlInput{
				OriginalURL: in.OriginalURL,
				CustomAlias: in.CustomAlias,
			},
			"authToken": in.AuthToken,
		},
	}, &data, map[string]string{RequestIDHeader: requestID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "createURL failed")
		return links.CreatedLink{}, mapError(err)
	}

	if data.CreateURL == nil {
		return links.CreatedLink{}, nil
	}
	return *data.CreateURL, nil
}

func mapError(err error) error {
	var gqlErrs gql.Errors
	if errors.As(err, &gqlErrs) {
		raw := gqlErrs.Codes()
		out := make([]taxonomy.Code, len(raw))
		for i, code := range raw {
			out[i] = taxonomy.Code(code)
		}
		return &links.RemoteError{Codes: out}
	}
	return fmt.Errorf("%w: %w", links.ErrTransport, err)
}
