package main

import (
	"github.com/IgorGrieder/shortlink/internal/captcha"
	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
	storage "github.com/IgorGrieder/shortlink/internal/storage/graphql"
	gql "github.com/IgorGrieder/shortlink/pkg/graphql"
)

// newLinkService wires the pipeline against the configured backend. The auth
// provider differs between the CLI and the gateway.
func newLinkService(cfg *config.Config, authProvider links.AuthTokenProvider) *links.Service {
	breaker := gql.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout, logger.L())
	client := gql.NewClient(
		storage.Endpoint(cfg.API.GraphQLBaseURL),
		gql.WithTimeout(cfg.API.Timeout),
		gql.WithCircuitBreaker(breaker),
		gql.WithLogger(logger.L()),
	)

	return links.NewService(links.Deps{
		Creator:  storage.NewURLClient(client),
		Auth:     authProvider,
		Captcha:  captcha.New(cfg.Captcha.Response),
		Resolver: taxonomy.NewResolver(nil),
	}, cfg.API.HTTPBaseURL)
}
