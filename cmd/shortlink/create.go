package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/IgorGrieder/shortlink/internal/auth"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/spf13/cobra"
)

// Exit codes of the create command, one per failure kind.
const (
	exitValidation    = 1
	exitAuthorization = 2
	exitCreation      = 3
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type createOptions struct {
	url    string
	alias  string
	token  string
	asJSON bool
}

type createResult struct {
	Alias       string `json:"alias"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
}

type failureResult struct {
	Kind        string `json:"kind"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message,omitempty"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

func newCreateCmd() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a short link",
		Example: `  shortlink create --url https://example.com/very/long/path
  shortlink create --url https://example.com --alias docs --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token := cfg.Auth.Token
			if cmd.Flags().Changed("token") {
				token = opts.token
			}

			svc := newLinkService(cfg, auth.Static(token))
			return runCreate(cmd, svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "long link to shorten")
	cmd.Flags().StringVar(&opts.alias, "alias", "", "custom alias, generated when empty")
	cmd.Flags().StringVar(&opts.token, "token", "", "auth token, overrides AUTH_TOKEN")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runCreate(cmd *cobra.Command, svc *links.Service, opts createOptions) error {
	link, err := svc.CreateShortLink(cmd.Context(), links.LinkRequest{
		OriginalURL: opts.url,
		Alias:       opts.alias,
	})
	if err != nil {
		f, ok := links.AsFailure(err)
		if !ok {
			return err
		}
		writeFailure(cmd.ErrOrStderr(), f, opts.asJSON)
		return &exitError{code: exitCode(f.Kind), err: f}
	}

	shortURL := svc.AliasToLink(link.Alias)
	out := cmd.OutOrStdout()
	if opts.asJSON {
		return json.NewEncoder(out).Encode(createResult{
			Alias:       link.Alias,
			OriginalURL: link.OriginalURL,
			ShortURL:    shortURL,
		})
	}
	_, err = fmt.Fprintln(out, shortURL)
	return err
}

func writeFailure(w io.Writer, f *links.Failure, asJSON bool) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(failureResult{
			Kind:        f.Kind.String(),
			Field:       f.Field,
			Message:     f.Message,
			Code:        string(f.Code),
			Name:        f.Descriptor.Name,
			Description: f.Descriptor.Description,
		})
		return
	}
	fmt.Fprintf(w, "%s error: %s\n", f.Kind, f.Error())
}

func exitCode(kind links.Kind) int {
	switch kind {
	case links.KindValidation:
		return exitValidation
	case links.KindAuthorization:
		return exitAuthorization
	default:
		return exitCreation
	}
}
