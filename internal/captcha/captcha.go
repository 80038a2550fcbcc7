// Package captcha supplies bot-mitigation responses for createURL calls.
//
// Verification is currently bypassed: the backend accepts the Placeholder
// response. Swapping the provider re-enables it without touching callers.
package captcha

import (
	"context"
	"errors"
	"strings"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
)

// Placeholder is the response sent while verification is bypassed.
const Placeholder = "null"

var ErrNoResponse = errors.New("captcha: no response available")

var (
	_ links.CaptchaProvider = Bypass{}
	_ links.CaptchaProvider = Static("")
)

// Bypass answers every action with Placeholder.
type Bypass struct{}

func (Bypass) Execute(context.Context, string) (string, error) {
	return Placeholder, nil
}

// Static answers every action with a preconfigured response token.
type Static string

func (s Static) Execute(context.Context, string) (string, error) {
	response := strings.TrimSpace(string(s))
	if response == "" {
		return "", ErrNoResponse
	}
	return response, nil
}

// New returns Static(response) when response is set and Bypass otherwise.
func New(response string) links.CaptchaProvider {
	if strings.TrimSpace(response) == "" {
		return Bypass{}
	}
	return Static(response)
}
