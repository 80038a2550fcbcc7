package links

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/validation"
)

const (
	MaxLongLinkLength    = 2048
	MaxCustomAliasLength = 50
)

var (
	ErrLongLinkEmpty    = errors.New("long link cannot be empty")
	ErrLongLinkTooLong  = fmt.Errorf("long link cannot be longer than %d characters", MaxLongLinkLength)
	ErrLongLinkNotURL   = errors.New("long link has to be a valid http or https URL")
	ErrAliasTooLong     = fmt.Errorf("custom alias cannot be longer than %d characters", MaxCustomAliasLength)
	ErrAliasInvalidChar = errors.New("custom alias may only contain letters, digits, hyphens and underscores")
)

// ValidateLongLink checks that value is a non-empty http(s) URL within the
// length limit. Surrounding whitespace is rejected, not trimmed.
func ValidateLongLink(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ErrLongLinkEmpty
	}
	if trimmed != value {
		return ErrLongLinkNotURL
	}
	if utf8.RuneCountInString(value) > MaxLongLinkLength {
		return ErrLongLinkTooLong
	}
	if err := validation.Var(value, "http_url"); err != nil {
		return ErrLongLinkNotURL
	}
	return nil
}

// ValidateCustomAlias accepts the empty alias, meaning "generate one".
func ValidateCustomAlias(value string) error {
	if value == "" {
		return nil
	}
	if utf8.RuneCountInString(value) > MaxCustomAliasLength {
		return ErrAliasTooLong
	}
	if err := validation.Var(value, "alias"); err != nil {
		return ErrAliasInvalidChar
	}
	return nil
}
