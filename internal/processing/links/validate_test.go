package links

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLongLink(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"valid https", "https://example.com/path", nil},
		{"valid http with query", "http://example.com/?a=b", nil},
		{"empty", "", ErrLongLinkEmpty},
		{"whitespace only", "   ", ErrLongLinkEmpty},
		{"no scheme", "example.com", ErrLongLinkNotURL},
		{"bad scheme", "ftp://example.com", ErrLongLinkNotURL},
		{"missing host", "https://", ErrLongLinkNotURL},
		{"plain words", "hello world", ErrLongLinkNotURL},
		{"padded", " https://example.com\n", ErrLongLinkNotURL},
		{"trailing space", "https://example.com ", ErrLongLinkNotURL},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxLongLinkLength), ErrLongLinkTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLongLink(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLongLink(%q) = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLongLink_Deterministic(t *testing.T) {
	for range 3 {
		if err := ValidateLongLink("not-a-url"); !errors.Is(err, ErrLongLinkNotURL) {
			t.Fatalf("got %v", err)
		}
	}
}

func TestValidateCustomAlias(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"empty means auto-generate", "", nil},
		{"letters and digits", "abc123", nil},
		{"hyphen and underscore", "my-link_v2", nil},
		{"exactly max length", strings.Repeat("a", MaxCustomAliasLength), nil},
		{"space", "my link", ErrAliasInvalidChar},
		{"slash", "a/b", ErrAliasInvalidChar},
		{"dot", "a.b", ErrAliasInvalidChar},
		{"too long", strings.Repeat("a", MaxCustomAliasLength+1), ErrAliasTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomAlias(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCustomAlias(%q) = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
