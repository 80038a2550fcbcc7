package links

import (
	"context"
	"errors"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
)

var (
	ErrTransport    = errors.New("link backend unreachable")
	ErrEmptyPayload = errors.New("link backend returned no payload")
	ErrNoAuthToken  = errors.New("no auth token available")
)

// CaptchaActionCreateShortLink names the bot-mitigation action for link creation.
const CaptchaActionCreateShortLink = "createShortLink"

// URLCreator performs one createURL mutation per call. Backend-reported
// failures come back as *RemoteError; anything else is a transport failure.
type URLCreator interface {
	CreateURL(ctx context.Context, in CreateURLInput) (CreatedLink, error)
}

type AuthTokenProvider interface {
	AuthToken(ctx context.Context) (string, error)
}

type CaptchaProvider interface {
	Execute(ctx context.Context, action string) (string, error)
}

type DescriptorResolver interface {
	Resolve(code taxonomy.Code) taxonomy.Descriptor
}

// RemoteError carries every extensions.code from a failed mutation, in the
// order the backend reported them.
type RemoteError struct {
	Codes []taxonomy.Code
}

func (e *RemoteError) Error() string {
	if len(e.Codes) == 0 {
		return "link backend rejected the request"
	}
	return fmt.Sprintf("link backend rejected the request: %v", e.Codes)
}
