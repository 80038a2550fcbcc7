package events

import (
	"time"

	"github.com/google/uuid"
)

// LinkCreated is emitted after the gateway created a short link.
type LinkCreated struct {
	EventID     string `json:"eventId"`
	Alias       string `json:"alias"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	OccurredAt  string `json:"occurredAt"`
}

func NewLinkCreated(alias, originalURL, shortURL string, at time.Time) LinkCreated {
	return LinkCreated{
		EventID:     uuid.NewString(),
		Alias:       alias,
		OriginalURL: originalURL,
		ShortURL:    shortURL,
		OccurredAt:  at.UTC().Format(time.RFC3339Nano),
	}
}
