package links

// LinkRequest is what a caller submits to the pipeline. An empty Alias asks
// the backend to generate one.
type LinkRequest struct {
	OriginalURL string
	Alias       string
}

// CreatedLink is the backend's record of a created short link.
type CreatedLink struct {
	Alias       string `json:"alias"`
	OriginalURL string `json:"originalURL"`
}

// IsEmpty reports whether the backend returned no payload.
func (l CreatedLink) IsEmpty() bool {
	return l.Alias == "" && l.OriginalURL == ""
}

// CreateURLInput is the argument set of the createURL mutation. CustomAlias is
// nil when the caller has no preference, which is distinct from an explicit
// empty alias on the wire.
type CreateURLInput struct {
	OriginalURL     string
	CustomAlias     *string
	AuthToken       string
	CaptchaResponse string
}
