package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/internal/events"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/shortlink/internal/infrastructure/validation"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"go.uber.org/zap"
)

type LinksHandler struct {
	svc       *links.Service
	publisher events.Publisher
	now       func() time.Time
}

// NewLinksHandler builds the links handler. A nil publisher disables events.
func NewLinksHandler(svc *links.Service, publisher events.Publisher) *LinksHandler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LinksHandler{
		svc:       svc,
		publisher: publisher,
		now:       time.Now,
	}
}

type createLinkRequest struct {
	OriginalURL string `json:"originalUrl"`
	Alias       string `json:"alias,omitempty"`
}

type createLinkResponse struct {
	Alias       string `json:"alias"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
}

// Create runs the short-link pipeline with the caller's bearer token.
func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}

	link, err := h.svc.CreateShortLink(r.Context(), links.LinkRequest{
		OriginalURL: req.OriginalURL,
		Alias:       req.Alias,
	})
	if err != nil {
		httputils.WriteAPIError(w, r, failureToAPIError(err))
		return
	}

	shortURL := h.svc.AliasToLink(link.Alias)
	events.PublishAsync(r.Context(), h.publisher,
		events.NewLinkCreated(link.Alias, link.OriginalURL, shortURL, h.now()))

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, createLinkResponse{
		Alias:       link.Alias,
		OriginalURL: link.OriginalURL,
		ShortURL:    shortURL,
	})
}

type aliasPathParams struct {
	Alias string `json:"alias" validate:"required,max=50,alias"`
}

type linkResponse struct {
	Alias    string `json:"alias"`
	ShortURL string `json:"shortUrl"`
}

// Link returns the shareable URL of an alias. No backend call is made.
func (h *LinksHandler) Link(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	if err := appvalidation.Validate(aliasPathParams{Alias: alias}); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidCustomAlias)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkResolved, linkResponse{
		Alias:    alias,
		ShortURL: h.svc.AliasToLink(alias),
	})
}

func failureToAPIError(err error) constants.APIError {
	f, ok := links.AsFailure(err)
	if !ok {
		logger.Error("unexpected error from link pipeline", zap.Error(err))
		return constants.ErrInternalError
	}

	switch f.Kind {
	case links.KindValidation:
		if f.Field == links.FieldCustomAlias {
			return constants.ErrInvalidCustomAlias.WithMessage(f.Message)
		}
		return constants.ErrInvalidLongLink.WithMessage(f.Message)
	case links.KindAuthorization:
		return constants.ErrUnauthorized.WithMessage(f.Message)
	}

	if errors.Is(err, links.ErrTransport) {
		logger.Error("link backend unreachable", zap.Error(err))
		return constants.ErrUpstreamUnavailable
	}
	logger.Warn("short link creation rejected",
		zap.String("code", string(f.Code)),
		zap.String("reason", f.Descriptor.Name),
	)
	return constants.ErrLinkCreationFailed.WithMessage(f.Error())
}
