package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

const rootMessage = "ShortLink API is running"

// LinkHandler exposes the link registry over HTTP.
type LinkHandler struct {
	registry   *shortener.Registry
	stats      analytics.Stats
	baseURL    string
	publishers *analytics.Publishers
	logger     *zap.Logger
	now        func() time.Time
}

// NewLinkHandler builds short URLs as baseURL + "/" + code.
func NewLinkHandler(
	registry *shortener.Registry,
	stats analytics.Stats,
	baseURL string,
	publishers *analytics.Publishers,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		registry:   registry,
		stats:      stats,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		publishers: publishers,
		logger:     logger,
		now:        time.Now,
	}
}

func (h *LinkHandler) Root(_ context.Context, _ *struct{}) (*RootResponse, error) {
	resp := &RootResponse{}
	resp.Body.Message = rootMessage

	return resp, nil
}

func (h *LinkHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	link, err := h.registry.Shorten(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		h.logger.Error("failed to shorten url", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to shorten url")
	}

	info := middleware.RequestInfoFrom(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		RequestID:   info.RequestID,
		ClientIP:    info.ClientIP,
		UserAgent:   info.UserAgent,
	}

	if err := h.publishers.LinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	shortURL := h.shortURL(link.Code)

	resp := &CreateShortURLResponse{Location: shortURL}
	resp.Body.Code = string(link.Code)
	resp.Body.ShortURL = shortURL
	resp.Body.OriginalURL = link.OriginalURL

	return resp, nil
}

func (h *LinkHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	info := middleware.RequestInfoFrom(ctx)
	event := &analytics.LinkResolvedEvent{
		Code:       req.Code,
		ResolvedAt: h.now(),
		RequestID:  info.RequestID,
		ClientIP:   info.ClientIP,
		UserAgent:  info.UserAgent,
		Referrer:   info.Referrer,
	}

	if err := h.publishers.LinkResolved(ctx, event); err != nil {
		h.logger.Error("failed to publish link resolved event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.OriginalURL,
	}, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *GetLinkRequest) (*GetLinkResponse, error) {
	link, err := h.resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	clicks, err := h.stats.Clicks(ctx, req.Code)
	if err != nil {
		h.logger.Warn("failed to read clicks", zap.String("code", req.Code), zap.Error(err))

		clicks = 0
	}

	resp := &GetLinkResponse{}
	resp.Body.Code = string(link.Code)
	resp.Body.ShortURL = h.shortURL(link.Code)
	resp.Body.OriginalURL = link.OriginalURL
	resp.Body.CreatedAt = link.CreatedAt
	resp.Body.Clicks = clicks

	return resp, nil
}

func (h *LinkHandler) resolve(ctx context.Context, code string) (*shortener.Link, error) {
	link, err := h.registry.Resolve(ctx, shortener.Code(code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve code", zap.String("code", code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return link, nil
}

func (h *LinkHandler) shortURL(code shortener.Code) string {
	return h.baseURL + "/" + string(code)
}
