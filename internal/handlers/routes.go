package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
)

// ReservedCodes are path segments served by routes other than the redirect.
// A link issued under one of them could never be followed.
var ReservedCodes = []shortener.Code{"health", "shorten", "links", "docs", "schemas", "openapi"}

// RegisterRoutes registers the link routes. Specific paths come before the
// catch-all redirect.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service banner",
		Tags:        []string{"Meta"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Root)

	// Creation is the expensive path, so it gets its own tighter budget.
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short URL",
		Description: "Returns the short code for a URL, registering it on first use. Repeat calls return the same code.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusTooManyRequests},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, h.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/links/{code}",
		Summary:     "Describe a short link",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.GetLink)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound},
	}, h.RedirectToURL)
}
