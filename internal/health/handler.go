package health

import (
	"context"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	healthy   = "healthy"
	unhealthy = "unhealthy"
)

// Checker reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts a redis client to Checker.
type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler serves GET /health.
type Handler struct {
	checks  map[string]Checker
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler checks each named dependency with a per-check timeout.
func NewHandler(checks map[string]Checker, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{checks: checks, timeout: timeout, logger: logger}
}

type Response struct {
	Body struct {
		Status string            `doc:"ok, or degraded when a dependency is down" example:"ok"   json:"status"`
		Checks map[string]string `doc:"Per dependency state"                       json:"checks,omitempty"`
	}
}

func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK

	if len(h.checks) == 0 {
		return resp, nil
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	resp.Body.Checks = make(map[string]string, len(names))

	for _, name := range names {
		if err := h.ping(ctx, h.checks[name]); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))

			resp.Body.Checks[name] = unhealthy
			resp.Body.Status = StatusDegraded

			continue
		}

		resp.Body.Checks[name] = healthy
	}

	return resp, nil
}

func (h *Handler) ping(ctx context.Context, checker Checker) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	return checker.Ping(ctx)
}

func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
	}, h.Check)
}
