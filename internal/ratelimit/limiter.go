package ratelimit

import (
	"context"
	"fmt"
)

// Limiter decides whether a client may make another request.
// A nil *LimitExceeded means the request is allowed.
type Limiter interface {
	Allow(ctx context.Context, clientKey string, scopes []Scope) (*LimitExceeded, error)
	AllowLimits(ctx context.Context, clientKey, route string, limits []LimitConfig) (*LimitExceeded, error)
}

// LimitExceeded describes the first limit a request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

func (e *LimitExceeded) String() string {
	if e.Scope == "" {
		return fmt.Sprintf("%d/%d requests in %s", e.Count, e.Config.Max, e.Config.Window)
	}

	return fmt.Sprintf("%s scope, %d/%d requests in %s", e.Scope, e.Count, e.Config.Max, e.Config.Window)
}

// PolicyLimiter enforces a Policy over a sliding-window Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against every limit of the given scopes.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (*LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

			exceeded, err := l.record(ctx, key, limit)
			if err != nil || exceeded != nil {
				if exceeded != nil {
					exceeded.Scope = scope
				}

				return exceeded, err
			}
		}
	}

	return nil, nil
}

// AllowLimits applies endpoint specific limits. Counters are shared by every
// request matching the route template, per client.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context,
	clientKey, route string,
	limits []LimitConfig,
) (*LimitExceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:route:%s:%d", clientKey, route, limit.Window.Milliseconds())

		exceeded, err := l.record(ctx, key, limit)
		if err != nil || exceeded != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

func (l *PolicyLimiter) record(ctx context.Context, key string, limit LimitConfig) (*LimitExceeded, error) {
	count, err := l.store.Record(ctx, key, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("record request: %w", err)
	}

	if count > limit.Max {
		return &LimitExceeded{Config: limit, Count: count}, nil
	}

	return nil, nil
}
