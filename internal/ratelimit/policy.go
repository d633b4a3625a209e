package ratelimit

import "time"

// LimitConfig caps a client at Max requests per sliding Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits enforced for it. A request must satisfy
// every limit of every scope it resolves to.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// NewPolicy builds a per-minute policy. A non-positive value leaves the scope unlimited.
func NewPolicy(globalPerMinute, readPerMinute, writePerMinute int64) *Policy {
	p := &Policy{Limits: make(map[Scope][]LimitConfig)}

	for scope, perMinute := range map[Scope]int64{
		ScopeGlobal: globalPerMinute,
		ScopeRead:   readPerMinute,
		ScopeWrite:  writePerMinute,
	} {
		if perMinute > 0 {
			p.Limits[scope] = []LimitConfig{{Window: time.Minute, Max: perMinute}}
		}
	}

	return p
}

// Add appends limit to scope. Limits with a non-positive Max are ignored.
func (p *Policy) Add(scope Scope, limit LimitConfig) *Policy {
	if limit.Max > 0 {
		p.Limits[scope] = append(p.Limits[scope], limit)
	}

	return p
}

// DefaultPolicy favours redirects over link creation.
func DefaultPolicy() *Policy {
	return NewPolicy(1000, 600, 60).Add(ScopeWrite, LimitConfig{Window: time.Hour, Max: 1000})
}
