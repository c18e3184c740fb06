// Package health runs periodic checks against the store the daemon serves
// from and reports them on /health.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
)

// DefaultInterval is how often Run repeats the checks.
const DefaultInterval = 60 * time.Second

// Pinger is a backend that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check defines a single named health check.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      *zap.Logger
}

// NewChecker creates a checker for kv. If kv also implements Pinger a
// connectivity check is added ahead of the profile check.
func NewChecker(kv domain.KVStore, profileKey string, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Checker{interval: DefaultInterval, log: log}

	if p, ok := kv.(Pinger); ok {
		c.checks = append(c.checks, Check{
			Name:    "store",
			CheckFn: p.Ping,
		})
	}
	c.checks = append(c.checks, Check{
		Name: "profile",
		CheckFn: func(ctx context.Context) error {
			return checkJSONValue(ctx, kv, profileKey)
		},
	})
	return c
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

// RunOnce runs every check synchronously.
func (c *Checker) RunOnce(ctx context.Context) {
	c.runAll(ctx)
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			c.log.Warn("health check failed", zap.String("check", check.Name), zap.Error(err))
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

// checkJSONValue fails when key is unreadable or holds malformed JSON. A
// missing key is healthy.
func checkJSONValue(ctx context.Context, kv domain.KVStore, key string) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("%s holds malformed JSON", key)
	}
	return nil
}
