// Package health runs the readiness checks shared by the HTTP and gRPC health endpoints.
package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

const checkTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker reports whether the policy engine can evaluate.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checker holds named readiness checks. The zero value has none and is always ready.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Pinger
}

// NewChecker returns an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Pinger)}
}

// Add registers p under name. A nil p is ignored.
func (c *Checker) Add(name string, p Pinger) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checks == nil {
		c.checks = make(map[string]Pinger)
	}
	c.checks[name] = p
}

// AddPolicy registers a policy engine check under name.
func (c *Checker) AddPolicy(name string, pc PolicyChecker) {
	if pc == nil {
		return
	}
	c.Add(name, PingFunc(pc.HealthCheck))
}

// Result is the outcome of one check; Err is empty when it passed.
type Result struct {
	Name string `json:"name"`
	Err  string `json:"error,omitempty"`
}

// Check runs every check concurrently, each bounded by a short timeout. The error joins
// every failure and is nil when all passed.
func (c *Checker) Check(ctx context.Context) ([]Result, error) {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	results := make([]Result, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		c.mu.RLock()
		p := c.checks[name]
		c.mu.RUnlock()
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			results[i] = Result{Name: name}
			if err := p.Ping(cctx); err != nil {
				results[i].Err = err.Error()
				errs[i] = fmt.Errorf("%s: %w", name, err)
			}
		}()
	}
	wg.Wait()
	return results, errors.Join(errs...)
}
