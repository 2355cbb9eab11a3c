// Package lifecycle coordinates graceful shutdown of the bot's components.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// hook is a named shutdown step.
type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in parallel when the process stops.
type Shutdown struct {
	mu      sync.Mutex
	hooks   []hook
	timeout time.Duration
	log     *slog.Logger
}

// NewShutdown constructs a Shutdown coordinator. Each hook gets at most
// timeout to finish; zero means no per-hook limit.
func NewShutdown(log *slog.Logger, timeout time.Duration) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log, timeout: timeout}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs all registered hooks concurrently and waits for completion.
// It returns a combined error naming every hook that failed.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	failures := make([]string, 0)

	for _, h := range hooks {
		h := h

		wg.Add(1)
		go func() {
			defer wg.Done()

			hookCtx := ctx
			var cancel context.CancelFunc
			if s.timeout > 0 {
				hookCtx, cancel = context.WithTimeout(ctx, s.timeout)
				defer cancel()
			}

			if err := h.fn(hookCtx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.name), slog.Any("error", err))
				errMu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", h.name, err))
				errMu.Unlock()
				return
			}

			s.log.Info("shutdown hook completed", slog.String("hook", h.name))
		}()
	}

	wg.Wait()
	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}

	return nil
}
