package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-chat rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	exempt  func(int64) bool
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
// Senders for which exempt returns true bypass the limiter entirely.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, exempt func(int64) bool, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		exempt:  exempt,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces per-chat rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.limit <= 0 || m.window <= 0 {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		if m.exempt != nil && m.exempt(sender.ID) {
			return next(c)
		}

		key := fmt.Sprintf("chat:%d", sender.ID)
		result, err := m.limiter.Check(context.Background(), key, m.limit, m.window)
		if err != nil && result == nil {
			m.log.Warn("rate limiter error", slog.Int64("sender_id", sender.ID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("sender_id", sender.ID))
			return c.Send("Забагато запитів. Спробуй трохи пізніше.")
		}

		return next(c)
	}
}
