package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/handlers"
	"github.com/taraskit/quest-bot/internal/bot/payload"
	"github.com/taraskit/quest-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		action := extractActionName(c)
		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(action, status, time.Since(start))

		return err
	}
}

// extractActionName maps an update to a low-cardinality label. Callback
// payloads collapse to their action kind and free text to a fixed label so
// game names and quest text never become label values.
func extractActionName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		action, err := payload.Decode(cb.Data)
		if err != nil {
			return "unknown_callback"
		}
		return string(action.Kind)
	}

	if text := c.Text(); text != "" {
		if strings.HasPrefix(text, "/") {
			return text
		}
		return "text"
	}

	return "unknown"
}
