package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/handlers"
	apperrors "github.com/taraskit/quest-bot/internal/errors"
	"github.com/taraskit/quest-bot/pkg/logger"
	"github.com/taraskit/quest-bot/pkg/metrics"
)

// correlationIDContextKey is the telebot context slot holding the update's correlation ID.
const correlationIDContextKey = "correlation_id"

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "Сталася помилка. Спробуй пізніше"
					if errHandler != nil {
						appErr := apperrors.NewStateError(fmt.Sprintf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(correlationContext(c), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var appErr *apperrors.AppError
			if stderrors.As(err, &appErr) {
				metrics.RecordError(appErr.Code, string(appErr.Severity))
			}

			userMsg := "Сталася помилка. Спробуй пізніше"
			if errHandler != nil {
				if msg, _ := errHandler.Handle(correlationContext(c), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware tags each update with a correlation ID and logs basic telemetry.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()

			correlationID := uuid.NewString()
			chatID := int64(0)
			if c != nil {
				c.Set(correlationIDContextKey, correlationID)
				if c.Chat() != nil {
					chatID = c.Chat().ID
				}
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update",
				slog.String("correlation_id", correlationID),
				slog.Int64("chat_id", chatID),
				slog.String("action", action),
			)
			err := next(c)
			log.Info("handled update",
				slog.String("correlation_id", correlationID),
				slog.Int64("chat_id", chatID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// correlationContext lifts the correlation ID assigned by LoggingMiddleware
// into a context.Context for the error handler.
func correlationContext(c telebot.Context) context.Context {
	ctx := context.Background()
	if c == nil {
		return ctx
	}

	if id, ok := c.Get(correlationIDContextKey).(string); ok && id != "" {
		ctx = logger.WithCorrelationID(ctx, id)
	}

	return ctx
}
