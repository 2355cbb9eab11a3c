package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/stage"
)

// NewWrongQueryHandler handles button presses no stage expects: acknowledge,
// delete the triggering message, end the conversation. It never fails the
// process over garbage input.
func NewWrongQueryHandler(stages stage.Machine, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		data := ""
		if cb := c.Callback(); cb != nil {
			data = cb.Data
		}
		log.Info("wrong query", slog.Int64("chat_id", c.Chat().ID), slog.String("data", data))

		if err := respondCallback(c); err != nil {
			return err
		}

		return deleteAndEnd(c, stages, log)
	}
}

// deleteAndEnd removes the triggering message and returns the chat to idle.
// Callers must have acknowledged the callback already.
func deleteAndEnd(c telebot.Context, stages stage.Machine, log *slog.Logger) error {
	if err := c.Delete(); err != nil {
		log.Warn("failed to delete message", slog.Int64("chat_id", c.Chat().ID), slog.Any("error", err))
	}

	return stages.SetStage(context.Background(), c.Chat().ID, stage.StageIdle)
}

// endWrongQuery lets stage handlers bail out on stale or nonsensical
// payloads after they have already acknowledged the callback.
func (h *Admin) endWrongQuery(c telebot.Context) error {
	return deleteAndEnd(c, h.stages, h.log)
}
