package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/keyboard"
	"github.com/taraskit/quest-bot/internal/bot/payload"
	apperrors "github.com/taraskit/quest-bot/internal/errors"
	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/session"
	"github.com/taraskit/quest-bot/internal/stage"
)

// User implements the non-privileged branch: pick a quest number while the
// game runs.
type User struct {
	stages  stage.Machine
	session *session.State
	store   *gamefile.Store
	kb      *keyboard.Builder
	log     *slog.Logger
}

// NewUser builds the user handler set.
func NewUser(stages stage.Machine, sess *session.State, store *gamefile.Store, kb *keyboard.Builder, log *slog.Logger) *User {
	if log == nil {
		log = slog.Default()
	}

	return &User{
		stages:  stages,
		session: sess,
		store:   store,
		kb:      kb,
		log:     log,
	}
}

// Menu shows one numbered button per quest while the game is running, or
// tells the user the game has not started.
func (h *User) Menu(c telebot.Context) error {
	ctx := context.Background()
	game, hasGame, running := h.session.Snapshot()

	if !running || !hasGame {
		if err := c.Send(notStartedText); err != nil {
			return err
		}
		return h.stages.SetStage(ctx, c.Chat().ID, stage.StageIdle)
	}

	quests, err := h.loadQuests(game)
	if err != nil {
		return err
	}

	if err := c.Send(chooseTeamText, h.kb.Rooms(len(quests))); err != nil {
		return err
	}

	return h.stages.SetStage(ctx, c.Chat().ID, stage.StageAwaitingRoomSelection)
}

// SelectRoom reveals the quest behind the pressed number and ends the flow.
func (h *User) SelectRoom(c telebot.Context, action payload.Action) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	game, ok := h.session.Selected()
	if !ok {
		// The game was deselected after the buttons were rendered.
		return deleteAndEnd(c, h.stages, h.log)
	}

	quests, err := h.loadQuests(game)
	if err != nil {
		return err
	}

	if action.Index < 0 || action.Index >= len(quests) {
		h.log.Warn("room index out of range",
			slog.Int64("chat_id", c.Chat().ID),
			slog.Int("index", action.Index),
			slog.Int("quests", len(quests)),
		)
		return deleteAndEnd(c, h.stages, h.log)
	}

	text := fmt.Sprintf("Завдання твоєї команди(%d):\n%s", action.Index+1, quests[action.Index])
	if err := c.Edit(text); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageIdle)
}

func (h *User) loadQuests(game string) ([]string, error) {
	quests, err := h.store.Load(game)
	if err != nil {
		if errors.Is(err, gamefile.ErrGameNotFound) {
			return nil, apperrors.NewNotFoundError(game, err)
		}
		return nil, apperrors.NewStorageError(err)
	}

	return quests, nil
}
