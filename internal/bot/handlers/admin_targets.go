package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/payload"
	apperrors "github.com/taraskit/quest-bot/internal/errors"
	"github.com/taraskit/quest-bot/internal/gamefile"
)

// LoadGameTarget selects the picked game and stops it.
func (h *Admin) LoadGameTarget(c telebot.Context, action payload.Action) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	h.session.Select(action.Game)

	if err := c.Edit(fmt.Sprintf("Обрана гра: %s", action.Game)); err != nil {
		return err
	}

	return h.ShowMenu(c, false, "")
}

// DeleteGameTarget removes the picked game permanently. When the picked game
// is the selected one, the selection is cleared before the deletion is
// announced, so anything reading the selection during the announcement still
// sees the pre-delete value exactly once.
func (h *Admin) DeleteGameTarget(c telebot.Context, action payload.Action) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	if selected, ok := h.session.Selected(); ok && selected == action.Game {
		h.session.ClearSelection()
	}

	if err := c.Edit(fmt.Sprintf("Видаляю %s", action.Game)); err != nil {
		return err
	}

	if err := h.store.DeleteGame(action.Game); err != nil {
		if errors.Is(err, gamefile.ErrGameNotFound) {
			// Stale button: the game is already gone. The menu re-render
			// below is all the feedback needed.
			h.log.Warn("delete of a missing game", slog.String("game", action.Game))
		} else {
			return apperrors.NewStorageError(err)
		}
	}

	return h.ShowMenu(c, false, "")
}

// DeleteQuestTarget removes the picked quest and renumbers the rest.
func (h *Admin) DeleteQuestTarget(c telebot.Context, action payload.Action) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	game, ok := h.session.Selected()
	if !ok {
		return h.gameNotSelected(c)
	}

	removed, err := h.store.DeleteQuestAt(game, action.Index)
	if err != nil {
		if errors.Is(err, gamefile.ErrQuestIndexOutOfRange) {
			// A stale button after a renumber; treat it like any other
			// unexpected payload.
			return h.endWrongQuery(c)
		}
		return apperrors.NewStorageError(err)
	}

	if err := c.Edit(fmt.Sprintf("Видаляю:\n%s", removed)); err != nil {
		return err
	}

	return h.ShowMenu(c, false, "")
}

// NewGameName consumes the typed game name, creating (or wiping) its file
// and selecting it.
func (h *Admin) NewGameName(c telebot.Context) error {
	name := strings.TrimSpace(c.Text())

	if err := h.store.CreateOrClear(name); err != nil {
		if errors.Is(err, gamefile.ErrInvalidGameName) {
			return c.Send(inventNameText)
		}
		return apperrors.NewStorageError(err)
	}

	h.session.Select(name)

	return h.ShowMenu(c, false, "")
}

// NewQuestText consumes the typed quest and appends it to the selected game.
func (h *Admin) NewQuestText(c telebot.Context) error {
	game, ok := h.session.Selected()
	if !ok {
		return h.ShowMenu(c, false, notSelectedText)
	}

	if err := h.store.Append(game, c.Text()); err != nil {
		if errors.Is(err, gamefile.ErrDelimiterInQuest) {
			return c.Send(questPromptText)
		}
		return apperrors.NewStorageError(err)
	}

	return h.ShowMenu(c, false, "")
}
