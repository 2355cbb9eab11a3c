package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/keyboard"
	apperrors "github.com/taraskit/quest-bot/internal/errors"
	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/session"
	"github.com/taraskit/quest-bot/internal/stage"
)

// Admin implements the admin branch of the menu tree.
type Admin struct {
	stages  stage.Machine
	session *session.State
	store   *gamefile.Store
	kb      *keyboard.Builder
	log     *slog.Logger
}

// NewAdmin builds the admin handler set.
func NewAdmin(stages stage.Machine, sess *session.State, store *gamefile.Store, kb *keyboard.Builder, log *slog.Logger) *Admin {
	if log == nil {
		log = slog.Default()
	}

	return &Admin{
		stages:  stages,
		session: sess,
		store:   store,
		kb:      kb,
		log:     log,
	}
}

// MenuTitle renders the admin menu headline from the session: the selected
// game with its run state, or the admin greeting when nothing is selected.
func MenuTitle(sess *session.State) string {
	game, hasGame, running := sess.Snapshot()
	if !hasGame {
		return mainMenuText
	}

	if running {
		return game + runningSuffix
	}
	return game + stoppedSuffix
}

// ShowMenu renders the admin menu and moves the chat to the admin stage.
func (h *Admin) ShowMenu(c telebot.Context, edit bool, title string) error {
	if err := h.renderMenu(c, edit, title); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingAdminMenu)
}

// NewGame prompts for the new game's name.
func (h *Admin) NewGame(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	if err := c.Edit(inventNameText); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingNewGameName)
}

// StartGame flips the running flag on, provided a game is selected.
func (h *Admin) StartGame(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	if _, ok := h.session.Selected(); !ok {
		return h.gameNotSelected(c)
	}

	h.session.SetRunning(true)

	if err := c.Edit(startingText); err != nil {
		return err
	}

	return h.ShowMenu(c, false, "")
}

// StopGame flips the running flag off, provided a game is selected.
func (h *Admin) StopGame(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	if _, ok := h.session.Selected(); !ok {
		return h.gameNotSelected(c)
	}

	h.session.SetRunning(false)

	if err := c.Edit(stoppingText); err != nil {
		return err
	}

	return h.ShowMenu(c, false, "")
}

// LoadGame lists persisted games to pick one for loading.
func (h *Admin) LoadGame(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	games, err := h.store.List()
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	if len(games) == 0 {
		return h.ShowMenu(c, true, noGamesText)
	}

	if err := c.Edit(chooseGameText, h.kb.GamesToLoad(games)); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingGameToLoad)
}

// DeleteGame lists persisted games to pick one for deletion.
func (h *Admin) DeleteGame(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	games, err := h.store.List()
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	if len(games) == 0 {
		return h.gameNotSelected(c)
	}

	if err := c.Edit(chooseGameToDeleteText, h.kb.GamesToDelete(games)); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingGameToDelete)
}

// ShowQuests renders the selected game's quest list, one message per quest.
func (h *Admin) ShowQuests(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	game, ok := h.session.Selected()
	if !ok {
		return h.gameNotSelected(c)
	}

	quests, err := h.loadQuests(game)
	if err != nil {
		return err
	}

	if len(quests) == 0 {
		return h.ShowMenu(c, true, noQuestsText)
	}

	if err := c.Edit(yourQuestsText); err != nil {
		return err
	}

	for i, quest := range quests {
		if err := c.Send(fmt.Sprintf("%d\n %s", i+1, quest)); err != nil {
			return err
		}
	}

	return h.ShowMenu(c, false, "")
}

// DeleteQuest lists the selected game's quest numbers to pick one for deletion.
func (h *Admin) DeleteQuest(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	game, ok := h.session.Selected()
	if !ok {
		return h.gameNotSelected(c)
	}

	quests, err := h.loadQuests(game)
	if err != nil {
		return err
	}

	if len(quests) == 0 {
		return h.ShowMenu(c, true, noQuestsText)
	}

	if err := c.Edit(chooseQuestToDeleteText, h.kb.QuestsToDelete(len(quests))); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingQuestToDelete)
}

// AddQuest prompts for the new quest's text.
func (h *Admin) AddQuest(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	if _, ok := h.session.Selected(); !ok {
		return h.gameNotSelected(c)
	}

	if err := c.Edit(questPromptText); err != nil {
		return err
	}

	return h.stages.TransitionTo(context.Background(), c.Chat().ID, stage.StageAwaitingNewQuestText)
}

// Back re-renders the admin menu in place.
func (h *Admin) Back(c telebot.Context) error {
	if err := respondCallback(c); err != nil {
		return err
	}

	return h.ShowMenu(c, true, "")
}

// gameNotSelected recovers a precondition failure by rerouting to the admin
// prompt. The guard must run before any store access that needs a selection.
func (h *Admin) gameNotSelected(c telebot.Context) error {
	h.log.Info("action requires a selected game", slog.Int64("chat_id", c.Chat().ID))
	return h.ShowMenu(c, true, notSelectedText)
}

func (h *Admin) loadQuests(game string) ([]string, error) {
	quests, err := h.store.Load(game)
	if err != nil {
		if errors.Is(err, gamefile.ErrGameNotFound) {
			// The machine only loads games it recorded as selected, so a
			// missing file here is an invariant violation.
			return nil, apperrors.NewNotFoundError(game, err)
		}
		return nil, apperrors.NewStorageError(err)
	}

	return quests, nil
}

func (h *Admin) renderMenu(c telebot.Context, edit bool, title string) error {
	if title == "" {
		title = MenuTitle(h.session)
	}

	if edit {
		return c.Edit(title, h.kb.AdminMenu())
	}
	return c.Send(title, h.kb.AdminMenu())
}
