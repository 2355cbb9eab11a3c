package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/stage"
)

// Entry routes /start by sender identity: the configured privileged IDs see
// the admin branch, everyone else the user branch. This is the whole
// authorization model.
type Entry struct {
	isAdmin func(int64) bool
	admin   *Admin
	user    *User
	stages  stage.Machine
	log     *slog.Logger
}

// NewEntry builds the conversation entry handler.
func NewEntry(isAdmin func(int64) bool, admin *Admin, user *User, stages stage.Machine, log *slog.Logger) *Entry {
	if log == nil {
		log = slog.Default()
	}

	return &Entry{
		isAdmin: isAdmin,
		admin:   admin,
		user:    user,
		stages:  stages,
		log:     log,
	}
}

// Start (re)enters the menu tree, resetting whatever stage the chat was in.
func (e *Entry) Start(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		e.log.Warn("start without sender")
		return nil
	}

	if e.isAdmin(sender.ID) {
		if err := e.stages.SetStage(context.Background(), c.Chat().ID, stage.StageAwaitingAdminMenu); err != nil {
			return err
		}
		return e.admin.renderMenu(c, false, "")
	}

	return e.user.Menu(c)
}

// End closes the conversation explicitly.
func (e *Entry) End(c telebot.Context) error {
	if err := c.Send(farewellText); err != nil {
		return err
	}

	return e.stages.SetStage(context.Background(), c.Chat().ID, stage.StageIdle)
}
