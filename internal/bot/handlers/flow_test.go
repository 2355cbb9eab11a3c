package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taraskit/quest-bot/internal/bot/keyboard"
	"github.com/taraskit/quest-bot/internal/bot/payload"
	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/session"
	"github.com/taraskit/quest-bot/internal/stage"
)

const (
	adminID  = int64(100)
	playerID = int64(200)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	stages stage.Machine
	sess   *session.State
	store  *gamefile.Store
	admin  *Admin
	user   *User
	entry  *Entry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := testLogger()
	store, err := gamefile.NewStore(t.TempDir(), log)
	require.NoError(t, err)

	stages := stage.NewMachine(stage.NewMemoryStorage(), log)
	sess := session.New()
	kb := keyboard.NewBuilder(log)

	admin := NewAdmin(stages, sess, store, kb, log)
	user := NewUser(stages, sess, store, kb, log)
	isAdmin := func(id int64) bool { return id == adminID }
	entry := NewEntry(isAdmin, admin, user, stages, log)

	return &fixture{
		stages: stages,
		sess:   sess,
		store:  store,
		admin:  admin,
		user:   user,
		entry:  entry,
	}
}

func (f *fixture) requireStage(t *testing.T, chatID int64, want stage.Stage) {
	t.Helper()

	got, err := f.stages.GetStage(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, want, got.Current)
}

// The happy path of a whole game: the admin creates a game, fills it in and
// starts it, a player reveals a quest, the admin stops the game.
func TestGameRoundTrip(t *testing.T) {
	f := newFixture(t)
	adminChat := adminID
	playerChat := playerID

	// Admin enters the menu tree.
	c := newMessageContext(adminChat, adminID, "/start")
	require.NoError(t, f.entry.Start(c))
	assert.Equal(t, "Ви війшли як адміністратор", c.lastSent().text)
	require.NotNil(t, c.lastSent().markup)
	f.requireStage(t, adminChat, stage.StageAwaitingAdminMenu)

	// New game.
	cb := newCallbackContext(adminChat, adminID, "new_game")
	require.NoError(t, f.admin.NewGame(cb))
	assert.Equal(t, 1, cb.responded)
	assert.Equal(t, "Вигадай ім'я", cb.lastEdited().text)
	f.requireStage(t, adminChat, stage.StageAwaitingNewGameName)

	c = newMessageContext(adminChat, adminID, "quiz")
	require.NoError(t, f.admin.NewGameName(c))
	assert.Equal(t, "quiz(STOPPED)", c.lastSent().text)
	f.requireStage(t, adminChat, stage.StageAwaitingAdminMenu)

	selected, ok := f.sess.Selected()
	require.True(t, ok)
	assert.Equal(t, "quiz", selected)

	// Add a quest.
	cb = newCallbackContext(adminChat, adminID, "add_quest")
	require.NoError(t, f.admin.AddQuest(cb))
	f.requireStage(t, adminChat, stage.StageAwaitingNewQuestText)

	c = newMessageContext(adminChat, adminID, "find the key")
	require.NoError(t, f.admin.NewQuestText(c))
	f.requireStage(t, adminChat, stage.StageAwaitingAdminMenu)

	quests, err := f.store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"find the key"}, quests)

	// Start the game.
	cb = newCallbackContext(adminChat, adminID, "start_game")
	require.NoError(t, f.admin.StartGame(cb))
	assert.Equal(t, "starting...", cb.lastEdited().text)
	assert.Equal(t, "quiz(RUNNING)", cb.lastSent().text)

	// A player joins and gets one numbered button per quest.
	c = newMessageContext(playerChat, playerID, "/start")
	require.NoError(t, f.entry.Start(c))
	assert.Equal(t, "Обери свою команду", c.lastSent().text)
	require.NotNil(t, c.lastSent().markup)
	rows := c.lastSent().markup.InlineKeyboard
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0][0].Text)
	assert.Equal(t, "0", rows[0][0].Data)
	f.requireStage(t, playerChat, stage.StageAwaitingRoomSelection)

	// The player reveals the quest behind their number.
	cb = newCallbackContext(playerChat, playerID, "0")
	require.NoError(t, f.user.SelectRoom(cb, payload.SelectRoom(0)))
	assert.Equal(t, 1, cb.responded)
	assert.Equal(t, "Завдання твоєї команди(1):\nfind the key", cb.lastEdited().text)
	f.requireStage(t, playerChat, stage.StageIdle)

	// Stop the game; late joiners are turned away.
	cb = newCallbackContext(adminChat, adminID, "stop_game")
	require.NoError(t, f.admin.StopGame(cb))
	assert.Equal(t, "quiz(STOPPED)", cb.lastSent().text)

	c = newMessageContext(playerChat, playerID, "/start")
	require.NoError(t, f.entry.Start(c))
	assert.Equal(t, "Гра ще не почалась...", c.lastSent().text)
	f.requireStage(t, playerChat, stage.StageIdle)
}

func TestEntry_EndSaysFarewell(t *testing.T) {
	f := newFixture(t)

	c := newMessageContext(adminID, adminID, "/end")
	require.NoError(t, f.entry.End(c))
	assert.Equal(t, "See you next time!", c.lastSent().text)
	f.requireStage(t, adminID, stage.StageIdle)
}

func TestEntry_StartWithoutSenderIsIgnored(t *testing.T) {
	f := newFixture(t)

	c := newMessageContext(1, 1, "/start")
	c.sender = nil
	require.NoError(t, f.entry.Start(c))
	assert.Empty(t, c.sent)
}
