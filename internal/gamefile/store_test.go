package gamefile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	quests := []string{"find the key", "open the chest", "shout the password"}

	require.NoError(t, store.CreateOrClear("quiz"))
	for _, quest := range quests {
		require.NoError(t, store.Append("quiz", quest))
	}

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, quests, loaded)
}

func TestStore_LoadMissingGame(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestStore_LoadDropsEmptySegments(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.Dir(), "quiz")
	require.NoError(t, os.WriteFile(path, []byte("@@@ one\n@@@   \n@@@\n@@@ two\n"), 0o644))

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, loaded)
}

func TestCreateOrClear_Idempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, store.CreateOrClear("quiz"))
	loaded, err = store.Load("quiz")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCreateOrClear_WipesExistingGame(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.Append("quiz", "old content"))

	// Creating a game under an existing name silently resets it.
	require.NoError(t, store.CreateOrClear("quiz"))

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_DeleteQuestRenumbers(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	for _, quest := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append("quiz", quest))
	}

	removed, err := store.DeleteQuestAt("quiz", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed)

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, loaded)

	removed, err = store.DeleteQuestAt("quiz", 1)
	require.NoError(t, err)
	assert.Equal(t, "c", removed)

	loaded, err = store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded)
}

func TestStore_DeleteQuestOutOfRange(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.Append("quiz", "only"))

	_, err := store.DeleteQuestAt("quiz", 1)
	assert.ErrorIs(t, err, ErrQuestIndexOutOfRange)

	_, err = store.DeleteQuestAt("quiz", -1)
	assert.ErrorIs(t, err, ErrQuestIndexOutOfRange)
}

func TestStore_DeleteGame(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.DeleteGame("quiz"))

	_, err := store.Load("quiz")
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.ErrorIs(t, store.DeleteGame("quiz"), ErrGameNotFound)
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	games, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, games)

	require.NoError(t, store.CreateOrClear("zeta"))
	require.NoError(t, store.CreateOrClear("alpha"))

	// Subdirectories are not games.
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "subdir"), 0o755))

	games, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, games)
}

func TestStore_AppendRejectsDelimiter(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	assert.ErrorIs(t, store.Append("quiz", "bad @@@ text"), ErrDelimiterInQuest)

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_RejectsUnsafeGameNames(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape", "a/b"} {
		assert.ErrorIs(t, store.CreateOrClear(name), ErrInvalidGameName, "name %q", name)
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	store := newTestStore(t)

	// Two sequential admin edits of the same game do not merge; the later
	// rewrite observes whatever the earlier one left behind.
	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.Append("quiz", "first"))

	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.Append("quiz", "second"))

	loaded, err := store.Load("quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, loaded)
}

func TestStore_PersistedFormat(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateOrClear("quiz"))
	require.NoError(t, store.Append("quiz", "find the key"))

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "quiz"))
	require.NoError(t, err)
	assert.Equal(t, "@@@ find the key\n", string(raw))
}
