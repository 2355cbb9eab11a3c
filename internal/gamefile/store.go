// Package gamefile persists games as flat delimiter-separated text files,
// one file per game named after the game.
package gamefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Delimiter separates quest records inside a game file. Each record is
// written as "@@@ <text>\n"; segments are trimmed on read and empty segments
// are dropped.
const Delimiter = "@@@"

var (
	// ErrGameNotFound indicates that a game has no backing file.
	ErrGameNotFound = errors.New("game not found")
	// ErrQuestIndexOutOfRange indicates a delete index past the quest list.
	ErrQuestIndexOutOfRange = errors.New("quest index out of range")
	// ErrDelimiterInQuest indicates quest text that would corrupt the file format.
	ErrDelimiterInQuest = errors.New("quest text contains the record delimiter")
	// ErrInvalidGameName indicates a game name that is not a plain file name.
	ErrInvalidGameName = errors.New("invalid game name")
)

var operationRecorder = func(op, status string) {}

// RegisterOperationRecorder allows external packages to observe store operations.
func RegisterOperationRecorder(recorder func(op, status string)) {
	if recorder == nil {
		operationRecorder = func(string, string) {}
		return
	}

	operationRecorder = recorder
}

// Store is a file-backed quest store. A per-game mutex serializes access to
// any single game's file; the observable contract stays sequential
// last-write-wins.
type Store struct {
	dir   string
	log   *slog.Logger
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates the games directory if needed and returns a Store over it.
func NewStore(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create games dir: %w", err)
	}

	return &Store{
		dir:   dir,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// List enumerates persisted games, sorted by name so button lists render stably.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		operationRecorder("list", "error")
		return nil, fmt.Errorf("read games dir: %w", err)
	}

	games := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			games = append(games, entry.Name())
		}
	}

	sort.Strings(games)
	operationRecorder("list", "ok")
	return games, nil
}

// Load reads the ordered quest list for the game. Segments that are empty
// after trimming are silently dropped.
func (s *Store) Load(game string) ([]string, error) {
	path, err := s.path(game)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(game)
	lock.Lock()
	defer lock.Unlock()

	return s.loadLocked(path)
}

// CreateOrClear idempotently produces an existing-but-empty file for the
// game. Creating a game under a name that already exists silently wipes the
// old content; this matches the admin flow, which reuses the same primitive
// for "new game" and "reset".
func (s *Store) CreateOrClear(game string) error {
	path, err := s.path(game)
	if err != nil {
		return err
	}

	lock := s.lockFor(game)
	lock.Lock()
	defer lock.Unlock()

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		operationRecorder("create_or_clear", "error")
		return fmt.Errorf("clear game %s: %w", game, err)
	}

	operationRecorder("create_or_clear", "ok")
	return nil
}

// Append adds one quest record to the end of the game file, creating the
// file when absent.
func (s *Store) Append(game, quest string) error {
	if strings.Contains(quest, Delimiter) {
		return ErrDelimiterInQuest
	}

	path, err := s.path(game)
	if err != nil {
		return err
	}

	lock := s.lockFor(game)
	lock.Lock()
	defer lock.Unlock()

	return s.appendLocked(path, game, quest)
}

// DeleteGame removes the backing file permanently. There is no soft delete;
// confirmation, if any, lives in the conversation layer.
func (s *Store) DeleteGame(game string) error {
	path, err := s.path(game)
	if err != nil {
		return err
	}

	lock := s.lockFor(game)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		operationRecorder("delete_game", "error")
		if os.IsNotExist(err) {
			return ErrGameNotFound
		}
		return fmt.Errorf("delete game %s: %w", game, err)
	}

	operationRecorder("delete_game", "ok")
	return nil
}

// DeleteQuestAt removes the quest at the 0-based index and renumbers the
// rest, returning the removed text. The whole file is rewritten through a
// temp file and rename, so a failure mid-write never leaves a partial file.
func (s *Store) DeleteQuestAt(game string, index int) (string, error) {
	path, err := s.path(game)
	if err != nil {
		return "", err
	}

	lock := s.lockFor(game)
	lock.Lock()
	defer lock.Unlock()

	quests, err := s.loadLocked(path)
	if err != nil {
		return "", err
	}

	if index < 0 || index >= len(quests) {
		operationRecorder("delete_quest", "error")
		return "", fmt.Errorf("%w: %d of %d", ErrQuestIndexOutOfRange, index, len(quests))
	}

	removed := quests[index]
	remaining := append(append([]string(nil), quests[:index]...), quests[index+1:]...)

	var buf strings.Builder
	for _, quest := range remaining {
		fmt.Fprintf(&buf, "%s %s\n", Delimiter, quest)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		operationRecorder("delete_quest", "error")
		return "", fmt.Errorf("rewrite game %s: %w", game, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		operationRecorder("delete_quest", "error")
		return "", fmt.Errorf("rewrite game %s: %w", game, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		operationRecorder("delete_quest", "error")
		return "", fmt.Errorf("rewrite game %s: %w", game, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		operationRecorder("delete_quest", "error")
		return "", fmt.Errorf("rewrite game %s: %w", game, err)
	}

	operationRecorder("delete_quest", "ok")
	return removed, nil
}

// HealthCheck verifies that the games directory is accessible.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("games dir inaccessible: %w", err)
	}

	return nil
}

// Dir returns the directory holding the game files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) loadLocked(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		operationRecorder("load", "error")
		if os.IsNotExist(err) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("read game file: %w", err)
	}

	segments := strings.Split(string(raw), Delimiter)
	quests := make([]string, 0, len(segments))
	for _, segment := range segments {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			quests = append(quests, trimmed)
		}
	}

	operationRecorder("load", "ok")
	return quests, nil
}

func (s *Store) appendLocked(path, game, quest string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		operationRecorder("append", "error")
		return fmt.Errorf("open game %s: %w", game, err)
	}

	if _, err := fmt.Fprintf(f, "%s %s\n", Delimiter, quest); err != nil {
		f.Close()
		operationRecorder("append", "error")
		return fmt.Errorf("append to game %s: %w", game, err)
	}

	if err := f.Close(); err != nil {
		operationRecorder("append", "error")
		return fmt.Errorf("close game %s: %w", game, err)
	}

	operationRecorder("append", "ok")
	return nil
}

// path validates the game name and resolves its file path. Names must be
// plain file names so a crafted name cannot escape the games directory.
func (s *Store) path(game string) (string, error) {
	if game == "" || game == "." || game == ".." || game != filepath.Base(game) {
		return "", fmt.Errorf("%w: %q", ErrInvalidGameName, game)
	}

	return filepath.Join(s.dir, game), nil
}

func (s *Store) lockFor(game string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[game]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[game] = lock
	}

	return lock
}
