package stage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrInvalidTransition indicates that a requested stage transition is not allowed.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrStageNotFound indicates that a chat stage record does not exist.
	ErrStageNotFound = errors.New("chat stage not found")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe stage transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Machine describes the operations supported by the conversation stage controller.
type Machine interface {
	GetStage(ctx context.Context, chatID int64) (*ChatStage, error)
	// SetStage forces the stage regardless of the transition table. Used for
	// conversation entry and reset, which the table does not model.
	SetStage(ctx context.Context, chatID int64, next Stage) error
	// TransitionTo changes the stage only when the transition table allows it.
	TransitionTo(ctx context.Context, chatID int64, next Stage) error
	ClearStage(ctx context.Context, chatID int64) error
	AllStages(ctx context.Context) ([]*ChatStage, error)
}

// machine is a concrete Machine backed by Storage. A keyed in-process mutex
// guarantees at most one stage mutation at a time per chat.
type machine struct {
	storage Storage
	log     *slog.Logger
	mu      sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewMachine creates a stage controller using the provided storage backend.
func NewMachine(storage Storage, log *slog.Logger) Machine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage: storage,
		log:     log,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// GetStage proxies to the underlying storage implementation.
func (m *machine) GetStage(ctx context.Context, chatID int64) (*ChatStage, error) {
	return m.storage.GetStage(ctx, chatID)
}

// AllStages returns every persisted chat stage.
func (m *machine) AllStages(ctx context.Context) ([]*ChatStage, error) {
	return m.storage.AllStages(ctx)
}

// SetStage persists the stage without consulting the transition table.
func (m *machine) SetStage(ctx context.Context, chatID int64, next Stage) error {
	lock := m.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	return m.saveStage(ctx, chatID, next)
}

// TransitionTo changes the stage if the transition is allowed.
func (m *machine) TransitionTo(ctx context.Context, chatID int64, next Stage) error {
	lock := m.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	current := StageIdle

	stored, err := m.storage.GetStage(ctx, chatID)
	if err != nil {
		if !errors.Is(err, ErrStageNotFound) {
			return err
		}
	} else if stored != nil {
		current = stored.Current
	}

	if !IsTransitionAllowed(current, next) {
		m.log.Warn("invalid stage transition", "chat_id", chatID, "from", current, "to", next)
		return ErrInvalidTransition
	}

	transitionRecorder(string(current), string(next))

	return m.saveStage(ctx, chatID, next)
}

// ClearStage removes the stored stage while holding the chat lock.
func (m *machine) ClearStage(ctx context.Context, chatID int64) error {
	lock := m.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	return m.storage.ClearStage(ctx, chatID)
}

func (m *machine) saveStage(ctx context.Context, chatID int64, next Stage) error {
	return m.storage.SetStage(ctx, chatID, &ChatStage{
		ChatID:    chatID,
		Current:   next,
		UpdatedAt: time.Now().UTC(),
	})
}

func (m *machine) lockFor(chatID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[chatID] = lock
	}

	return lock
}
