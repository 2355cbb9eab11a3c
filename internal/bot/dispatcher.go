package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/handlers"
	"github.com/taraskit/quest-bot/internal/bot/payload"
	"github.com/taraskit/quest-bot/internal/stage"
)

// ActionHandler processes a decoded callback action.
type ActionHandler func(c telebot.Context, action payload.Action) error

// Dispatcher routes incoming updates to stage-specific handlers.
//
// Callback handlers are keyed by the chat's current stage and the decoded
// action kind. Text handlers are keyed by stage alone. Anything that does
// not match falls through to the fallback handler.
type Dispatcher struct {
	stages   stage.Machine
	actions  map[stage.Stage]map[payload.Kind]ActionHandler
	texts    map[stage.Stage]handlers.Handler
	fallback handlers.CallbackHandler
	log      *slog.Logger
	mu       sync.RWMutex
}

// NewDispatcher creates a Dispatcher with empty registries.
func NewDispatcher(stages stage.Machine, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		stages:  stages,
		actions: make(map[stage.Stage]map[payload.Kind]ActionHandler),
		texts:   make(map[stage.Stage]handlers.Handler),
		log:     log,
	}
}

// RegisterAction registers a callback handler for the given stage and action kind.
func (d *Dispatcher) RegisterAction(s stage.Stage, kind payload.Kind, h ActionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.actions[s] == nil {
		d.actions[s] = make(map[payload.Kind]ActionHandler)
	}
	d.actions[s][kind] = h
}

// RegisterText registers a free-text handler for the given stage.
func (d *Dispatcher) RegisterText(s stage.Stage, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts[s] = h
}

// SetFallback sets the handler invoked for callbacks that match no registration.
func (d *Dispatcher) SetFallback(h handlers.CallbackHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = h
}

// DispatchCallback decodes the callback payload and routes it based on the
// chat's current stage. Unknown payloads and payloads that are not valid in
// the current stage go to the fallback handler.
func (d *Dispatcher) DispatchCallback(c telebot.Context) error {
	if c == nil || c.Callback() == nil {
		return nil
	}

	current, err := d.currentStage(c)
	if err != nil {
		return err
	}

	action, err := payload.Decode(c.Callback().Data)
	if err != nil {
		d.log.Warn("malformed callback payload",
			slog.String("stage", string(current)),
			slog.Any("error", err),
		)
		return d.runFallback(c)
	}

	handler := d.getAction(current, action.Kind)
	if handler == nil {
		d.log.Info("callback does not match current stage",
			slog.String("stage", string(current)),
			slog.String("kind", string(action.Kind)),
		)
		return d.runFallback(c)
	}

	return handler(c, action)
}

// DispatchText routes a plain message to the text handler of the chat's
// current stage. It reports whether a handler was registered for the stage.
func (d *Dispatcher) DispatchText(c telebot.Context) (bool, error) {
	if c == nil {
		return false, nil
	}

	current, err := d.currentStage(c)
	if err != nil {
		return false, err
	}

	handler := d.getText(current)
	if handler == nil {
		return false, nil
	}

	return true, handler(c)
}

func (d *Dispatcher) currentStage(c telebot.Context) (stage.Stage, error) {
	if d.stages == nil || c.Chat() == nil {
		return stage.StageIdle, nil
	}

	chatStage, err := d.stages.GetStage(context.Background(), c.Chat().ID)
	if err != nil {
		if errors.Is(err, stage.ErrStageNotFound) {
			return stage.StageIdle, nil
		}
		return stage.StageIdle, err
	}

	return chatStage.Current, nil
}

func (d *Dispatcher) runFallback(c telebot.Context) error {
	fallback := d.getFallback()
	if fallback == nil {
		d.log.Warn("no fallback handler configured, ignoring callback")
		return nil
	}
	return fallback(c)
}

func (d *Dispatcher) getAction(s stage.Stage, kind payload.Kind) ActionHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.actions[s][kind]
}

func (d *Dispatcher) getText(s stage.Stage) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.texts[s]
}

func (d *Dispatcher) getFallback() handlers.CallbackHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fallback
}
