// Package payload defines the actions carried by inline button callbacks.
//
// Buttons carry opaque wire strings; this package is the only place that
// encodes or decodes them. Internal dispatch matches on the decoded Action,
// never on the raw string.
package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the Action union.
type Kind string

const (
	KindMenuNewGame     Kind = "new_game"
	KindMenuStartGame   Kind = "start_game"
	KindMenuStopGame    Kind = "stop_game"
	KindMenuLoadGame    Kind = "load_game"
	KindMenuDeleteGame  Kind = "del_game"
	KindMenuShowQuests  Kind = "show_quests"
	KindMenuDeleteQuest Kind = "del_quest"
	KindMenuAddQuest    Kind = "add_quest"
	KindBack            Kind = "back"
	KindLoadGame        Kind = "load_game_target"
	KindDeleteGame      Kind = "del_game_target"
	KindDeleteQuest     Kind = "del_quest_target"
	KindSelectRoom      Kind = "select_room"
)

const (
	loadGamePrefix = "load_game_"
	delGamePrefix  = "del_game_"
	delQuestPrefix = "del_quest_"
)

// ErrUnknownPayload indicates wire data that decodes into no known action.
var ErrUnknownPayload = errors.New("unknown callback payload")

// Action is a decoded button payload: a kind plus at most one argument.
type Action struct {
	Kind  Kind
	Game  string
	Index int
}

// Menu returns an argument-less menu action.
func Menu(kind Kind) Action {
	return Action{Kind: kind}
}

// LoadGame targets a concrete game to select.
func LoadGame(game string) Action {
	return Action{Kind: KindLoadGame, Game: game}
}

// DeleteGame targets a concrete game to delete.
func DeleteGame(game string) Action {
	return Action{Kind: KindDeleteGame, Game: game}
}

// DeleteQuest targets a quest by its 0-based index.
func DeleteQuest(index int) Action {
	return Action{Kind: KindDeleteQuest, Index: index}
}

// SelectRoom targets a quest by its 0-based index in the user flow.
func SelectRoom(index int) Action {
	return Action{Kind: KindSelectRoom, Index: index}
}

// Encode renders the action onto the wire. The wire format is stable:
// changing it invalidates buttons in messages already delivered to chats.
func (a Action) Encode() string {
	switch a.Kind {
	case KindLoadGame:
		return loadGamePrefix + a.Game
	case KindDeleteGame:
		return delGamePrefix + a.Game
	case KindDeleteQuest:
		return delQuestPrefix + strconv.Itoa(a.Index)
	case KindSelectRoom:
		return strconv.Itoa(a.Index)
	default:
		return string(a.Kind)
	}
}

// Decode parses wire data back into an Action. Exact menu payloads are
// matched before the argument-carrying prefixes, so "load_game" selects the
// menu action while "load_game_quiz" targets the game "quiz".
func Decode(data string) (Action, error) {
	data = strings.TrimPrefix(data, "\f")

	switch Kind(data) {
	case KindMenuNewGame, KindMenuStartGame, KindMenuStopGame, KindMenuLoadGame,
		KindMenuDeleteGame, KindMenuShowQuests, KindMenuDeleteQuest, KindMenuAddQuest, KindBack:
		return Action{Kind: Kind(data)}, nil
	}

	if game, ok := strings.CutPrefix(data, loadGamePrefix); ok {
		return LoadGame(game), nil
	}

	if game, ok := strings.CutPrefix(data, delGamePrefix); ok {
		return DeleteGame(game), nil
	}

	if raw, ok := strings.CutPrefix(data, delQuestPrefix); ok {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return Action{}, fmt.Errorf("%w: bad quest index %q", ErrUnknownPayload, raw)
		}
		return DeleteQuest(index), nil
	}

	if index, err := strconv.Atoi(data); err == nil {
		return SelectRoom(index), nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrUnknownPayload, data)
}
