package stage

import "time"

// Stage represents a chat's current point in the fixed menu tree.
type Stage string

const (
	// StageIdle indicates that no conversation flow is in progress.
	StageIdle Stage = "idle"
	// StageAwaitingAdminMenu indicates that the admin menu is shown and the bot waits for a button press.
	StageAwaitingAdminMenu Stage = "awaiting_admin_menu"
	// StageAwaitingRoomSelection indicates that a user is choosing a quest number.
	StageAwaitingRoomSelection Stage = "awaiting_room_selection"
	// StageAwaitingNewQuestText indicates that the admin is typing a new quest.
	StageAwaitingNewQuestText Stage = "awaiting_new_quest_text"
	// StageAwaitingNewGameName indicates that the admin is typing a name for a new game.
	StageAwaitingNewGameName Stage = "awaiting_new_game_name"
	// StageAwaitingGameToLoad indicates that the admin is picking a game to load.
	StageAwaitingGameToLoad Stage = "awaiting_game_to_load"
	// StageAwaitingGameToDelete indicates that the admin is picking a game to delete.
	StageAwaitingGameToDelete Stage = "awaiting_game_to_delete"
	// StageAwaitingQuestToDelete indicates that the admin is picking a quest to delete.
	StageAwaitingQuestToDelete Stage = "awaiting_quest_to_delete"
)

// ChatStage captures the conversation stage for one chat.
type ChatStage struct {
	ChatID    int64     `json:"chat_id"`
	Current   Stage     `json:"current_stage"`
	UpdatedAt time.Time `json:"updated_at"`
}
