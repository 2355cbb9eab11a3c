// Package stage manages per-chat conversation stages for the bot.
package stage

import "context"

// Storage defines the persistence contract for chat conversation stages.
type Storage interface {
	// GetStage returns the current stage for the specified chat.
	GetStage(ctx context.Context, chatID int64) (*ChatStage, error)
	// SetStage saves the provided stage for the specified chat.
	SetStage(ctx context.Context, chatID int64, chatStage *ChatStage) error
	// ClearStage removes the stage for the specified chat.
	ClearStage(ctx context.Context, chatID int64) error
	// AllStages returns every stored chat stage.
	AllStages(ctx context.Context) ([]*ChatStage, error)
}
