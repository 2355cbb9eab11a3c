package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/stage"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates received labeled by action and status",
		},
		[]string{"action", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	stageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Total number of conversation stage transitions",
		},
		[]string{"from", "to"},
	)
	gameFileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_file_operations_total",
			Help: "Total number of game file store operations labeled by operation and status",
		},
		[]string{"operation", "status"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_conversations",
			Help: "Current number of chats with a stored conversation stage",
		},
	)
	chatsByStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chats_by_stage",
			Help: "Number of chats per conversation stage",
		},
		[]string{"stage"},
	)
)

var trackedStages = []stage.Stage{
	stage.StageIdle,
	stage.StageAwaitingAdminMenu,
	stage.StageAwaitingRoomSelection,
	stage.StageAwaitingNewQuestText,
	stage.StageAwaitingNewGameName,
	stage.StageAwaitingGameToLoad,
	stage.StageAwaitingGameToDelete,
	stage.StageAwaitingQuestToDelete,
}

func init() {
	stage.RegisterTransitionRecorder(RecordStageTransition)
	gamefile.RegisterOperationRecorder(RecordGameFileOperation)
}

// RecordUpdate increments update counters and records duration.
func RecordUpdate(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(action, status).Inc()
	updateDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordStageTransition tracks conversation stage transitions.
func RecordStageTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordGameFileOperation tracks operations against the game file store.
func RecordGameFileOperation(operation, status string) {
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	gameFileOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// SetActiveConversations updates the gauge for chats with a stored stage.
func SetActiveConversations(count int) {
	activeConversations.Set(float64(count))
}

// SetChatsByStage updates the gauge for the given stage.
func SetChatsByStage(s string, count int) {
	if s == "" {
		s = "unknown"
	}

	chatsByStage.WithLabelValues(s).Set(float64(count))
}

// StageCollector periodically gathers chat stage counts and emits gauge metrics.
type StageCollector struct {
	stages stage.Machine
}

// NewStageCollector builds a metrics collector bound to the provided stage machine.
func NewStageCollector(stages stage.Machine) *StageCollector {
	return &StageCollector{stages: stages}
}

// Run polls the stage machine every 10 seconds until ctx is cancelled.
func (c *StageCollector) Run(ctx context.Context) {
	if c == nil || c.stages == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *StageCollector) collect(ctx context.Context) error {
	chatStages, err := c.stages.AllStages(ctx)
	if err != nil {
		return err
	}

	SetActiveConversations(len(chatStages))

	stageCounts := make(map[string]int, len(chatStages))
	for _, cs := range chatStages {
		label := "unknown"
		if cs != nil && cs.Current != "" {
			label = string(cs.Current)
		}
		stageCounts[label]++
	}

	chatsByStage.Reset()

	for _, tracked := range trackedStages {
		label := string(tracked)
		SetChatsByStage(label, stageCounts[label])
		delete(stageCounts, label)
	}

	for label, count := range stageCounts {
		SetChatsByStage(label, count)
	}

	return nil
}
