package stage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStorageFailure = errors.New("storage error")

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetStage(ctx context.Context, chatID int64) (*ChatStage, error) {
	args := m.Called(ctx, chatID)
	chatStage, _ := args.Get(0).(*ChatStage)
	return chatStage, args.Error(1)
}

func (m *mockStorage) SetStage(ctx context.Context, chatID int64, chatStage *ChatStage) error {
	args := m.Called(ctx, chatID, chatStage)
	return args.Error(0)
}

func (m *mockStorage) ClearStage(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *mockStorage) AllStages(ctx context.Context) ([]*ChatStage, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).([]*ChatStage)
	return all, args.Error(1)
}

func TestMachine_TransitionTo(t *testing.T) {
	ctx := context.Background()
	chatID := int64(42)

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		next        Stage
		expectedErr error
	}{
		{
			name: "successful transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetStage", mock.Anything, chatID).
					Return(&ChatStage{ChatID: chatID, Current: StageIdle}, nil).Once()
				ms.On("SetStage", mock.Anything, chatID, mock.MatchedBy(func(chatStage *ChatStage) bool {
					return chatStage.Current == StageAwaitingAdminMenu
				})).Return(nil).Once()
			},
			next:        StageAwaitingAdminMenu,
			expectedErr: nil,
		},
		{
			name: "invalid transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetStage", mock.Anything, chatID).
					Return(&ChatStage{ChatID: chatID, Current: StageIdle}, nil).Once()
			},
			next:        StageAwaitingQuestToDelete,
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "new chat starts from idle",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetStage", mock.Anything, chatID).
					Return((*ChatStage)(nil), ErrStageNotFound).Once()
				ms.On("SetStage", mock.Anything, chatID, mock.MatchedBy(func(chatStage *ChatStage) bool {
					return chatStage.Current == StageAwaitingRoomSelection
				})).Return(nil).Once()
			},
			next:        StageAwaitingRoomSelection,
			expectedErr: nil,
		},
		{
			name: "storage failure propagates",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetStage", mock.Anything, chatID).
					Return((*ChatStage)(nil), errStorageFailure).Once()
			},
			next:        StageAwaitingAdminMenu,
			expectedErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			machine := NewMachine(ms, testLogger())
			err := machine.TransitionTo(ctx, chatID, tc.next)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestMachine_SetStageBypassesTable(t *testing.T) {
	ctx := context.Background()
	chatID := int64(7)

	ms := &mockStorage{}
	// Entry via /start forces the stage even where the table forbids it.
	ms.On("SetStage", mock.Anything, chatID, mock.MatchedBy(func(chatStage *ChatStage) bool {
		return chatStage.Current == StageAwaitingAdminMenu
	})).Return(nil).Once()

	machine := NewMachine(ms, testLogger())
	require.NoError(t, machine.SetStage(ctx, chatID, StageAwaitingAdminMenu))

	ms.AssertExpectations(t)
}

func TestMachine_ClearStage(t *testing.T) {
	ctx := context.Background()
	chatID := int64(7)

	ms := &mockStorage{}
	ms.On("ClearStage", mock.Anything, chatID).Return(nil).Once()

	machine := NewMachine(ms, testLogger())
	assert.NoError(t, machine.ClearStage(ctx, chatID))

	ms.AssertExpectations(t)
}

func TestMachine_WithMemoryStorage(t *testing.T) {
	ctx := context.Background()
	chatID := int64(100)

	machine := NewMachine(NewMemoryStorage(), testLogger())

	_, err := machine.GetStage(ctx, chatID)
	assert.ErrorIs(t, err, ErrStageNotFound)

	require.NoError(t, machine.SetStage(ctx, chatID, StageAwaitingAdminMenu))
	require.NoError(t, machine.TransitionTo(ctx, chatID, StageAwaitingGameToLoad))

	stored, err := machine.GetStage(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingGameToLoad, stored.Current)

	err = machine.TransitionTo(ctx, chatID, StageAwaitingQuestToDelete)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, machine.ClearStage(ctx, chatID))
	_, err = machine.GetStage(ctx, chatID)
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
