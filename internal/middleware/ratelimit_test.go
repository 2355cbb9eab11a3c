package middleware

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type limiterStubContext struct {
	telebot.Context

	sender *telebot.User
	sent   []string
}

func (s *limiterStubContext) Sender() *telebot.User { return s.sender }

func (s *limiterStubContext) Send(what interface{}, opts ...interface{}) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(testLogger())
	mw := NewRateLimitMiddleware(limiter, 2, time.Minute, nil, testLogger())

	nextCalls := 0
	handler := mw.Handle(func(c telebot.Context) error {
		nextCalls++
		return nil
	})

	c := &limiterStubContext{sender: &telebot.User{ID: 7}}
	for i := 0; i < 3; i++ {
		require.NoError(t, handler(c))
	}

	assert.Equal(t, 2, nextCalls)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "Забагато запитів. Спробуй трохи пізніше.", c.sent[0])
}

func TestRateLimit_ExemptSendersBypass(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(testLogger())
	exempt := func(id int64) bool { return id == 7 }
	mw := NewRateLimitMiddleware(limiter, 1, time.Minute, exempt, testLogger())

	nextCalls := 0
	handler := mw.Handle(func(c telebot.Context) error {
		nextCalls++
		return nil
	})

	c := &limiterStubContext{sender: &telebot.User{ID: 7}}
	for i := 0; i < 5; i++ {
		require.NoError(t, handler(c))
	}

	assert.Equal(t, 5, nextCalls)
	assert.Empty(t, c.sent)
}

func TestRateLimit_DisabledWithoutLimiter(t *testing.T) {
	mw := NewRateLimitMiddleware(nil, 1, time.Minute, nil, testLogger())

	nextCalls := 0
	handler := mw.Handle(func(c telebot.Context) error {
		nextCalls++
		return nil
	})

	c := &limiterStubContext{sender: &telebot.User{ID: 7}}
	for i := 0; i < 3; i++ {
		require.NoError(t, handler(c))
	}

	assert.Equal(t, 3, nextCalls)
}
