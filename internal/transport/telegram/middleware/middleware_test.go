package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	chat  *tele.Chat
	store map[string]any
}

func newFakeContext(chat *tele.Chat) *fakeContext {
	return &fakeContext{chat: chat, store: make(map[string]any)}
}

func (c *fakeContext) Chat() *tele.Chat         { return c.chat }
func (c *fakeContext) Callback() *tele.Callback { return nil }
func (c *fakeContext) Text() string             { return "/portfolio" }
func (c *fakeContext) Get(key string) any       { return c.store[key] }
func (c *fakeContext) Set(key string, val any)  { c.store[key] = val }

func TestLoggerSetsRequestID(t *testing.T) {
	c := newFakeContext(&tele.Chat{ID: 1})

	var seen string
	handler := Logger()(func(c tele.Context) error {
		seen, _ = c.Get("rqID").(string)
		return nil
	})

	require.NoError(t, handler(c))
	assert.NotEmpty(t, seen)
}

func TestOwnerOnly(t *testing.T) {
	calls := 0
	handler := OwnerOnly(42)(func(c tele.Context) error {
		calls++
		return nil
	})

	require.NoError(t, handler(newFakeContext(&tele.Chat{ID: 42})))
	require.NoError(t, handler(newFakeContext(&tele.Chat{ID: 7})))
	require.NoError(t, handler(newFakeContext(nil)))

	assert.Equal(t, 1, calls)
}
