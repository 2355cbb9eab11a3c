package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// outgoing captures one Send or Edit call.
type outgoing struct {
	text   string
	markup *telebot.ReplyMarkup
}

// fakeContext records the bot's side of the conversation. Only the methods
// the handlers touch are implemented; anything else panics through the
// embedded nil interface, which is exactly what a test should do on an
// unexpected call.
type fakeContext struct {
	telebot.Context

	sender   *telebot.User
	chat     *telebot.Chat
	text     string
	callback *telebot.Callback

	sent      []outgoing
	edited    []outgoing
	deleted   bool
	responded int
	values    map[string]any
}

func newMessageContext(chatID, senderID int64, text string) *fakeContext {
	return &fakeContext{
		sender: &telebot.User{ID: senderID},
		chat:   &telebot.Chat{ID: chatID},
		text:   text,
		values: make(map[string]any),
	}
}

func newCallbackContext(chatID, senderID int64, data string) *fakeContext {
	return &fakeContext{
		sender:   &telebot.User{ID: senderID},
		chat:     &telebot.Chat{ID: chatID},
		callback: &telebot.Callback{Data: data},
		values:   make(map[string]any),
	}
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat         { return f.chat }
func (f *fakeContext) Text() string                { return f.text }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Delete() error               { f.deleted = true; return nil }
func (f *fakeContext) Set(key string, value any)   { f.values[key] = value }
func (f *fakeContext) Get(key string) any          { return f.values[key] }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, capture(what, opts))
	return nil
}

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	f.edited = append(f.edited, capture(what, opts))
	return nil
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responded++
	return nil
}

func (f *fakeContext) lastSent() outgoing {
	if len(f.sent) == 0 {
		return outgoing{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeContext) lastEdited() outgoing {
	if len(f.edited) == 0 {
		return outgoing{}
	}
	return f.edited[len(f.edited)-1]
}

func capture(what interface{}, opts []interface{}) outgoing {
	out := outgoing{}
	if text, ok := what.(string); ok {
		out.text = text
	}
	for _, opt := range opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			out.markup = markup
		}
	}
	return out
}
