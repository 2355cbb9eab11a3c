package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands and text messages.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

func respondCallback(c telebot.Context) error {
	if c == nil || c.Callback() == nil {
		return nil
	}
	return c.Respond(&telebot.CallbackResponse{})
}
