package keyboard

import (
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/payload"
)

// Builder creates the inline keyboards of the menu tree.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// AdminMenu builds the admin main menu.
func (b *Builder) AdminMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "Нова гра",
				Data: payload.Menu(payload.KindMenuNewGame).Encode(),
			},
		},
		{
			{
				Text: "Почати",
				Data: payload.Menu(payload.KindMenuStartGame).Encode(),
			},
			{
				Text: "Зупинити",
				Data: payload.Menu(payload.KindMenuStopGame).Encode(),
			},
		},
		{
			{
				Text: "Загрузити гру",
				Data: payload.Menu(payload.KindMenuLoadGame).Encode(),
			},
		},
		{
			{
				Text: "Видалити гру",
				Data: payload.Menu(payload.KindMenuDeleteGame).Encode(),
			},
		},
		{
			{
				Text: "Переглянути завдання",
				Data: payload.Menu(payload.KindMenuShowQuests).Encode(),
			},
		},
		{
			{
				Text: "Видалити завдання",
				Data: payload.Menu(payload.KindMenuDeleteQuest).Encode(),
			},
		},
		{
			{
				Text: "Додадти завдання",
				Data: payload.Menu(payload.KindMenuAddQuest).Encode(),
			},
		},
	}
	return markup
}

// GamesToLoad builds one button per game targeting the load action.
func (b *Builder) GamesToLoad(games []string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	for _, game := range games {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{
				Text: game,
				Data: payload.LoadGame(game).Encode(),
			},
		})
	}
	return markup
}

// GamesToDelete builds one button per game targeting the delete action,
// with a trailing back row.
func (b *Builder) GamesToDelete(games []string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	for _, game := range games {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{
				Text: game,
				Data: payload.DeleteGame(game).Encode(),
			},
		})
	}
	markup.InlineKeyboard = append(markup.InlineKeyboard, backRow())
	return markup
}

// QuestsToDelete builds a numbered button per quest targeting the delete
// action, with a trailing back row. Labels are 1-based, payloads 0-based.
func (b *Builder) QuestsToDelete(questCount int) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	for i := 0; i < questCount; i++ {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{
				Text: strconv.Itoa(i + 1),
				Data: payload.DeleteQuest(i).Encode(),
			},
		})
	}
	markup.InlineKeyboard = append(markup.InlineKeyboard, backRow())
	return markup
}

// Rooms builds a numbered button per quest for the user flow. Labels are
// 1-based, payloads 0-based.
func (b *Builder) Rooms(questCount int) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	for i := 0; i < questCount; i++ {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{
				Text: strconv.Itoa(i + 1),
				Data: payload.SelectRoom(i).Encode(),
			},
		})
	}
	return markup
}

func backRow() []telebot.InlineButton {
	return []telebot.InlineButton{
		{
			Text: "Назад",
			Data: payload.Menu(payload.KindBack).Encode(),
		},
	}
}
