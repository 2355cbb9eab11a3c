package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminMenu(t *testing.T) {
	markup := NewBuilder(nil).AdminMenu()

	require.Len(t, markup.InlineKeyboard, 7)

	var payloads []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			payloads = append(payloads, btn.Data)
		}
	}

	assert.Equal(t, []string{
		"new_game",
		"start_game", "stop_game",
		"load_game",
		"del_game",
		"show_quests",
		"del_quest",
		"add_quest",
	}, payloads)
}

func TestGamesToLoad(t *testing.T) {
	markup := NewBuilder(nil).GamesToLoad([]string{"alpha", "beta"})

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "alpha", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "load_game_alpha", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "load_game_beta", markup.InlineKeyboard[1][0].Data)
}

func TestGamesToDelete_HasBackRow(t *testing.T) {
	markup := NewBuilder(nil).GamesToDelete([]string{"alpha"})

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "del_game_alpha", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "Назад", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "back", markup.InlineKeyboard[1][0].Data)
}

func TestQuestsToDelete_NumberingAndBack(t *testing.T) {
	markup := NewBuilder(nil).QuestsToDelete(3)

	require.Len(t, markup.InlineKeyboard, 4)
	// Display numbers are 1-based, payload indices 0-based.
	assert.Equal(t, "1", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "del_quest_0", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "3", markup.InlineKeyboard[2][0].Text)
	assert.Equal(t, "del_quest_2", markup.InlineKeyboard[2][0].Data)
	assert.Equal(t, "back", markup.InlineKeyboard[3][0].Data)
}

func TestRooms_Numbering(t *testing.T) {
	markup := NewBuilder(nil).Rooms(1)

	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "1", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "0", markup.InlineKeyboard[0][0].Data)
}
