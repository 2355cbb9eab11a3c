package handlers

// User-facing texts. These are part of the bot's observable behavior and are
// kept verbatim, typos included.
const (
	mainMenuText            = "Ви війшли як адміністратор"
	notSelectedText         = "Спочатку створи або загрузи гру"
	noGamesText             = "В тебе немає створенних ігор"
	noQuestsText            = "В тебе поки що немає створенних завдань"
	chooseGameText          = "Обери гру"
	chooseGameToDeleteText  = "Обери непотрібну гру"
	chooseQuestToDeleteText = "Обери непотрібне питання"
	inventNameText          = "Вигадай ім'я"
	questPromptText         = "Напиши текст завдання"
	yourQuestsText          = "Твої завдання:"
	chooseTeamText          = "Обери свою команду"
	notStartedText          = "Гра ще не почалась..."
	startingText            = "starting..."
	stoppingText            = "stopping..."
	farewellText            = "See you next time!"

	runningSuffix = "(RUNNING)"
	stoppedSuffix = "(STOPPED)"
)
