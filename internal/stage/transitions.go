package stage

// validTransitions contains the permitted transitions of the menu tree. Menu
// entry via /start bypasses the table (the conversation is reset), so Idle
// only needs to reach the two entry branches.
var validTransitions = map[Stage][]Stage{
	StageIdle: {
		StageAwaitingAdminMenu,
		StageAwaitingRoomSelection,
	},
	StageAwaitingAdminMenu: {
		StageAwaitingAdminMenu,
		StageAwaitingNewGameName,
		StageAwaitingNewQuestText,
		StageAwaitingGameToLoad,
		StageAwaitingGameToDelete,
		StageAwaitingQuestToDelete,
	},
	StageAwaitingNewGameName: {
		StageAwaitingAdminMenu,
	},
	StageAwaitingNewQuestText: {
		StageAwaitingAdminMenu,
	},
	StageAwaitingGameToLoad: {
		StageAwaitingAdminMenu,
	},
	StageAwaitingGameToDelete: {
		StageAwaitingAdminMenu,
	},
	StageAwaitingQuestToDelete: {
		StageAwaitingAdminMenu,
	},
	StageAwaitingRoomSelection: {
		StageIdle,
	},
}

// IsTransitionAllowed reports whether moving from one stage to another is valid.
func IsTransitionAllowed(from, to Stage) bool {
	// Any conversation may end; the wrong-query fallback relies on this.
	if to == StageIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, next := range allowed {
		if next == to {
			return true
		}
	}

	return false
}
