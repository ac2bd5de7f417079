package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionLocked       = "SESSION_LOCKED"
	CodeSessionStarted      = "SESSION_ALREADY_STARTED"
	CodeSessionNotStarted   = "SESSION_NOT_STARTED"
	CodeSessionFull         = "SESSION_FULL"
	CodeSessionBelowQuorum  = "SESSION_BELOW_QUORUM"
	CodeSessionInvalidBoard = "SESSION_INVALID_BOARD"

	CodeParticipantNotFound   = "PARTICIPANT_NOT_FOUND"
	CodeParticipantEmptyName  = "PARTICIPANT_EMPTY_NAME"
	CodeParticipantEliminated = "PARTICIPANT_ELIMINATED"
	CodeParticipantObserving  = "PARTICIPANT_OBSERVING"
	CodePositionUnknown       = "PARTICIPANT_POSITION_UNKNOWN"
	CodeNotYourTurn           = "NOT_YOUR_TURN"

	CodeDestinationUnreachable = "DESTINATION_UNREACHABLE"
	CodeNoMovementLeft         = "NO_MOVEMENT_LEFT"
	CodeNoActionsLeft          = "NO_ACTIONS_LEFT"
	CodeTileNotAdjacent        = "TILE_NOT_ADJACENT"
	CodeTileNotBreakable       = "TILE_NOT_BREAKABLE"
	CodeDoorBlocked            = "DOOR_BLOCKED"
	CodeMovementInProgress     = "MOVEMENT_IN_PROGRESS"

	CodeCombatNotFound     = "COMBAT_NOT_FOUND"
	CodeCombatExists       = "COMBAT_ALREADY_ACTIVE"
	CodeCombatNotYourTurn  = "COMBAT_NOT_YOUR_TURN"
	CodeCombatNotAdjacent  = "COMBAT_TARGET_NOT_ADJACENT"
	CodeCombatTargetGone   = "COMBAT_TARGET_ELIMINATED"
	CodeNoEvasionsLeft     = "COMBAT_NO_EVASIONS_LEFT"
	CodeCombatSelfTargeted = "COMBAT_SELF_TARGETED"

	CodeInventoryEmpty    = "INVENTORY_EMPTY"
	CodeItemNotHeld       = "ITEM_NOT_HELD"
	CodeNoFreeTileForDrop = "NO_FREE_TILE_FOR_DROP"

	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"

	CodeDiceInvalidSpec = "DICE_INVALID_SPEC"
	CodeSeedOutOfRange  = "SEED_OUT_OF_RANGE"

	CodeNotFound = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Session errors
		CodeSessionNotFound:     "Match session not found",
		CodeSessionLocked:       "This match is locked and cannot be joined",
		CodeSessionStarted:      "This match has already started",
		CodeSessionNotStarted:   "This match has not started yet",
		CodeSessionFull:         "This match is full",
		CodeSessionBelowQuorum:  "Not enough players to continue the match",
		CodeSessionInvalidBoard: "The match map is invalid",

		// Participant errors
		CodeParticipantNotFound:   "Player not found in this match",
		CodeParticipantEmptyName:  "Player name cannot be empty",
		CodeParticipantEliminated: "{{.Name}} has been eliminated",
		CodeParticipantObserving:  "Observers cannot act in the match",
		CodePositionUnknown:       "Player position is unknown",
		CodeNotYourTurn:           "It is not your turn",

		// Movement errors
		CodeDestinationUnreachable: "That tile cannot be reached this turn",
		CodeNoMovementLeft:         "No movement points remaining",
		CodeNoActionsLeft:          "No actions remaining",
		CodeTileNotAdjacent:        "That tile is not adjacent to you",
		CodeTileNotBreakable:       "That wall cannot be broken",
		CodeDoorBlocked:            "The door is blocked by another player",
		CodeMovementInProgress:     "You are already moving",

		// Combat errors
		CodeCombatNotFound:     "No active combat for this match",
		CodeCombatExists:       "A combat is already in progress",
		CodeCombatNotYourTurn:  "It is not your combat turn",
		CodeCombatNotAdjacent:  "That opponent is not adjacent to you",
		CodeCombatTargetGone:   "That opponent has already been eliminated",
		CodeNoEvasionsLeft:     "No evasion attempts remaining",
		CodeCombatSelfTargeted: "You cannot fight yourself",

		// Item errors
		CodeInventoryEmpty:    "Your inventory is empty",
		CodeItemNotHeld:       "You are not carrying that item",
		CodeNoFreeTileForDrop: "No free tile nearby to drop the item",

		// Economy errors
		CodeInsufficientFunds: "Not enough coins to pay the entry fee of {{.Fee}}",

		// Dice errors
		CodeDiceInvalidSpec: "Dice must have positive sides",
		CodeSeedOutOfRange:  "Seed value is out of range",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
