// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeSessionLocked       Code = "SESSION_LOCKED"
	CodeSessionStarted      Code = "SESSION_ALREADY_STARTED"
	CodeSessionNotStarted   Code = "SESSION_NOT_STARTED"
	CodeSessionFull         Code = "SESSION_FULL"
	CodeSessionBelowQuorum  Code = "SESSION_BELOW_QUORUM"
	CodeSessionInvalidBoard Code = "SESSION_INVALID_BOARD"

	// Participant errors
	CodeParticipantNotFound   Code = "PARTICIPANT_NOT_FOUND"
	CodeParticipantEmptyName  Code = "PARTICIPANT_EMPTY_NAME"
	CodeParticipantEliminated Code = "PARTICIPANT_ELIMINATED"
	CodeParticipantObserving  Code = "PARTICIPANT_OBSERVING"
	CodePositionUnknown       Code = "PARTICIPANT_POSITION_UNKNOWN"
	CodeNotYourTurn           Code = "NOT_YOUR_TURN"

	// Movement errors
	CodeDestinationUnreachable Code = "DESTINATION_UNREACHABLE"
	CodeNoMovementLeft         Code = "NO_MOVEMENT_LEFT"
	CodeNoActionsLeft          Code = "NO_ACTIONS_LEFT"
	CodeTileNotAdjacent        Code = "TILE_NOT_ADJACENT"
	CodeTileNotBreakable       Code = "TILE_NOT_BREAKABLE"
	CodeDoorBlocked            Code = "DOOR_BLOCKED"
	CodeMovementInProgress     Code = "MOVEMENT_IN_PROGRESS"

	// Combat errors
	CodeCombatNotFound     Code = "COMBAT_NOT_FOUND"
	CodeCombatExists       Code = "COMBAT_ALREADY_ACTIVE"
	CodeCombatNotYourTurn  Code = "COMBAT_NOT_YOUR_TURN"
	CodeCombatNotAdjacent  Code = "COMBAT_TARGET_NOT_ADJACENT"
	CodeCombatTargetGone   Code = "COMBAT_TARGET_ELIMINATED"
	CodeNoEvasionsLeft     Code = "COMBAT_NO_EVASIONS_LEFT"
	CodeCombatSelfTargeted Code = "COMBAT_SELF_TARGETED"

	// Item errors
	CodeInventoryEmpty    Code = "INVENTORY_EMPTY"
	CodeItemNotHeld       Code = "ITEM_NOT_HELD"
	CodeNoFreeTileForDrop Code = "NO_FREE_TILE_FOR_DROP"

	// Economy errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// Dice/mechanics errors
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"
	CodeSeedOutOfRange  Code = "SEED_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeParticipantEmptyName,
		CodeSessionInvalidBoard,
		CodeCombatSelfTargeted,
		CodeItemNotHeld,
		CodeDiceInvalidSpec,
		CodeSeedOutOfRange:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSessionLocked,
		CodeSessionStarted,
		CodeSessionNotStarted,
		CodeSessionFull,
		CodeSessionBelowQuorum,
		CodeParticipantEliminated,
		CodeParticipantObserving,
		CodePositionUnknown,
		CodeNotYourTurn,
		CodeDestinationUnreachable,
		CodeNoMovementLeft,
		CodeNoActionsLeft,
		CodeTileNotAdjacent,
		CodeTileNotBreakable,
		CodeDoorBlocked,
		CodeMovementInProgress,
		CodeCombatExists,
		CodeCombatNotYourTurn,
		CodeCombatNotAdjacent,
		CodeCombatTargetGone,
		CodeNoEvasionsLeft,
		CodeInventoryEmpty,
		CodeNoFreeTileForDrop,
		CodeInsufficientFunds:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeSessionNotFound,
		CodeParticipantNotFound,
		CodeCombatNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
