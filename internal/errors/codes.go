// Package errors provides structured error handling for world mutators and
// the RPC boundary.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected internal error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation indicates malformed parameters, out-of-range values,
	// or an unknown enum value.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound indicates an entity id does not resolve.
	CodeNotFound Code = "NOT_FOUND"

	// CodeCrossWorld indicates two referenced entities live in different
	// worlds.
	CodeCrossWorld Code = "CROSS_WORLD"

	// Location-invariant violations.
	CodeNotHere    Code = "NOT_HERE"
	CodeNotHolding Code = "NOT_HOLDING"
	CodeNoArea     Code = "NO_AREA"

	// Inventory slot constraints.
	CodeSlotOccupied  Code = "SLOT_OCCUPIED"
	CodeBothHandsFull Code = "BOTH_HANDS_FULL"

	// CodeAlreadyOwned indicates an ownership conflict on claim.
	CodeAlreadyOwned Code = "ALREADY_OWNED"

	// CodeTimeout indicates an RPC request exceeded its deadline.
	CodeTimeout Code = "TIMEOUT"

	// CodeConflict indicates the transactional retry budget was exceeded.
	CodeConflict Code = "CONFLICT"

	// Scheduler-side codes, counted and logged but never surfaced over RPC.
	CodeParse         Code = "PARSE_ERROR"
	CodeUnknownAction Code = "UNKNOWN_ACTION"
)
