package chessdto

// Error codes carried by DomainError.
const (
	CodeSessionNotFound = "session_not_found"
	CodeInvalidMove     = "invalid_move"
	CodeInvalidSquare   = "invalid_square"
	CodeInvalidLevel    = "invalid_level"
	CodeInvalidSide     = "invalid_side"
	CodeInvalidPosition = "invalid_position"
	CodeInvalidRequest  = "invalid_request"
	CodeUndoUnavailable = "undo_unavailable"
	CodeNotYourTurn     = "not_your_turn"
	CodeGameOver        = "game_over"
	CodeTooManySessions = "too_many_sessions"
	CodeHintUnavailable = "hint_unavailable"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}
