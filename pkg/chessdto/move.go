package chessdto

// Move is a move in coordinate form. SAN is filled when the position it was
// played from is known.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	UCI       string `json:"uci"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san,omitempty"`
}

type LegalMoves struct {
	Square string `json:"square"`
	Moves  []Move `json:"moves"`
}

// Hint is a suggested move for the human side. It is never played.
type Hint struct {
	Move   Move          `json:"move"`
	Score  int           `json:"score"`
	Depth  int           `json:"depth"`
	Shared bool          `json:"shared"`
	Text   string        `json:"text"`
	State  *SessionState `json:"state,omitempty"`
}
