package chessdto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists pieces each side has taken, in capture order.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type Outcome struct {
	Kind   string `json:"kind"`
	Winner string `json:"winner,omitempty"`
}

type SessionState struct {
	ID          string         `json:"id"`
	PlayerID    string         `json:"player_id,omitempty"`
	HumanSide   string         `json:"human_side"`
	EngineSide  string         `json:"engine_side"`
	Level       int            `json:"level"`
	Preset      string         `json:"preset"`
	Elo         int            `json:"elo"`
	StartFEN    string         `json:"start_fen"`
	FEN         string         `json:"fen"`
	Board       []string       `json:"board"`
	SideToMove  string         `json:"side_to_move"`
	State       string         `json:"state"`
	Status      string         `json:"status"`
	StatusText  string         `json:"status_text"`
	Outcome     Outcome        `json:"outcome"`
	Thinking    bool           `json:"thinking"`
	EngineIdle  bool           `json:"engine_idle,omitempty"`
	History     []string       `json:"history"`
	MovesUCI    []string       `json:"moves_uci"`
	MovesSAN    []string       `json:"moves_san"`
	LastMove    *Move          `json:"last_move,omitempty"`
	CheckSquare string         `json:"check_square,omitempty"`
	Hint        *Move          `json:"hint,omitempty"`
	Material    MaterialScore  `json:"material"`
	Captured    CapturedPieces `json:"captured"`
	Version     uint64         `json:"version"`
	Ply         int            `json:"ply"`
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Event struct {
	Type  string        `json:"type"`
	State *SessionState `json:"state"`
}
