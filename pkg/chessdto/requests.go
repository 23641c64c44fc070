package chessdto

type StartGameRequest struct {
	PlayerID string `json:"player_id"`
	Side     string `json:"side"`
	Level    int    `json:"level"`
	FEN      string `json:"fen"`
}

type PlayMoveRequest struct {
	Move string `json:"move"`
}

type UndoRequest struct {
	Plies int `json:"plies"`
}

type SetLevelRequest struct {
	Level int `json:"level"`
}
