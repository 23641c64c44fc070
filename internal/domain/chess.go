package domain

import "time"

// PlayerPreference is what a player last chose when starting a game. It holds
// no game state.
type PlayerPreference struct {
	PlayerID     string    `json:"player_id"`
	Level        int       `json:"level"`
	HumanSide    string    `json:"human_side"`
	GamesStarted int       `json:"games_started"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
