package chessdto

import "time"

type Preference struct {
	PlayerID     string    `json:"player_id"`
	Level        int       `json:"level"`
	HumanSide    string    `json:"human_side"`
	GamesStarted int       `json:"games_started"`
	UpdatedAt    time.Time `json:"updated_at"`
}
