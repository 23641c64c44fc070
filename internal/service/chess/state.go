package chess

import (
	"time"

	corechess "github.com/park285/cheese-chess/internal/chess"
)

type EventType string

const (
	EventSnapshot   EventType = "snapshot"
	EventHumanMove  EventType = "human_move"
	EventThinking   EventType = "engine_thinking"
	EventEngineMove EventType = "engine_move"
	EventEngineIdle EventType = "engine_idle"
	EventUndo       EventType = "undo"
	EventHint       EventType = "hint"
	EventLevel      EventType = "level"
	EventClosed     EventType = "closed"
	EventExpired    EventType = "expired"
)

// Event is published to subscribers after every change to a session.
type Event struct {
	Type  EventType
	State *SessionState
}

// SessionState is an immutable snapshot of a session.
type SessionState struct {
	ID         string
	PlayerID   string
	HumanSide  corechess.Side
	Level      int
	StartFEN   string
	FEN        string
	Position   corechess.Position
	SideToMove corechess.Side
	State      corechess.State
	Outcome    corechess.Outcome
	Status     string
	Thinking   bool
	// EngineIdle is set when the engine's turn failed and waits for an undo or level change.
	EngineIdle bool
	History    []string
	Moves      []corechess.MoveRecord
	Highlights corechess.Highlights
	Hint       *corechess.Move
	Version    uint64
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// MovesUCI lists the applied moves in coordinate notation, oldest first.
func (st *SessionState) MovesUCI() []string {
	out := make([]string, 0, len(st.Moves))
	for _, rec := range st.Moves {
		out = append(out, rec.Move.UCI())
	}
	return out
}

func (st *SessionState) Finished() bool {
	return st.State == corechess.StateGameOver
}

func (s *Service) snapshotLocked(sess *session) *SessionState {
	g := sess.game
	pos, stm := g.Position(), g.SideToMove()
	state := &SessionState{
		ID:         sess.id,
		PlayerID:   sess.playerID,
		HumanSide:  g.HumanSide(),
		Level:      g.Level(),
		StartFEN:   sess.startFEN,
		FEN:        pos.FEN(stm),
		Position:   pos,
		SideToMove: stm,
		State:      g.State(),
		Outcome:    g.Outcome(),
		Status:     g.Status(),
		Thinking:   g.Thinking(),
		EngineIdle: sess.idle && sess.idleVersion == g.Version(),
		History:    g.History(),
		Moves:      g.Moves(),
		Highlights: g.Highlights(),
		Version:    g.Version(),
		StartedAt:  sess.startedAt,
		UpdatedAt:  sess.updatedAt,
	}
	if hint, ok := g.LastHint(); ok {
		state.Hint = &hint
	}
	return state
}
