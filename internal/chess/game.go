package chess

import "context"

// DefaultHistoryLimit is how many history entries History returns unless changed.
const DefaultHistoryLimit = 60

type State int

const (
	StateAwaitingHuman State = iota
	StateEngineThinking
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateAwaitingHuman:
		return "awaiting_human"
	case StateEngineThinking:
		return "engine_thinking"
	case StateGameOver:
		return "game_over"
	}
	return "unknown"
}

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCheckmate
	OutcomeStalemate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCheckmate:
		return "checkmate"
	case OutcomeStalemate:
		return "stalemate"
	}
	return "none"
}

// Outcome describes how a game ended. Winner is meaningful for checkmate only.
type Outcome struct {
	Kind   OutcomeKind
	Winner Side
}

// MoveRecord is an applied move with the piece that moved and whatever it captured.
type MoveRecord struct {
	Move     Move
	Piece    Piece
	Captured Piece
}

// Highlights are the squares a board view marks after a move.
type Highlights struct {
	LastMove    Move
	HasLastMove bool
	CheckSquare Square
	InCheck     bool
}

// Game is one human-versus-engine session. It is not safe for concurrent use;
// callers serialise access.
//
// The engine side is never driven from inside Game. A scheduler calls
// BeginThinking, searches a copy of Position, and hands the result back through
// CompleteEngineMove with the version BeginThinking returned. Any other mutation
// in between bumps the version, so a late result is dropped.
type Game struct {
	positions []Position
	moves     []MoveRecord

	startSide Side
	humanSide Side
	level     int

	thinking     bool
	version      uint64
	hint         Move
	hasHint      bool
	historyLimit int
}

// NewGame starts from the initial position with white to move.
func NewGame(humanSide Side, level int) *Game {
	return NewGameFrom(Initial(), White, humanSide, level)
}

// NewGameFrom starts from an arbitrary position.
func NewGameFrom(p Position, toMove, humanSide Side, level int) *Game {
	return &Game{
		positions:    []Position{p},
		startSide:    toMove,
		humanSide:    humanSide,
		level:        ClampLevel(level),
		historyLimit: DefaultHistoryLimit,
	}
}

func (g *Game) Position() Position { return g.positions[len(g.positions)-1] }

// Positions returns a copy of the position stack, index 0 being the start.
func (g *Game) Positions() []Position { return append([]Position(nil), g.positions...) }

// Moves returns a copy of the applied moves, oldest first.
func (g *Game) Moves() []MoveRecord { return append([]MoveRecord(nil), g.moves...) }

func (g *Game) Ply() int          { return len(g.moves) }
func (g *Game) StartSide() Side   { return g.startSide }
func (g *Game) HumanSide() Side   { return g.humanSide }
func (g *Game) EngineSide() Side  { return g.humanSide.Opponent() }
func (g *Game) Level() int        { return g.level }
func (g *Game) Version() uint64   { return g.version }
func (g *Game) Thinking() bool    { return g.thinking }
func (g *Game) HistoryLimit() int { return g.historyLimit }

// SideToMove follows from the starting side and the parity of the ply count.
func (g *Game) SideToMove() Side {
	if len(g.moves)%2 == 0 {
		return g.startSide
	}
	return g.startSide.Opponent()
}

func (g *Game) Outcome() Outcome {
	p, side := g.Position(), g.SideToMove()
	if HasLegalMove(p, side) {
		return Outcome{Kind: OutcomeNone}
	}
	if IsInCheck(p, side) {
		return Outcome{Kind: OutcomeCheckmate, Winner: side.Opponent()}
	}
	return Outcome{Kind: OutcomeStalemate}
}

func (g *Game) State() State {
	if g.Outcome().Kind != OutcomeNone {
		return StateGameOver
	}
	if g.SideToMove() != g.humanSide {
		return StateEngineThinking
	}
	return StateAwaitingHuman
}

func (g *Game) Status() string {
	out := g.Outcome()
	switch out.Kind {
	case OutcomeCheckmate:
		return out.Winner.String() + " wins by checkmate"
	case OutcomeStalemate:
		return "Draw by stalemate"
	}
	if g.SideToMove() != g.humanSide {
		return "Engine thinking..."
	}
	return g.SideToMove().String() + " to move"
}

// LegalMovesForSquare lists the legal moves of the side to move starting on sq.
func (g *Game) LegalMovesForSquare(sq Square) []Move {
	return LegalMovesFrom(g.Position(), g.SideToMove(), sq)
}

// LegalMoves lists every legal move of the side to move.
func (g *Game) LegalMoves() []Move {
	return LegalMoves(g.Position(), g.SideToMove())
}

// matchLegal finds the legal move with m's squares. The promotion piece always
// comes from the generated move.
func (g *Game) matchLegal(m Move) (Move, bool) {
	if !m.From.Valid() || !m.To.Valid() {
		return Move{}, false
	}
	for _, legal := range g.LegalMovesForSquare(m.From) {
		if legal.To == m.To {
			return legal, true
		}
	}
	return Move{}, false
}

// PlayHuman applies m for the human. It reports false and leaves the game
// untouched when it is not the human's turn, the game is over, or m is illegal.
func (g *Game) PlayHuman(m Move) bool {
	if g.State() != StateAwaitingHuman {
		return false
	}
	legal, ok := g.matchLegal(m)
	if !ok {
		return false
	}
	g.apply(legal)
	return true
}

// BeginThinking raises the single outstanding search guard. It fails when the
// engine is not to move or a search is already outstanding.
func (g *Game) BeginThinking() (uint64, bool) {
	if g.thinking || g.State() != StateEngineThinking {
		return 0, false
	}
	g.thinking = true
	g.version++
	return g.version, true
}

// CompleteEngineMove applies the engine's move if version still matches the one
// BeginThinking returned and m is legal. The guard is released either way.
func (g *Game) CompleteEngineMove(m Move, version uint64) bool {
	if !g.thinking || version != g.version {
		return false
	}
	g.thinking = false
	legal, ok := g.matchLegal(m)
	if !ok {
		return false
	}
	g.apply(legal)
	return true
}

// CancelThinking drops the guard and invalidates any outstanding search.
func (g *Game) CancelThinking() {
	g.thinking = false
	g.version++
}

func (g *Game) apply(m Move) {
	p := g.Position()
	g.moves = append(g.moves, MoveRecord{
		Move:     m,
		Piece:    p.PieceAt(m.From),
		Captured: p.PieceAt(m.To),
	})
	g.positions = append(g.positions, ApplyMove(p, m))
	g.touch()
}

func (g *Game) touch() {
	g.thinking = false
	g.hasHint = false
	g.version++
}

// UndoPly takes back the last move. Nothing happens at the initial position.
func (g *Game) UndoPly() bool {
	if len(g.moves) == 0 {
		return false
	}
	g.moves = g.moves[:len(g.moves)-1]
	g.positions = g.positions[:len(g.positions)-1]
	g.touch()
	return true
}

// UndoTurn takes back up to two plies and returns how many were undone.
func (g *Game) UndoTurn() int {
	n := 0
	for n < 2 && g.UndoPly() {
		n++
	}
	return n
}

// Undo takes back up to plies moves and returns how many were undone.
func (g *Game) Undo(plies int) int {
	n := 0
	for n < plies && g.UndoPly() {
		n++
	}
	return n
}

// CanHint reports whether a hint may be requested now.
func (g *Game) CanHint() bool {
	return g.State() == StateAwaitingHuman
}

// Hint searches for the human's best move without playing it.
func (g *Game) Hint(ctx context.Context, e *Engine) (Move, bool) {
	if !g.CanHint() {
		return Move{}, false
	}
	choice, err := e.Hint(ctx, g.Position(), g.SideToMove(), g.level)
	if err != nil {
		return Move{}, false
	}
	g.hint, g.hasHint = choice.Move, true
	return choice.Move, true
}

// RecordHint stores a hint found outside the game, provided nothing changed since version.
func (g *Game) RecordHint(m Move, version uint64) bool {
	if version != g.version || !g.CanHint() {
		return false
	}
	g.hint, g.hasHint = m, true
	return true
}

// LastHint returns the hint for the current position, if one was found.
func (g *Game) LastHint() (Move, bool) { return g.hint, g.hasHint }

// History returns formatted moves, newest first, capped at the history limit.
func (g *Game) History() []string {
	n := min(len(g.moves), g.historyLimit)
	out := make([]string, 0, n)
	for i := len(g.moves) - 1; i >= 0 && len(out) < n; i-- {
		rec := g.moves[i]
		out = append(out, FormatMove(rec.Move, rec.Piece))
	}
	return out
}

// SetHistoryLimit changes the History cap; non-positive values restore the default.
func (g *Game) SetHistoryLimit(n int) {
	if n <= 0 {
		n = DefaultHistoryLimit
	}
	g.historyLimit = n
}

func (g *Game) Highlights() Highlights {
	var h Highlights
	if len(g.moves) > 0 {
		h.LastMove = g.moves[len(g.moves)-1].Move
		h.HasLastMove = true
	}
	p, side := g.Position(), g.SideToMove()
	if IsInCheck(p, side) {
		h.CheckSquare, _ = KingSquare(p, side)
		h.InCheck = true
	}
	return h
}

// SetLevel changes the difficulty. An outstanding search is invalidated so the
// next one uses the new level.
func (g *Game) SetLevel(level int) {
	g.level = ClampLevel(level)
	g.touch()
}
