package chess

import (
	"math"
	"sort"
)

const (
	// MateScore is the magnitude of a checkmate score before the depth adjustment.
	MateScore = 100000
	mateBias  = 3

	posInf = math.MaxInt32
	negInf = -posInf
)

// Result is the outcome of a fixed-depth search. Score is relative to the side
// that was to move. Found is false when no move was examined: the position was
// terminal or depth was zero.
type Result struct {
	Score int
	Move  Move
	Found bool
	Nodes int
}

// CaptureValue is the material value of the piece standing on m's destination.
func CaptureValue(p Position, m Move) int {
	return PieceValue(p.PieceAt(m.To).Kind())
}

// OrderMoves returns a copy of moves sorted by captured value, highest first.
// Moves with equal value keep their generation order.
func OrderMoves(p Position, moves []Move) []Move {
	ordered := append([]Move(nil), moves...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CaptureValue(p, ordered[i]) > CaptureValue(p, ordered[j])
	})
	return ordered
}

// Search runs negamax with alpha-beta pruning to the given depth.
func Search(p Position, side Side, depth int) Result {
	var nodes int
	res := negamax(p, side, depth, negInf, posInf, &nodes)
	res.Nodes = nodes
	return res
}

func negamax(p Position, side Side, depth, alpha, beta int, nodes *int) Result {
	*nodes++
	if depth <= 0 {
		return Result{Score: Evaluate(p) * side.sign()}
	}

	legal := LegalMoves(p, side)
	if len(legal) == 0 {
		if IsInCheck(p, side) {
			return Result{Score: -MateScore + (mateBias - depth)}
		}
		return Result{Score: 0}
	}

	best := Result{Score: negInf}
	for _, m := range OrderMoves(p, legal) {
		child := negamax(ApplyMove(p, m), side.Opponent(), depth-1, -beta, -alpha, nodes)
		val := -child.Score
		if val > best.Score {
			best = Result{Score: val, Move: m, Found: true}
		}
		if val > alpha {
			alpha = val
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
