package chess

import "math"

var pieceValues = [...]int{NoKind: 0, Pawn: 100, Knight: 320, Bishop: 330, Rook: 500, Queen: 900, King: 20000}

// PieceValue is the material value of a kind in centipawns.
func PieceValue(k Kind) int {
	if int(k) >= len(pieceValues) {
		return 0
	}
	return pieceValues[k]
}

// centralization[r][c] is (4 - min(4, |3.5-r| + |3.5-c|)) * 2; the distance is always whole.
var centralization = func() (table [8][8]int) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			dist := math.Abs(3.5-float64(r)) + math.Abs(3.5-float64(c))
			table[r][c] = int((4 - math.Min(4, dist)) * 2)
		}
	}
	return table
}()

// Evaluate scores p from white's point of view: material plus a small bonus for
// pieces near the centre.
func Evaluate(p Position) int {
	score := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := p.cells[r][c]
			if piece.IsEmpty() {
				continue
			}
			score += piece.Side().sign() * (PieceValue(piece.Kind()) + centralization[r][c])
		}
	}
	return score
}
