package chess

var (
	knightOffsets   = [8][2]int{{-2, -1}, {-2, 1}, {2, -1}, {2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}}
	kingOffsets     = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalRays    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonalRays  = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	pawnCaptureCols = [2]int{-1, 1}
)

// IsSquareAttacked reports whether any piece of side by attacks sq.
func IsSquareAttacked(p Position, sq Square, by Side) bool {
	// A pawn of side by attacks sq from one row behind sq, relative to its own forward direction.
	pawn := MakePiece(by, Pawn)
	for _, dc := range pawnCaptureCols {
		if p.PieceAt(sq.offset(-by.Forward(), dc)) == pawn {
			return true
		}
	}

	knight := MakePiece(by, Knight)
	for _, d := range knightOffsets {
		if p.PieceAt(sq.offset(d[0], d[1])) == knight {
			return true
		}
	}

	king := MakePiece(by, King)
	for _, d := range kingOffsets {
		if p.PieceAt(sq.offset(d[0], d[1])) == king {
			return true
		}
	}

	queen := MakePiece(by, Queen)
	if rayHits(p, sq, diagonalRays[:], MakePiece(by, Bishop), queen) {
		return true
	}
	return rayHits(p, sq, orthogonalRays[:], MakePiece(by, Rook), queen)
}

// rayHits walks each ray from sq and reports whether the first occupied square
// holds one of the two given pieces.
func rayHits(p Position, sq Square, rays [][2]int, a, b Piece) bool {
	for _, d := range rays {
		cur := sq.offset(d[0], d[1])
		for cur.Valid() {
			piece := p.cells[cur.Row][cur.Col]
			if !piece.IsEmpty() {
				if piece == a || piece == b {
					return true
				}
				break
			}
			cur = cur.offset(d[0], d[1])
		}
	}
	return false
}

// KingSquare locates side's king.
func KingSquare(p Position, side Side) (Square, bool) {
	king := MakePiece(side, King)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p.cells[r][c] == king {
				return Square{Row: r, Col: c}, true
			}
		}
	}
	return Square{}, false
}

// IsInCheck reports whether side's king is attacked. A missing king counts as not in check.
func IsInCheck(p Position, side Side) bool {
	sq, ok := KingSquare(p, side)
	if !ok {
		return false
	}
	return IsSquareAttacked(p, sq, side.Opponent())
}
