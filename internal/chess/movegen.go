package chess

// PseudoMoves enumerates every move side could make by piece-movement rules alone,
// without regard to its own king's safety. Squares are visited row by row.
func PseudoMoves(p Position, side Side) []Move {
	moves := make([]Move, 0, 48)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := p.cells[r][c]
			if piece.IsEmpty() || piece.Side() != side {
				continue
			}
			moves = appendPieceMoves(moves, p, Square{Row: r, Col: c}, piece)
		}
	}
	return moves
}

func appendPieceMoves(moves []Move, p Position, from Square, piece Piece) []Move {
	side := piece.Side()
	switch piece.Kind() {
	case Pawn:
		return appendPawnMoves(moves, p, from, side)
	case Knight:
		return appendStepMoves(moves, p, from, side, knightOffsets[:])
	case Bishop:
		return appendRayMoves(moves, p, from, side, diagonalRays[:])
	case Rook:
		return appendRayMoves(moves, p, from, side, orthogonalRays[:])
	case Queen:
		moves = appendRayMoves(moves, p, from, side, diagonalRays[:])
		return appendRayMoves(moves, p, from, side, orthogonalRays[:])
	case King:
		return appendStepMoves(moves, p, from, side, kingOffsets[:])
	}
	return moves
}

func pawnStartRow(side Side) int {
	if side == White {
		return 6
	}
	return 1
}

func promotionRow(side Side) int {
	if side == White {
		return 0
	}
	return 7
}

func pawnMove(from, to Square, side Side) Move {
	m := Move{From: from, To: to}
	if to.Row == promotionRow(side) {
		m.Promotion = Queen
	}
	return m
}

func appendPawnMoves(moves []Move, p Position, from Square, side Side) []Move {
	dir := side.Forward()
	one := from.offset(dir, 0)
	if one.Valid() && p.PieceAt(one).IsEmpty() {
		moves = append(moves, pawnMove(from, one, side))
		two := from.offset(2*dir, 0)
		if from.Row == pawnStartRow(side) && p.PieceAt(two).IsEmpty() {
			moves = append(moves, Move{From: from, To: two})
		}
	}
	for _, dc := range pawnCaptureCols {
		to := from.offset(dir, dc)
		if !to.Valid() {
			continue
		}
		target := p.PieceAt(to)
		if !target.IsEmpty() && target.Side() != side {
			moves = append(moves, pawnMove(from, to, side))
		}
	}
	return moves
}

func appendStepMoves(moves []Move, p Position, from Square, side Side, offsets [][2]int) []Move {
	for _, d := range offsets {
		to := from.offset(d[0], d[1])
		if !to.Valid() {
			continue
		}
		target := p.PieceAt(to)
		if target.IsEmpty() || target.Side() != side {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func appendRayMoves(moves []Move, p Position, from Square, side Side, rays [][2]int) []Move {
	for _, d := range rays {
		to := from.offset(d[0], d[1])
		for to.Valid() {
			target := p.PieceAt(to)
			if target.IsEmpty() {
				moves = append(moves, Move{From: from, To: to})
				to = to.offset(d[0], d[1])
				continue
			}
			if target.Side() != side {
				moves = append(moves, Move{From: from, To: to})
			}
			break
		}
	}
	return moves
}

// ApplyMove returns a new position with m played. It does not validate m.
func ApplyMove(p Position, m Move) Position {
	next := p
	piece := next.PieceAt(m.From)
	next.Set(m.From, NoPiece)
	if m.Promotion != NoKind {
		piece = MakePiece(piece.Side(), m.Promotion)
	}
	next.Set(m.To, piece)
	return next
}

// LegalMoves filters PseudoMoves down to the moves that leave side's king safe.
func LegalMoves(p Position, side Side) []Move {
	pseudo := PseudoMoves(p, side)
	legal := pseudo[:0:0]
	for _, m := range pseudo {
		if !IsInCheck(ApplyMove(p, m), side) {
			legal = append(legal, m)
		}
	}
	return legal
}

// LegalMovesFrom returns the legal moves of side that start on sq.
func LegalMovesFrom(p Position, side Side, sq Square) []Move {
	if !sq.Valid() {
		return nil
	}
	piece := p.PieceAt(sq)
	if piece.IsEmpty() || piece.Side() != side {
		return nil
	}
	var out []Move
	for _, m := range LegalMoves(p, side) {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// HasLegalMove reports whether side has at least one legal move.
func HasLegalMove(p Position, side Side) bool {
	for _, m := range PseudoMoves(p, side) {
		if !IsInCheck(ApplyMove(p, m), side) {
			return true
		}
	}
	return false
}
