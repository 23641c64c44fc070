package chess

// Position is an 8x8 grid of pieces. It is a value type: assigning or passing a
// Position copies every cell, so a published Position is never mutated in place.
type Position struct {
	cells [8][8]Piece
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Initial returns the standard starting arrangement.
func Initial() Position {
	var p Position
	for col, kind := range backRank {
		p.cells[0][col] = MakePiece(Black, kind)
		p.cells[1][col] = MakePiece(Black, Pawn)
		p.cells[6][col] = MakePiece(White, Pawn)
		p.cells[7][col] = MakePiece(White, kind)
	}
	return p
}

// Clone returns an independent copy.
func (p Position) Clone() Position {
	return p
}

// PieceAt returns the piece on sq, or NoPiece for empty or out-of-range squares.
func (p Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.cells[sq.Row][sq.Col]
}

// Set places piece on sq. Out-of-range squares are ignored.
func (p *Position) Set(sq Square, piece Piece) {
	if !sq.Valid() {
		return
	}
	p.cells[sq.Row][sq.Col] = piece
}

// Count returns how many pieces of the given side and kind are on the board.
func (p Position) Count(side Side, kind Kind) int {
	target := MakePiece(side, kind)
	n := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p.cells[r][c] == target {
				n++
			}
		}
	}
	return n
}
