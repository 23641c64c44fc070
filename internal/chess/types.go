package chess

import "strings"

// Side identifies the owner of a piece or the side to move.
type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// Forward is the row delta a pawn of this side moves by.
func (s Side) Forward() int {
	if s == White {
		return -1
	}
	return 1
}

// sign is +1 for white and -1 for black.
func (s Side) sign() int {
	if s == White {
		return 1
	}
	return -1
}

func (s Side) String() string {
	if s == White {
		return "White"
	}
	return "Black"
}

// ParseSide accepts "white", "w", "black" and "b" in any case.
func ParseSide(v string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return White, false
}

// Kind is the type of a piece without its side.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{NoKind: '?', Pawn: 'P', Knight: 'N', Bishop: 'B', Rook: 'R', Queen: 'Q', King: 'K'}

// Letter returns the upper-case English letter of the kind.
func (k Kind) Letter() byte {
	if int(k) >= len(kindLetters) {
		return '?'
	}
	return kindLetters[k]
}

func kindFromLetter(c byte) Kind {
	switch c {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	}
	return NoKind
}

// Piece packs a kind and a side. The zero value is an empty cell.
type Piece uint8

const (
	NoPiece   Piece = 0
	sideShift       = 3
	kindMask        = 0x7
)

func MakePiece(side Side, kind Kind) Piece {
	if kind == NoKind {
		return NoPiece
	}
	return Piece(kind) | Piece(side)<<sideShift
}

func (p Piece) Kind() Kind { return Kind(p & kindMask) }

func (p Piece) Side() Side { return Side(p >> sideShift) }

func (p Piece) IsEmpty() bool { return p.Kind() == NoKind }

// Letter is the FEN letter: upper case for white, lower case for black.
func (p Piece) Letter() byte {
	if p.IsEmpty() {
		return '.'
	}
	c := p.Kind().Letter()
	if p.Side() == Black {
		c += 'a' - 'A'
	}
	return c
}

// Square addresses a cell by row (0 = black's back rank) and column (0 = a-file).
type Square struct {
	Row int
	Col int
}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// Move is a single ply. Promotion is NoKind unless a pawn reaches the far rank.
type Move struct {
	From      Square
	To        Square
	Promotion Kind
}
