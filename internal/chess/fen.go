package chess

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN reads the placement and side-to-move fields of a FEN record. Castling,
// en-passant and clock fields are accepted but ignored since neither castling nor
// en passant exist in this rule set.
func ParseFEN(fen string) (Position, Side, error) {
	var p Position
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return p, White, fmt.Errorf("%w: empty record", ErrInvalidFEN)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return p, White, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			kind := kindFromLetter(c)
			if kind == NoKind {
				return p, White, fmt.Errorf("%w: unexpected %q in rank %d", ErrInvalidFEN, c, 8-row)
			}
			if col > 7 {
				return p, White, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-row)
			}
			side := White
			if c >= 'a' && c <= 'z' {
				side = Black
			}
			p.cells[row][col] = MakePiece(side, kind)
			col++
		}
		if col != 8 {
			return p, White, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-row, col)
		}
	}

	toMove := White
	if len(fields) > 1 {
		switch fields[1] {
		case "w":
		case "b":
			toMove = Black
		default:
			return p, White, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
		}
	}
	return p, toMove, nil
}

// MustParseFEN is ParseFEN for fixtures known to be valid.
func MustParseFEN(fen string) (Position, Side) {
	p, side, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p, side
}

// Placement returns the piece-placement field of the FEN record.
func (p Position) Placement() string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			piece := p.cells[row][col]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(piece.Letter())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

// FEN renders a full record with no castling rights and no en-passant square.
func (p Position) FEN(toMove Side) string {
	side := "w"
	if toMove == Black {
		side = "b"
	}
	return p.Placement() + " " + side + " - - 0 1"
}
