package chess

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidMove   = errors.New("invalid move")
)

const files = "abcdefgh"

// String renders the square in algebraic form, e.g. "e4".
func (s Square) String() string {
	if !s.Valid() {
		return "??"
	}
	return string([]byte{files[s.Col], byte('8' - s.Row)})
}

// ParseSquare reads an algebraic square such as "e4".
func ParseSquare(v string) (Square, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if len(v) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, v)
	}
	col := strings.IndexByte(files, v[0])
	rank := int(v[1] - '0')
	if col < 0 || rank < 1 || rank > 8 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, v)
	}
	return Square{Row: 8 - rank, Col: col}, nil
}

// UCI renders the move in long algebraic form: "e2e4", "e7e8q".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}

func (m Move) String() string { return m.UCI() }

// ParseMove accepts "e2e4", "e2-e4" and "e7e8q" (also "e7e8=Q").
func ParseMove(v string) (Move, error) {
	raw := strings.TrimSpace(v)
	text := strings.NewReplacer("-", "", "=", "", " ", "").Replace(strings.ToLower(raw))
	if len(text) != 4 && len(text) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
	}
	from, err := ParseSquare(text[:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q: %w", ErrInvalidMove, raw, err)
	}
	to, err := ParseSquare(text[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q: %w", ErrInvalidMove, raw, err)
	}
	m := Move{From: from, To: to}
	if len(text) == 5 {
		kind := kindFromLetter(text[4])
		if kind == NoKind || kind == Pawn || kind == King {
			return Move{}, fmt.Errorf("%w: %q: bad promotion", ErrInvalidMove, raw)
		}
		m.Promotion = kind
	}
	return m, nil
}

// FormatMove renders a history entry for m played by piece, e.g. "Ng1-f3" or
// "e7-e8=Q". Pawn moves carry no piece letter.
func FormatMove(m Move, piece Piece) string {
	var b strings.Builder
	if k := piece.Kind(); k != NoKind && k != Pawn {
		b.WriteByte(k.Letter())
	}
	b.WriteString(m.From.String())
	b.WriteByte('-')
	b.WriteString(m.To.String())
	if m.Promotion != NoKind {
		b.WriteByte('=')
		b.WriteByte(m.Promotion.Letter())
	}
	return b.String()
}
