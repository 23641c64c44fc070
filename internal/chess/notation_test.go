package chess

import (
	"errors"
	"testing"
)

func TestSquareNotation(t *testing.T) {
	tests := []struct {
		name string
		sq   Square
	}{
		{"a8", Square{Row: 0, Col: 0}},
		{"h1", Square{Row: 7, Col: 7}},
		{"e4", Square{Row: 4, Col: 4}},
		{"c6", Square{Row: 2, Col: 2}},
	}
	for _, tt := range tests {
		if got := tt.sq.String(); got != tt.name {
			t.Fatalf("%+v.String() = %q, want %q", tt.sq, got, tt.name)
		}
		got, err := ParseSquare(tt.name)
		if err != nil || got != tt.sq {
			t.Fatalf("ParseSquare(%q) = %+v, %v", tt.name, got, err)
		}
	}
	for _, bad := range []string{"", "e", "i4", "e9", "e0", "e44"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Fatalf("ParseSquare(%q) err = %v, want ErrInvalidSquare", bad, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e2e4", "e2e4"},
		{"e2-e4", "e2e4"},
		{" G1F3 ", "g1f3"},
		{"e7e8q", "e7e8q"},
		{"e7-e8=Q", "e7e8q"},
		{"a2a1n", "a2a1n"},
	}
	for _, tt := range tests {
		m, err := ParseMove(tt.in)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", tt.in, err)
		}
		if got := m.UCI(); got != tt.want {
			t.Fatalf("ParseMove(%q).UCI() = %q, want %q", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "e2", "e2e9", "z2e4", "e7e8k", "e7e8p", "e2e4e5"} {
		if _, err := ParseMove(bad); !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("ParseMove(%q) err = %v, want ErrInvalidMove", bad, err)
		}
	}
}

func TestFormatMove(t *testing.T) {
	knight := Move{From: Square{Row: 7, Col: 6}, To: Square{Row: 5, Col: 5}}
	if got := FormatMove(knight, MakePiece(White, Knight)); got != "Ng1-f3" {
		t.Fatalf("knight = %q", got)
	}
	pawn := Move{From: Square{Row: 6, Col: 4}, To: Square{Row: 4, Col: 4}}
	if got := FormatMove(pawn, MakePiece(White, Pawn)); got != "e2-e4" {
		t.Fatalf("pawn = %q", got)
	}
	promo := Move{From: Square{Row: 1, Col: 4}, To: Square{Row: 0, Col: 4}, Promotion: Queen}
	if got := FormatMove(promo, MakePiece(White, Pawn)); got != "e7-e8=Q" {
		t.Fatalf("promotion = %q", got)
	}
	queen := Move{From: Square{Row: 0, Col: 3}, To: Square{Row: 4, Col: 7}}
	if got := FormatMove(queen, MakePiece(Black, Queen)); got != "Qd8-h4" {
		t.Fatalf("black queen = %q", got)
	}
}
