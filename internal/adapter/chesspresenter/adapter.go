package chesspresenter

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func sideName(s corechess.Side) string { return strings.ToLower(s.String()) }

func toMove(m corechess.Move) chessdto.Move {
	dto := chessdto.Move{From: m.From.String(), To: m.To.String(), UCI: m.UCI()}
	if m.Promotion != corechess.NoKind {
		dto.Promotion = pieceToken(m.Promotion)
	}
	return dto
}

func toOutcome(o corechess.Outcome) chessdto.Outcome {
	out := chessdto.Outcome{Kind: o.Kind.String()}
	if o.Kind == corechess.OutcomeCheckmate {
		out.Winner = sideName(o.Winner)
	}
	return out
}

// boardRows renders rank 8 first, one FEN letter per cell and '.' for empty.
func boardRows(p corechess.Position) []string {
	rows := make([]string, 0, 8)
	var b strings.Builder
	for r := 0; r < 8; r++ {
		b.Reset()
		for c := 0; c < 8; c++ {
			b.WriteByte(p.PieceAt(corechess.Square{Row: r, Col: c}).Letter())
		}
		rows = append(rows, b.String())
	}
	return rows
}

func material(p corechess.Position) chessdto.MaterialScore {
	var m chessdto.MaterialScore
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pc := p.PieceAt(corechess.Square{Row: r, Col: c})
			if pc.IsEmpty() || pc.Kind() == corechess.King {
				continue
			}
			if pc.Side() == corechess.White {
				m.White += corechess.PieceValue(pc.Kind())
			} else {
				m.Black += corechess.PieceValue(pc.Kind())
			}
		}
	}
	return m
}

// captured groups taken pieces by the side that took them.
func captured(moves []corechess.MoveRecord) chessdto.CapturedPieces {
	out := chessdto.CapturedPieces{White: []string{}, Black: []string{}}
	for _, rec := range moves {
		if rec.Captured.IsEmpty() {
			continue
		}
		token := pieceToken(rec.Captured.Kind())
		if rec.Piece.Side() == corechess.White {
			out.White = append(out.White, token)
		} else {
			out.Black = append(out.Black, token)
		}
	}
	return out
}

func pieceToken(k corechess.Kind) string {
	switch k {
	case corechess.Queen:
		return "queen"
	case corechess.Rook:
		return "rook"
	case corechess.Bishop:
		return "bishop"
	case corechess.Knight:
		return "knight"
	case corechess.Pawn:
		return "pawn"
	case corechess.King:
		return "king"
	default:
		return ""
	}
}

// sanHistory replays moves from startFEN and returns their standard algebraic
// notation. It stops at the first move it cannot replay.
func sanHistory(startFEN string, moves []string) []string {
	out := make([]string, 0, len(moves))
	if len(moves) == 0 {
		return out
	}
	opt, err := nchess.FEN(startFEN)
	if err != nil {
		return out
	}
	game := nchess.NewGame(opt)
	notation := nchess.UCINotation{}
	for _, uci := range moves {
		pos := game.Position()
		mv, err := notation.Decode(pos, uci)
		if err != nil {
			break
		}
		out = append(out, nchess.AlgebraicNotation{}.Encode(pos, mv))
		if err := game.PushNotationMove(uci, notation, nil); err != nil {
			break
		}
	}
	return out
}

// moveSAN returns the SAN of uci played from fen, or "" if it cannot be decoded.
func moveSAN(fen, uci string) string {
	if san := sanHistory(fen, []string{uci}); len(san) == 1 {
		return san[0]
	}
	return ""
}
