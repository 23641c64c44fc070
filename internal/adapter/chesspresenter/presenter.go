package chesspresenter

import (
	"errors"
	"strings"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/msgcat"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Presenter turns service snapshots into transport DTOs with display text.
type Presenter struct {
	catalog *msgcat.Catalog
}

// NewPresenter uses catalog for display text; a nil catalog falls back to the
// game's own status strings.
func NewPresenter(catalog *msgcat.Catalog) *Presenter {
	return &Presenter{catalog: catalog}
}

func (p *Presenter) State(s *svc.SessionState) *chessdto.SessionState {
	if s == nil {
		return nil
	}
	moves := s.MovesUCI()
	preset := corechess.PresetForLevel(s.Level)
	out := &chessdto.SessionState{
		ID:         s.ID,
		PlayerID:   s.PlayerID,
		HumanSide:  sideName(s.HumanSide),
		EngineSide: sideName(s.HumanSide.Opponent()),
		Level:      s.Level,
		Preset:     preset.Name,
		Elo:        preset.Elo,
		StartFEN:   s.StartFEN,
		FEN:        s.FEN,
		Board:      boardRows(s.Position),
		SideToMove: sideName(s.SideToMove),
		State:      s.State.String(),
		Status:     s.Status,
		StatusText: p.statusText(s),
		Outcome:    toOutcome(s.Outcome),
		Thinking:   s.Thinking,
		EngineIdle: s.EngineIdle,
		History:    append([]string{}, s.History...),
		MovesUCI:   moves,
		MovesSAN:   sanHistory(s.StartFEN, moves),
		Material:   material(s.Position),
		Captured:   captured(s.Moves),
		Version:    s.Version,
		Ply:        len(s.Moves),
		StartedAt:  s.StartedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Highlights.HasLastMove {
		last := toMove(s.Highlights.LastMove)
		if n := len(out.MovesSAN); n == len(moves) && n > 0 {
			last.SAN = out.MovesSAN[n-1]
		}
		out.LastMove = &last
	}
	if s.Highlights.InCheck {
		out.CheckSquare = s.Highlights.CheckSquare.String()
	}
	if s.Hint != nil {
		hint := toMove(*s.Hint)
		hint.SAN = moveSAN(s.FEN, hint.UCI)
		out.Hint = &hint
	}
	return out
}

func (p *Presenter) Event(ev svc.Event) chessdto.Event {
	return chessdto.Event{Type: string(ev.Type), State: p.State(ev.State)}
}

func (p *Presenter) Hint(h *svc.HintResult) *chessdto.Hint {
	if h == nil {
		return nil
	}
	state := p.State(h.State)
	mv := toMove(h.Move)
	if state != nil {
		mv.SAN = moveSAN(state.FEN, mv.UCI)
	}
	san := mv.SAN
	if san == "" {
		san = mv.UCI
	}
	return &chessdto.Hint{
		Move:   mv,
		Score:  h.Score,
		Depth:  h.Depth,
		Shared: h.Shared,
		Text:   p.catalog.Text("hint.move", map[string]any{"SAN": san, "UCI": mv.UCI}, mv.UCI),
		State:  state,
	}
}

// LegalMoves lists moves from square; SAN is resolved against fen.
func (p *Presenter) LegalMoves(square, fen string, moves []corechess.Move) *chessdto.LegalMoves {
	out := &chessdto.LegalMoves{Square: strings.ToLower(strings.TrimSpace(square)), Moves: make([]chessdto.Move, 0, len(moves))}
	for _, m := range moves {
		dto := toMove(m)
		dto.SAN = moveSAN(fen, dto.UCI)
		out.Moves = append(out.Moves, dto)
	}
	return out
}

func (p *Presenter) Preference(pref *domain.PlayerPreference) *chessdto.Preference {
	if pref == nil {
		return nil
	}
	return &chessdto.Preference{
		PlayerID:     pref.PlayerID,
		Level:        pref.Level,
		HumanSide:    pref.HumanSide,
		GamesStarted: pref.GamesStarted,
		UpdatedAt:    pref.UpdatedAt,
	}
}

var errorCodes = []struct {
	err       error
	code      string
	retryable bool
}{
	{svc.ErrSessionNotFound, chessdto.CodeSessionNotFound, false},
	{svc.ErrInvalidMove, chessdto.CodeInvalidMove, false},
	{svc.ErrInvalidSquare, chessdto.CodeInvalidSquare, false},
	{svc.ErrInvalidLevel, chessdto.CodeInvalidLevel, false},
	{svc.ErrInvalidSide, chessdto.CodeInvalidSide, false},
	{svc.ErrInvalidPosition, chessdto.CodeInvalidPosition, false},
	{svc.ErrUndoNotAvailable, chessdto.CodeUndoUnavailable, false},
	{svc.ErrNotYourTurn, chessdto.CodeNotYourTurn, true},
	{svc.ErrGameOver, chessdto.CodeGameOver, false},
	{svc.ErrTooManySessions, chessdto.CodeTooManySessions, true},
	{svc.ErrHintUnavailable, chessdto.CodeHintUnavailable, true},
	{svc.ErrServiceClosed, chessdto.CodeUnavailable, true},
}

// Error maps a service error to a DomainError. Unknown errors become CodeInternal.
func (p *Presenter) Error(err error) chessdto.DomainError {
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return de
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return p.domainError(e.code, e.retryable, err.Error())
		}
	}
	return p.domainError(chessdto.CodeInternal, false, "internal error")
}

func (p *Presenter) InvalidRequest(detail string) chessdto.DomainError {
	return p.domainError(chessdto.CodeInvalidRequest, false, detail)
}

func (p *Presenter) domainError(code string, retryable bool, fallback string) chessdto.DomainError {
	return chessdto.DomainError{
		Code:      code,
		Message:   p.catalog.Text("error."+code, nil, fallback),
		Retryable: retryable,
	}
}
