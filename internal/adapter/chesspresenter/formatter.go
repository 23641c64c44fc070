package chesspresenter

import (
	"strings"

	corechess "github.com/park285/cheese-chess/internal/chess"
	svc "github.com/park285/cheese-chess/internal/service/chess"
)

func (p *Presenter) statusText(s *svc.SessionState) string {
	switch s.Outcome.Kind {
	case corechess.OutcomeCheckmate:
		return p.catalog.Text("status.checkmate", map[string]any{"Winner": s.Outcome.Winner.String()}, s.Status)
	case corechess.OutcomeStalemate:
		return p.catalog.Text("status.stalemate", nil, s.Status)
	}
	if s.State == corechess.StateEngineThinking && s.EngineIdle {
		return p.catalog.Text("status.engine_idle", nil, s.Status)
	}
	if s.State == corechess.StateEngineThinking {
		preset := corechess.PresetForLevel(s.Level)
		return p.catalog.Text("status.thinking", map[string]any{"Preset": preset.Name, "Level": s.Level}, s.Status)
	}
	data := map[string]any{"Side": s.SideToMove.String()}
	if s.Highlights.InCheck {
		return p.catalog.Text("status.check", data, s.Status)
	}
	return p.catalog.Text("status.to_move", data, s.Status)
}

// HistoryText joins the newest-first history for display, or the empty
// history message when nothing has been played.
func (p *Presenter) HistoryText(s *svc.SessionState) string {
	if s == nil || len(s.History) == 0 {
		return p.catalog.Text("history.empty", nil, "")
	}
	return strings.Join(s.History, "\n")
}
