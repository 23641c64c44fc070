package chess

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
)

var (
	ErrSessionNotFound  = errors.New("chess session not found")
	ErrInvalidMove      = errors.New("invalid chess move")
	ErrInvalidSquare    = errors.New("invalid chess square")
	ErrInvalidLevel     = errors.New("invalid chess level")
	ErrInvalidSide      = errors.New("invalid chess side")
	ErrInvalidPosition  = errors.New("invalid chess position")
	ErrUndoNotAvailable = errors.New("no moves available to undo")
	ErrNotYourTurn      = errors.New("not the player's turn")
	ErrGameOver         = errors.New("chess game is over")
	ErrTooManySessions  = errors.New("too many chess sessions")
	ErrHintUnavailable  = errors.New("chess hint unavailable")
	ErrServiceClosed    = errors.New("chess service closed")
)

const (
	defaultLevel          = 4
	defaultEngineDelay    = 60 * time.Millisecond
	defaultSessionTTL     = time.Hour
	defaultMaxSessions    = 200
	subscriberBuffer      = 16
	preferenceLookupLimit = 2 * time.Second
)

// Engine is the move picker the service drives. *corechess.Engine satisfies it.
type Engine interface {
	Choose(ctx context.Context, p corechess.Position, side corechess.Side, level int) (corechess.Choice, error)
	Hint(ctx context.Context, p corechess.Position, side corechess.Side, level int) (corechess.Choice, error)
}

type Config struct {
	DefaultLevel int
	EngineDelay  time.Duration
	SessionTTL   time.Duration
	MaxSessions  int
	HistoryLimit int
}

type StartRequest struct {
	PlayerID  string
	HumanSide string
	Level     int
	FEN       string
}

type HintResult struct {
	Move   corechess.Move
	Score  int
	Depth  int
	Shared bool
	State  *SessionState
}

type session struct {
	mu sync.Mutex

	id        string
	playerID  string
	startFEN  string
	game      *corechess.Game
	startedAt time.Time
	updatedAt time.Time

	timer       *time.Timer
	// idle marks a failed engine turn; it holds until the version moves past idleVersion.
	idle        bool
	idleVersion uint64

	subs    map[int]chan Event
	nextSub int
	closed  bool
}

// Service runs human-versus-engine sessions held in memory.
type Service struct {
	engine Engine
	prefs  PreferenceStore
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool

	hints singleflight.Group
}

func NewService(engine Engine, prefs PreferenceStore, cfg Config, logger *zap.Logger) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("chess engine is required")
	}
	if prefs == nil {
		prefs = NewMemoryRepository()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLevel == 0 {
		cfg.DefaultLevel = defaultLevel
	}
	if cfg.DefaultLevel < corechess.MinLevel || cfg.DefaultLevel > corechess.MaxLevel {
		return nil, fmt.Errorf("%w: default level %d", ErrInvalidLevel, cfg.DefaultLevel)
	}
	if cfg.EngineDelay < 0 {
		cfg.EngineDelay = defaultEngineDelay
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = corechess.DefaultHistoryLimit
	}
	return &Service{
		engine:   engine,
		prefs:    prefs,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}, nil
}

func (s *Service) Config() Config { return s.cfg }

func (s *Service) StartSession(ctx context.Context, req StartRequest) (*SessionState, error) {
	level := req.Level
	if level != 0 && (level < corechess.MinLevel || level > corechess.MaxLevel) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	var (
		side    corechess.Side
		sideSet bool
	)
	if raw := strings.TrimSpace(req.HumanSide); raw != "" {
		parsed, ok := corechess.ParseSide(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSide, raw)
		}
		side, sideSet = parsed, true
	}

	start, toMove := corechess.Initial(), corechess.White
	startFEN := start.FEN(toMove)
	if fen := strings.TrimSpace(req.FEN); fen != "" {
		p, stm, err := corechess.ParseFEN(fen)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPosition, err)
		}
		if err := validateStart(p, stm); err != nil {
			return nil, err
		}
		start, toMove, startFEN = p, stm, p.FEN(stm)
	}

	playerID := strings.TrimSpace(req.PlayerID)
	pref := s.loadPreference(ctx, playerID)
	if level == 0 {
		level = s.cfg.DefaultLevel
		if pref != nil && pref.Level >= corechess.MinLevel && pref.Level <= corechess.MaxLevel {
			level = pref.Level
		}
	}
	if !sideSet {
		side = corechess.White
		if pref != nil {
			if parsed, ok := corechess.ParseSide(pref.HumanSide); ok {
				side = parsed
			}
		}
	}

	game := corechess.NewGameFrom(start, toMove, side, level)
	game.SetHistoryLimit(s.cfg.HistoryLimit)
	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		playerID:  playerID,
		startFEN:  startFEN,
		game:      game,
		startedAt: now,
		updatedAt: now,
		subs:      make(map[int]chan Event),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.savePreference(ctx, playerID, pref, level, side, true)

	sess.mu.Lock()
	s.scheduleEngineLocked(sess)
	state := s.snapshotLocked(sess)
	sess.mu.Unlock()

	s.logger.Info("chess session started",
		zap.String("session_id", sess.id),
		zap.String("player_id", playerID),
		zap.String("human_side", side.String()),
		zap.Int("level", level),
	)
	return state, nil
}

// validateStart requires exactly one king per side and the side not to move
// out of check, so no king can be captured.
func validateStart(p corechess.Position, toMove corechess.Side) error {
	for _, side := range []corechess.Side{corechess.White, corechess.Black} {
		if n := p.Count(side, corechess.King); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidPosition, strings.ToLower(side.String()), n)
		}
	}
	if corechess.IsInCheck(p, toMove.Opponent()) {
		return fmt.Errorf("%w: %s is in check but not to move", ErrInvalidPosition, strings.ToLower(toMove.Opponent().String()))
	}
	return nil
}

func (s *Service) Status(ctx context.Context, id string) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess), nil
}

// LegalMoves lists the legal moves from square for the side to move.
func (s *Service) LegalMoves(ctx context.Context, id, square string) ([]corechess.Move, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sq, err := corechess.ParseSquare(square)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSquare, err)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.game.LegalMovesForSquare(sq), nil
}

// Play applies the human's move given in coordinate notation. A rejected move
// leaves the session unchanged.
func (s *Service) Play(ctx context.Context, id, moveText string) (*SessionState, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	m, err := corechess.ParseMove(moveText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	switch sess.game.State() {
	case corechess.StateGameOver:
		return nil, ErrGameOver
	case corechess.StateEngineThinking:
		return nil, ErrNotYourTurn
	}
	if !sess.game.PlayHuman(m) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMove, m.UCI())
	}
	sess.updatedAt = s.now()
	s.logger.Debug("chess human move",
		zap.String("session_id", sess.id),
		zap.String("move", m.UCI()),
		zap.Int("ply", sess.game.Ply()),
	)
	s.publishLocked(sess, EventHumanMove)
	s.scheduleEngineLocked(sess)
	return s.snapshotLocked(sess), nil
}

// Hint searches for the human's best move without playing it. Concurrent
// requests for the same position share one search.
func (s *Service) Hint(ctx context.Context, id string) (*HintResult, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	switch sess.game.State() {
	case corechess.StateGameOver:
		sess.mu.Unlock()
		return nil, ErrGameOver
	case corechess.StateEngineThinking:
		sess.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	pos, side, level, version := sess.game.Position(), sess.game.SideToMove(), sess.game.Level(), sess.game.Version()
	sess.mu.Unlock()

	key := sess.id + ":" + strconv.FormatUint(version, 10)
	v, err, shared := s.hints.Do(key, func() (any, error) {
		return s.engine.Hint(ctx, pos, side, level)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHintUnavailable, err)
	}
	choice := v.(corechess.Choice)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.game.RecordHint(choice.Move, version) {
		s.publishLocked(sess, EventHint)
	}
	s.logger.Debug("chess hint",
		zap.String("session_id", sess.id),
		zap.String("move", choice.Move.UCI()),
		zap.Int("depth", choice.Depth),
		zap.Bool("shared", shared),
	)
	return &HintResult{
		Move:   choice.Move,
		Score:  choice.Score,
		Depth:  choice.Depth,
		Shared: shared,
		State:  s.snapshotLocked(sess),
	}, nil
}

// Undo takes back plies moves; zero means a full turn of two plies. If the
// engine is left to move it is scheduled again.
func (s *Service) Undo(ctx context.Context, id string, plies int) (*SessionState, error) {
	if plies <= 0 {
		plies = 2
	}
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.stopTimerLocked(sess)
	undone := sess.game.Undo(plies)
	if undone == 0 {
		s.scheduleEngineLocked(sess)
		return nil, ErrUndoNotAvailable
	}
	sess.updatedAt = s.now()
	s.logger.Debug("chess undo",
		zap.String("session_id", sess.id),
		zap.Int("plies", undone),
	)
	s.publishLocked(sess, EventUndo)
	s.scheduleEngineLocked(sess)
	return s.snapshotLocked(sess), nil
}

// SetLevel changes the difficulty and remembers it for the player.
func (s *Service) SetLevel(ctx context.Context, id string, level int) (*SessionState, error) {
	if level < corechess.MinLevel || level > corechess.MaxLevel {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	s.stopTimerLocked(sess)
	sess.game.SetLevel(level)
	sess.updatedAt = s.now()
	s.publishLocked(sess, EventLevel)
	s.scheduleEngineLocked(sess)
	state := s.snapshotLocked(sess)
	playerID, side := sess.playerID, sess.game.HumanSide()
	sess.mu.Unlock()

	s.savePreference(ctx, playerID, s.loadPreference(ctx, playerID), level, side, false)
	return state, nil
}

// Close ends a session and disconnects its subscribers.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.closeSession(sess, EventClosed)
	s.logger.Info("chess session closed", zap.String("session_id", id))
	return nil
}

// Subscribe streams session events. The first event is a snapshot of the
// current state. The channel is closed when the session ends or cancel runs.
func (s *Service) Subscribe(id string) (<-chan Event, func(), error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, nil, ErrSessionNotFound
	}
	ch := make(chan Event, subscriberBuffer)
	subID := sess.nextSub
	sess.nextSub++
	sess.subs[subID] = ch
	ch <- Event{Type: EventSnapshot, State: s.snapshotLocked(sess)}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sess.mu.Lock()
			defer sess.mu.Unlock()
			if c, ok := sess.subs[subID]; ok {
				delete(sess.subs, subID)
				close(c)
			}
		})
	}
	return ch, cancel, nil
}

// Preference returns what the player last chose, or nil if nothing is stored.
func (s *Service) Preference(ctx context.Context, playerID string) (*domain.PlayerPreference, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, nil
	}
	return s.prefs.GetPreference(ctx, playerID)
}

// SessionCount reports how many sessions are live.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle closes sessions untouched for longer than SessionTTL and returns how many.
func (s *Service) EvictIdle(now time.Time) int {
	var stale []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.updatedAt) > s.cfg.SessionTTL && !sess.game.Thinking()
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			stale = append(stale, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.closeSession(sess, EventExpired)
		s.logger.Info("chess session expired", zap.String("session_id", sess.id))
	}
	return len(stale)
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.EvictIdle(s.now()); n > 0 {
				s.logger.Debug("chess janitor evicted sessions", zap.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session and refuses new ones.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.closed = true
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, sess := range all {
		s.closeSession(sess, EventClosed)
	}
}

func (s *Service) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) closeSession(sess *session, eventType EventType) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	s.stopTimerLocked(sess)
	s.publishLocked(sess, eventType)
	sess.closed = true
	for id, ch := range sess.subs {
		close(ch)
		delete(sess.subs, id)
	}
}

// scheduleEngineLocked starts the engine's turn if it is due and no search is
// outstanding. The search runs after EngineDelay on a copy of the position.
func (s *Service) scheduleEngineLocked(sess *session) {
	if sess.closed {
		return
	}
	version, ok := sess.game.BeginThinking()
	if !ok {
		return
	}
	pos, side, level := sess.game.Position(), sess.game.SideToMove(), sess.game.Level()
	s.publishLocked(sess, EventThinking)
	sess.timer = time.AfterFunc(s.cfg.EngineDelay, func() {
		s.runEngine(sess, pos, side, level, version)
	})
}

func (s *Service) runEngine(sess *session, pos corechess.Position, side corechess.Side, level int, version uint64) {
	choice, err := s.engine.Choose(context.Background(), pos, side, level)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	if err != nil {
		s.logger.Error("chess engine failed",
			zap.String("session_id", sess.id),
			zap.Int("level", level),
			zap.Error(err),
		)
		if sess.game.Version() == version {
			sess.game.CancelThinking()
			sess.idle, sess.idleVersion = true, sess.game.Version()
			s.logger.Warn("chess engine idle until undo or level change",
				zap.String("session_id", sess.id),
				zap.Uint64("version", sess.game.Version()),
			)
			s.publishLocked(sess, EventEngineIdle)
		}
		return
	}
	if !sess.game.CompleteEngineMove(choice.Move, version) {
		s.logger.Debug("chess engine result discarded",
			zap.String("session_id", sess.id),
			zap.String("move", choice.Move.UCI()),
			zap.Uint64("version", version),
			zap.Uint64("current_version", sess.game.Version()),
		)
		return
	}
	sess.timer = nil
	sess.updatedAt = s.now()
	s.logger.Debug("chess engine move",
		zap.String("session_id", sess.id),
		zap.String("move", choice.Move.UCI()),
		zap.Int("depth", choice.Depth),
		zap.Int("nodes", choice.Nodes),
		zap.Duration("duration", choice.Duration),
	)
	s.publishLocked(sess, EventEngineMove)
}

func (s *Service) stopTimerLocked(sess *session) {
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	if sess.game.Thinking() {
		sess.game.CancelThinking()
	}
}

func (s *Service) publishLocked(sess *session, eventType EventType) {
	if len(sess.subs) == 0 {
		return
	}
	ev := Event{Type: eventType, State: s.snapshotLocked(sess)}
	for id, ch := range sess.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("chess subscriber lagging, event dropped",
				zap.String("session_id", sess.id),
				zap.Int("subscriber", id),
				zap.String("event", string(eventType)),
			)
		}
	}
}

func (s *Service) loadPreference(ctx context.Context, playerID string) *domain.PlayerPreference {
	if playerID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, preferenceLookupLimit)
	defer cancel()
	pref, err := s.prefs.GetPreference(ctx, playerID)
	if err != nil {
		s.logger.Warn("failed to load chess preference", zap.String("player_id", playerID), zap.Error(err))
		return nil
	}
	return pref
}

func (s *Service) savePreference(ctx context.Context, playerID string, prev *domain.PlayerPreference, level int, side corechess.Side, started bool) {
	if playerID == "" {
		return
	}
	pref := domain.PlayerPreference{PlayerID: playerID}
	if prev != nil {
		pref = *prev
	}
	pref.Level = level
	pref.HumanSide = strings.ToLower(side.String())
	if started {
		pref.GamesStarted++
	}
	ctx, cancel := context.WithTimeout(ctx, preferenceLookupLimit)
	defer cancel()
	if err := s.prefs.UpsertPreference(ctx, &pref); err != nil {
		s.logger.Warn("failed to persist chess preference", zap.String("player_id", playerID), zap.Error(err))
	}
}
