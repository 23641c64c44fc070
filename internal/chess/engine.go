package chess

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNoLegalMoves = errors.New("no legal moves")

// Engine picks moves for a side at a difficulty level. It is safe for concurrent use.
type Engine struct {
	randMu sync.Mutex
	rand   *rand.Rand
	logger *zap.Logger
}

// NewEngine builds an engine. A zero seed selects a time-based one.
func NewEngine(seed int64, logger *zap.Logger) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rand:   rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Choice is a move selected by the engine together with how it was found.
type Choice struct {
	Move     Move
	Best     Move
	Score    int
	Depth    int
	Nodes    int
	Noisy    bool
	Preset   DifficultyPreset
	Duration time.Duration
}

// Choose searches p for side at the depth of level and applies the level's noise.
func (e *Engine) Choose(ctx context.Context, p Position, side Side, level int) (Choice, error) {
	preset := PresetForLevel(level)
	choice, ordered, err := e.search(ctx, p, side, preset.DepthCap)
	if err != nil {
		return Choice{}, err
	}
	choice.Preset = preset
	choice.Move = PickWithNoise(choice.Best, ordered, preset.Level, e.random())
	choice.Noisy = choice.Move != choice.Best

	e.logger.Debug("engine move",
		zap.String("side", side.String()),
		zap.Int("level", preset.Level),
		zap.Int("depth", choice.Depth),
		zap.Int("nodes", choice.Nodes),
		zap.Int("score", choice.Score),
		zap.String("move", choice.Move.UCI()),
		zap.Bool("noisy", choice.Noisy),
		zap.Duration("duration", choice.Duration),
	)
	return choice, nil
}

// Hint searches p for side at HintDepth without noise.
func (e *Engine) Hint(ctx context.Context, p Position, side Side, level int) (Choice, error) {
	preset := PresetForLevel(level)
	choice, _, err := e.search(ctx, p, side, HintDepth(preset.Level))
	if err != nil {
		return Choice{}, err
	}
	choice.Preset = preset
	choice.Move = choice.Best

	e.logger.Debug("engine hint",
		zap.String("side", side.String()),
		zap.Int("depth", choice.Depth),
		zap.Int("nodes", choice.Nodes),
		zap.String("move", choice.Move.UCI()),
		zap.Duration("duration", choice.Duration),
	)
	return choice, nil
}

// search runs to completion once started; ctx is only consulted beforehand.
func (e *Engine) search(ctx context.Context, p Position, side Side, depth int) (Choice, []Move, error) {
	if err := ctx.Err(); err != nil {
		return Choice{}, nil, err
	}
	legal := LegalMoves(p, side)
	if len(legal) == 0 {
		return Choice{}, nil, ErrNoLegalMoves
	}
	ordered := OrderMoves(p, legal)

	start := time.Now()
	res := Search(p, side, depth)
	best := ordered[0]
	if res.Found {
		best = res.Move
	}
	return Choice{
		Best:     best,
		Score:    res.Score,
		Depth:    depth,
		Nodes:    res.Nodes,
		Duration: time.Since(start),
	}, ordered, nil
}

func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}
