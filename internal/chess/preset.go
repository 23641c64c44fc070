package chess

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinLevel = 1
	MaxLevel = 10

	// maxSearchDepth caps the search for responsiveness regardless of level.
	maxSearchDepth = 4
	// HintDepthFloor is the minimum depth used when searching for a hint.
	HintDepthFloor = 4
	// noiseFreeLevel is the first level at which the engine always plays its best move.
	noiseFreeLevel = 6
)

// DifficultyPreset describes how strongly the engine plays at one level.
type DifficultyPreset struct {
	Name           string
	Level          int
	DepthCap       int
	PrimaryChoices int
	Elo            int
}

// DepthForDifficulty maps a level to the search depth.
func DepthForDifficulty(level int) int {
	switch {
	case level <= 2:
		return 1
	case level <= 4:
		return 2
	case level <= 6:
		return 3
	default:
		return maxSearchDepth
	}
}

// HintDepth is the search depth of a hint at the given level. The floor of
// HintDepthFloor applies to the resulting depth rather than to the level, so
// with the current depth table every level searches hints at depth 4.
func HintDepth(level int) int {
	return max(HintDepthFloor, DepthForDifficulty(level))
}

// noiseWidth is how many of the ordered moves the engine samples from; 1 means no noise.
func noiseWidth(level int) int {
	switch {
	case level >= noiseFreeLevel:
		return 1
	case level <= 2:
		return 4
	default:
		return 2
	}
}

// ClampLevel forces level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	return min(MaxLevel, max(MinLevel, level))
}

var presetElo = [...]int{0, 400, 550, 700, 850, 1000, 1150, 1300, 1450, 1600, 1750}

var DefaultPresets = func() map[string]DifficultyPreset {
	out := make(map[string]DifficultyPreset, MaxLevel)
	for level := MinLevel; level <= MaxLevel; level++ {
		name := "level" + strconv.Itoa(level)
		out[name] = DifficultyPreset{
			Name:           name,
			Level:          level,
			DepthCap:       DepthForDifficulty(level),
			PrimaryChoices: noiseWidth(level),
			Elo:            presetElo[level],
		}
	}
	return out
}()

// GetPreset resolves levelN, a bare number, or one of the named aliases.
func GetPreset(name string) (DifficultyPreset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "beginner":
		key = "level1"
	case "intermediate":
		key = "level5"
	case "advanced":
		key = "level8"
	case "master":
		key = "level10"
	}
	if _, err := strconv.Atoi(key); err == nil {
		key = "level" + key
	}
	if p, ok := DefaultPresets[key]; ok {
		return p, nil
	}
	return DifficultyPreset{}, fmt.Errorf("unknown chess preset: %s", name)
}

// PresetForLevel returns the preset of a level, clamped into range.
func PresetForLevel(level int) DifficultyPreset {
	return DefaultPresets["level"+strconv.Itoa(ClampLevel(level))]
}

func ValidatePreset(p DifficultyPreset) error {
	switch {
	case p.Level < MinLevel || p.Level > MaxLevel:
		return fmt.Errorf("level %d out of range %d-%d", p.Level, MinLevel, MaxLevel)
	case p.DepthCap <= 0 || p.DepthCap > maxSearchDepth:
		return fmt.Errorf("depth cap %d out of range 1-%d", p.DepthCap, maxSearchDepth)
	case p.PrimaryChoices <= 0:
		return fmt.Errorf("primary choices must be > 0: %d", p.PrimaryChoices)
	case p.Elo < 0:
		return fmt.Errorf("elo must be >= 0: %d", p.Elo)
	}
	return nil
}
