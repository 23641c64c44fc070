package chess

import (
	"math/rand"
	"testing"
)

func TestDepthForDifficulty(t *testing.T) {
	want := map[int]int{0: 1, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 7: 4, 8: 4, 9: 4, 10: 4, 11: 4}
	for level, depth := range want {
		if got := DepthForDifficulty(level); got != depth {
			t.Fatalf("DepthForDifficulty(%d) = %d, want %d", level, got, depth)
		}
	}
	for level := MinLevel; level <= MaxLevel; level++ {
		if got := HintDepth(level); got != 4 {
			t.Fatalf("HintDepth(%d) = %d, want 4", level, got)
		}
	}
}

func TestGetPreset(t *testing.T) {
	tests := []struct {
		name  string
		level int
	}{
		{"level1", 1},
		{"level10", 10},
		{"7", 7},
		{" Level3 ", 3},
		{"beginner", 1},
		{"intermediate", 5},
		{"advanced", 8},
		{"master", 10},
	}
	for _, tt := range tests {
		p, err := GetPreset(tt.name)
		if err != nil {
			t.Fatalf("GetPreset(%q): %v", tt.name, err)
		}
		if p.Level != tt.level {
			t.Fatalf("GetPreset(%q).Level = %d, want %d", tt.name, p.Level, tt.level)
		}
		if err := ValidatePreset(p); err != nil {
			t.Fatalf("preset %s invalid: %v", p.Name, err)
		}
	}
	for _, bad := range []string{"", "level0", "level11", "grandmaster"} {
		if _, err := GetPreset(bad); err == nil {
			t.Fatalf("GetPreset(%q) should fail", bad)
		}
	}
}

func TestPresetForLevelClamps(t *testing.T) {
	if got := PresetForLevel(-3).Level; got != MinLevel {
		t.Fatalf("PresetForLevel(-3) = %d, want %d", got, MinLevel)
	}
	if got := PresetForLevel(42).Level; got != MaxLevel {
		t.Fatalf("PresetForLevel(42) = %d, want %d", got, MaxLevel)
	}
	if p := PresetForLevel(2); p.PrimaryChoices != 4 || p.DepthCap != 1 {
		t.Fatalf("level2 preset = %+v", p)
	}
	if p := PresetForLevel(6); p.PrimaryChoices != 1 || p.DepthCap != 3 {
		t.Fatalf("level6 preset = %+v", p)
	}
}

func TestValidatePresetRejects(t *testing.T) {
	base := PresetForLevel(5)
	bad := []DifficultyPreset{
		func() DifficultyPreset { p := base; p.Level = 0; return p }(),
		func() DifficultyPreset { p := base; p.DepthCap = 9; return p }(),
		func() DifficultyPreset { p := base; p.PrimaryChoices = 0; return p }(),
		func() DifficultyPreset { p := base; p.Elo = -1; return p }(),
	}
	for i, p := range bad {
		if err := ValidatePreset(p); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, p)
		}
	}
}

func movesFrom(t *testing.T, names ...string) []Move {
	t.Helper()
	out := make([]Move, 0, len(names))
	for _, n := range names {
		m, err := ParseMove(n)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", n, err)
		}
		out = append(out, m)
	}
	return out
}

func TestPickWithNoise(t *testing.T) {
	ordered := movesFrom(t, "a2a3", "b2b3", "c2c3", "d2d3", "e2e3", "f2f3")
	best := ordered[5]

	for level := noiseFreeLevel; level <= MaxLevel; level++ {
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 50; i++ {
			if got := PickWithNoise(best, ordered, level, r); got != best {
				t.Fatalf("level %d picked %s, want best %s", level, got.UCI(), best.UCI())
			}
		}
	}

	tests := []struct {
		level int
		width int
	}{{1, 4}, {2, 4}, {3, 2}, {5, 2}}
	for _, tt := range tests {
		r := rand.New(rand.NewSource(99))
		seen := map[Move]bool{}
		for i := 0; i < 400; i++ {
			got := PickWithNoise(best, ordered, tt.level, r)
			idx := -1
			for j, m := range ordered {
				if m == got {
					idx = j
				}
			}
			if idx < 0 || idx >= tt.width {
				t.Fatalf("level %d picked %s outside the first %d", tt.level, got.UCI(), tt.width)
			}
			seen[got] = true
		}
		if len(seen) != tt.width {
			t.Fatalf("level %d sampled %d distinct moves, want %d", tt.level, len(seen), tt.width)
		}
	}
}

func TestPickWithNoiseIsReproducible(t *testing.T) {
	ordered := movesFrom(t, "a2a3", "b2b3", "c2c3", "d2d3")
	a := rand.New(rand.NewSource(5))
	b := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		if PickWithNoise(ordered[0], ordered, 1, a) != PickWithNoise(ordered[0], ordered, 1, b) {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
}

func TestPickWithNoiseEdgeCases(t *testing.T) {
	best := movesFrom(t, "e2e4")[0]
	if got := PickWithNoise(best, nil, 1, rand.New(rand.NewSource(1))); got != best {
		t.Fatalf("empty ordered list should return best")
	}
	if got := PickWithNoise(best, movesFrom(t, "d2d4", "c2c4"), 1, nil); got != best {
		t.Fatalf("nil random source should return best")
	}
	short := movesFrom(t, "d2d4")
	if got := PickWithNoise(best, short, 1, rand.New(rand.NewSource(1))); got != short[0] {
		t.Fatalf("single candidate should be picked, got %s", got.UCI())
	}
}
