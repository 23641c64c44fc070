package chess

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-chess/internal/domain"
)

// memrepo keeps preferences in process; used when neither Postgres nor Redis is configured.
type memrepo struct {
	mu    sync.RWMutex
	prefs map[string]*domain.PlayerPreference
	now   func() time.Time
}

func NewMemoryRepository() PreferenceStore {
	return &memrepo{
		prefs: make(map[string]*domain.PlayerPreference),
		now:   time.Now,
	}
}

func (m *memrepo) GetPreference(ctx context.Context, playerID string) (*domain.PlayerPreference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prefs[m.key(playerID)]; ok && p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertPreference(ctx context.Context, pref *domain.PlayerPreference) error {
	if pref == nil {
		return nil
	}
	key := m.key(pref.PlayerID)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pref
	if prev, ok := m.prefs[key]; ok && prev != nil {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	m.prefs[key] = &cp
	return nil
}

func (m *memrepo) key(playerID string) string {
	return strings.TrimSpace(playerID)
}
