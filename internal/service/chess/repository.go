package chess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/park285/cheese-chess/internal/domain"
)

// PreferenceStore keeps what each player last chose. A missing player yields (nil, nil).
type PreferenceStore interface {
	GetPreference(ctx context.Context, playerID string) (*domain.PlayerPreference, error)
	UpsertPreference(ctx context.Context, pref *domain.PlayerPreference) error
}

type repository struct {
	db *sql.DB
}

// NewRepository stores preferences in the chess_preferences table.
func NewRepository(db *sql.DB) PreferenceStore {
	return &repository{db: db}
}

func (r *repository) GetPreference(ctx context.Context, playerID string) (*domain.PlayerPreference, error) {
	const query = `
		SELECT
			player_id,
			level,
			human_side,
			games_started,
			created_at,
			updated_at
		FROM chess_preferences
		WHERE player_id = $1
		LIMIT 1`

	var pref domain.PlayerPreference
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&pref.PlayerID,
		&pref.Level,
		&pref.HumanSide,
		&pref.GamesStarted,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chess preference: %w", err)
	}
	return &pref, nil
}

func (r *repository) UpsertPreference(ctx context.Context, pref *domain.PlayerPreference) error {
	if pref == nil {
		return fmt.Errorf("nil chess preference payload")
	}
	const query = `
		INSERT INTO chess_preferences (
			player_id,
			level,
			human_side,
			games_started,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			level = EXCLUDED.level,
			human_side = EXCLUDED.human_side,
			games_started = EXCLUDED.games_started,
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, pref.PlayerID, pref.Level, pref.HumanSide, pref.GamesStarted)
	if err != nil {
		return fmt.Errorf("upsert chess preference: %w", err)
	}
	return nil
}

// EnsureSchema creates the preference table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS chess_preferences (
			player_id     TEXT PRIMARY KEY,
			level         INTEGER NOT NULL,
			human_side    TEXT NOT NULL,
			games_started INTEGER NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create chess_preferences: %w", err)
	}
	return nil
}
