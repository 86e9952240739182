package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// DB is the subset of *pgxpool.Pool (and pgx.Tx) the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the tables used by PostgresStore and catalog.LoadPostgres.
const Schema = `
CREATE TABLE IF NOT EXISTS achievement_definitions (
  achievement_id             bigint PRIMARY KEY,
  total_progress             bigint NOT NULL CHECK (total_progress > 0),
  stop_watching_after_finish boolean NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS player_achievements (
  seq              bigserial,
  player_id        text NOT NULL,
  achievement_id   bigint NOT NULL,
  status           smallint NOT NULL,
  current_progress bigint NOT NULL DEFAULT 0,
  finished_at      timestamptz,
  PRIMARY KEY (player_id, achievement_id)
);
CREATE INDEX IF NOT EXISTS player_achievements_seq ON player_achievements (player_id, seq);`

// PostgresStore is the production backend.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate achievement schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context, playerID string) ([]domain.Record, error) {
	const q = `SELECT achievement_id, status, current_progress, finished_at
	           FROM player_achievements WHERE player_id = $1 ORDER BY seq`
	rows, err := s.db.Query(ctx, q, playerID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan achievements: %w", err)
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

// Apply mirrors apply() in SQL. SET expressions see the row as it was
// before the update, so each CASE branches on the old status.
func (s *PostgresStore) Apply(ctx context.Context, playerID string, u Update) (domain.Record, error) {
	const q = `
INSERT INTO player_achievements (player_id, achievement_id, status, current_progress, finished_at)
VALUES ($1, $2,
        CASE WHEN $4 THEN 2 ELSE 1 END,
        $3,
        CASE WHEN $4 THEN $5::timestamptz END)
ON CONFLICT (player_id, achievement_id) DO UPDATE SET
  current_progress = CASE WHEN player_achievements.status = 1
                          THEN GREATEST(player_achievements.current_progress, EXCLUDED.current_progress)
                          ELSE player_achievements.current_progress END,
  status = CASE WHEN player_achievements.status = 1 AND $4 THEN 2
                WHEN player_achievements.status = 2 AND $6 THEN 3
                ELSE player_achievements.status END,
  finished_at = CASE WHEN player_achievements.status = 1 AND $4 THEN $5::timestamptz
                     ELSE player_achievements.finished_at END
RETURNING achievement_id, status, current_progress, finished_at`

	row := s.db.QueryRow(ctx, q, playerID, int64(u.AchievementID), int64(u.Progress),
		u.Finished, u.finishedAt(), u.Rewarded)
	rec, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("apply achievement %d: %w", u.AchievementID, err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (domain.Record, error) {
	var (
		id, progress int64
		status       int16
		finishedAt   *time.Time
	)
	if err := row.Scan(&id, &status, &progress, &finishedAt); err != nil {
		return domain.Record{}, err
	}
	rec := domain.Record{
		ID:              uint32(id),
		Status:          domain.Status(status),
		CurrentProgress: uint32(progress),
	}
	if finishedAt != nil {
		t := finishedAt.UTC()
		rec.FinishedAt = &t
	}
	return rec, nil
}
