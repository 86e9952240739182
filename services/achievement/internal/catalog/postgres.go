package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

// Querier is the subset of *pgxpool.Pool used to load definitions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const loadDefinitionsSQL = `SELECT achievement_id, total_progress, stop_watching_after_finish
	FROM achievement_definitions ORDER BY achievement_id`

// LoadPostgres reads every row of achievement_definitions.
func LoadPostgres(ctx context.Context, db Querier) (*Catalog, error) {
	rows, err := db.Query(ctx, loadDefinitionsSQL)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Definition, error) {
		var (
			d     domain.Definition
			id    int64
			total int64
		)
		if err := row.Scan(&id, &total, &d.StopWatchingAfterFinish); err != nil {
			return d, err
		}
		d.ID = uint32(id)
		d.TotalProgress = uint32(total)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan definitions: %w", err)
	}
	return New(defs)
}
