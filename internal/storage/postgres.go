// Package storage holds the HistoryStore backends: Postgres, Redis and an
// in-process log.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/travel-planner/internal/travel"
	"github.com/neexbeast/travel-planner/migrations"
)

// Querier abstracts the subset of pgxpool.Pool used by HistoryRepository.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DB is everything HistoryRepository needs from a pool, migrations included.
type DB interface {
	Querier
	MigrationPool
}

// HistoryRepository is the Postgres HistoryStore. Ids come from an identity
// column, so concurrent appends from any number of processes stay unique and
// increasing.
type HistoryRepository struct {
	db DB
}

// NewHistoryRepository constructs a HistoryRepository backed by pool.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: pool}
}

// NewHistoryRepositoryWithDB constructs a HistoryRepository with a custom DB (for tests).
func NewHistoryRepositoryWithDB(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Initialize applies the embedded schema migrations.
func (r *HistoryRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(ctx, r.db, migrations.FS); err != nil {
		return fmt.Errorf("initializing history schema: %w", err)
	}
	return nil
}

// Append inserts rec and returns its assigned id.
func (r *HistoryRepository) Append(ctx context.Context, rec travel.HistoryRecord) (int64, error) {
	const q = `
		INSERT INTO travel_history (user_city, destination_city, temperature_c, currency_summary, queried_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, q,
		rec.UserCity,
		rec.DestinationCity,
		rec.TemperatureC,
		rec.CurrencySummary,
		rec.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting history record for %s: %w", rec.DestinationCity, err)
	}

	return id, nil
}

// ListAll returns every record, newest first.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]travel.HistoryRecord, error) {
	const q = `
		SELECT id, user_city, destination_city, temperature_c, currency_summary, queried_at
		FROM travel_history
		ORDER BY queried_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	records := []travel.HistoryRecord{}
	for rows.Next() {
		var rec travel.HistoryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserCity,
			&rec.DestinationCity,
			&rec.TemperatureC,
			&rec.CurrencySummary,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return records, nil
}
