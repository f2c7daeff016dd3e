package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WatchlistRepository stores a user-managed ticker list in Postgres
// ⭐ SSOT: watchlist 테이블 접근은 여기서만
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

// Name returns the source name
func (r *WatchlistRepository) Name() string { return "watchlist" }

// EnsureSchema creates the watchlist table if missing
func (r *WatchlistRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS watchlist (
			ticker     TEXT PRIMARY KEY,
			note       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure watchlist schema: %w", err)
	}
	return nil
}

// Tickers returns all watchlist tickers in insertion order
func (r *WatchlistRepository) Tickers(ctx context.Context) ([]string, error) {
	query := `SELECT ticker FROM watchlist ORDER BY created_at, ticker`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}

	return NormalizeTickers(tickers), nil
}

// Add inserts tickers (existing ones keep their note)
func (r *WatchlistRepository) Add(ctx context.Context, note string, tickers ...string) (int, error) {
	query := `
		INSERT INTO watchlist (ticker, note)
		VALUES ($1, $2)
		ON CONFLICT (ticker) DO NOTHING
	`

	added := 0
	for _, t := range NormalizeTickers(tickers) {
		tag, err := r.pool.Exec(ctx, query, t, note)
		if err != nil {
			return added, fmt.Errorf("add %s to watchlist: %w", t, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// Remove deletes tickers from the watchlist
func (r *WatchlistRepository) Remove(ctx context.Context, tickers ...string) (int, error) {
	query := `DELETE FROM watchlist WHERE ticker = ANY($1)`

	tag, err := r.pool.Exec(ctx, query, NormalizeTickers(tickers))
	if err != nil {
		return 0, fmt.Errorf("remove from watchlist: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
