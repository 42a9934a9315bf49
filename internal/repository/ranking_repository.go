package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sharpe-scout/internal/database"
	"github.com/yourusername/sharpe-scout/internal/models"
)

// PostgresRankingRepository implements RankingRepository for PostgreSQL
type PostgresRankingRepository struct {
	db *database.DB
}

// NewPostgresRankingRepository creates a new ranking repository
func NewPostgresRankingRepository(db *database.DB) RankingRepository {
	return &PostgresRankingRepository{db: db}
}

// CreateSnapshot inserts a ranking snapshot with its ordered rows in one
// transaction.
func (r *PostgresRankingRepository) CreateSnapshot(ctx context.Context, snapshot *models.RankingSnapshot) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO ranking_snapshots (id, created_at) VALUES ($1, $2)`,
		snapshot.ID, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ranking snapshot: %w", err)
	}

	for i, row := range snapshot.Rows {
		_, err = tx.Exec(ctx,
			`INSERT INTO ranking_rows (snapshot_id, position, symbol, sharpe_ratio) VALUES ($1, $2, $3, $4)`,
			snapshot.ID, i+1, row.Symbol, row.SharpeRatio,
		)
		if err != nil {
			return fmt.Errorf("failed to create ranking row: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetLatest retrieves the most recent ranking snapshot with its rows.
func (r *PostgresRankingRepository) GetLatest(ctx context.Context) (*models.RankingSnapshot, error) {
	snapshot := &models.RankingSnapshot{}
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT id, created_at FROM ranking_snapshots ORDER BY created_at DESC LIMIT 1`,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking snapshot: %w", err)
	}

	rows, err := r.db.GetPool().Query(ctx,
		`SELECT symbol, sharpe_ratio FROM ranking_rows WHERE snapshot_id = $1 ORDER BY position ASC`,
		snapshot.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.RankingRow
		if err := rows.Scan(&row.Symbol, &row.SharpeRatio); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}
	return snapshot, rows.Err()
}
