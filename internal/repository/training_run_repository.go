package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sharpe-scout/internal/database"
	"github.com/yourusername/sharpe-scout/internal/models"
)

// PostgresTrainingRunRepository implements TrainingRunRepository for PostgreSQL
type PostgresTrainingRunRepository struct {
	db *database.DB
}

// NewPostgresTrainingRunRepository creates a new training run repository
func NewPostgresTrainingRunRepository(db *database.DB) TrainingRunRepository {
	return &PostgresTrainingRunRepository{db: db}
}

// Create inserts a completed training run
func (r *PostgresTrainingRunRepository) Create(ctx context.Context, run *models.TrainingRun) error {
	query := `
		INSERT INTO training_runs (id, symbol, epochs, train_loss, test_loss,
			test_mse, test_accuracy, test_precision, test_recall, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Symbol, run.Epochs, run.TrainLoss, run.TestLoss,
		run.Final.MSE, run.Final.Accuracy, run.Final.Precision, run.Final.Recall,
		run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create training run: %w", err)
	}
	return nil
}

const trainingRunColumns = `id, symbol, epochs, train_loss, test_loss,
	test_mse, test_accuracy, test_precision, test_recall, started_at, completed_at`

// GetByID retrieves a training run by ID
func (r *PostgresTrainingRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRun, error) {
	query := `SELECT ` + trainingRunColumns + ` FROM training_runs WHERE id = $1`
	return r.scanRun(r.db.GetPool().QueryRow(ctx, query, id))
}

// GetLatestBySymbol retrieves the most recently completed run for a symbol
func (r *PostgresTrainingRunRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*models.TrainingRun, error) {
	query := `SELECT ` + trainingRunColumns + `
		FROM training_runs WHERE symbol = $1
		ORDER BY completed_at DESC LIMIT 1`
	return r.scanRun(r.db.GetPool().QueryRow(ctx, query, symbol))
}

func (r *PostgresTrainingRunRepository) scanRun(row pgx.Row) (*models.TrainingRun, error) {
	run := &models.TrainingRun{}
	err := row.Scan(
		&run.ID, &run.Symbol, &run.Epochs, &run.TrainLoss, &run.TestLoss,
		&run.Final.MSE, &run.Final.Accuracy, &run.Final.Precision, &run.Final.Recall,
		&run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training run: %w", err)
	}
	return run, nil
}
