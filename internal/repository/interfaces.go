// Package repository persists training runs and ranking snapshots.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// TrainingRunRepository stores completed training runs.
type TrainingRunRepository interface {
	Create(ctx context.Context, run *models.TrainingRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRun, error)
	GetLatestBySymbol(ctx context.Context, symbol string) (*models.TrainingRun, error)
}

// RankingRepository stores ranking snapshots.
type RankingRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *models.RankingSnapshot) error
	GetLatest(ctx context.Context) (*models.RankingSnapshot, error)
}
