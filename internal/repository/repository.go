package repository

import (
	"fmt"

	"github.com/yourusername/sharpe-scout/internal/database"
)

// Repositories bundles all repository implementations over one pool.
type Repositories struct {
	TrainingRun TrainingRunRepository
	Ranking     RankingRepository
}

// NewRepositories creates the repository container.
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &Repositories{
		TrainingRun: NewPostgresTrainingRunRepository(db),
		Ranking:     NewPostgresRankingRepository(db),
	}, nil
}
