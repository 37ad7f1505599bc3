package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/DGfinder/fleet-correlation-go/internal/analysis"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// RunService starts and tracks batch engine runs
type RunService struct {
	repo *repository.AnalysisRunRepository
	db   *sql.DB
}

// NewRunService creates a new run service
func NewRunService(repo *repository.AnalysisRunRepository, db *sql.DB) *RunService {
	return &RunService{repo: repo, db: db}
}

// StartRun creates a run row for the given kind and executes the job in the
// background. The returned run is in the pending state; poll GetRun for
// progress.
func (s *RunService) StartRun(kind, paramsJSON string) (*models.AnalysisRun, error) {
	runner, err := analysis.NewRunner(kind, s.db, paramsJSON)
	if err != nil {
		return nil, err
	}

	base := analysis.NewBaseRun(s.db, kind)
	runID, err := base.CreateRun(kind, paramsJSON)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := runner.Run(context.Background(), runID); err != nil {
			log.Printf("[RunService] Run %d (%s) failed: %v", runID, kind, err)
		}
	}()

	return s.repo.GetRunByID(runID)
}

// GetRun retrieves a run by ID
func (s *RunService) GetRun(id int64) (*models.AnalysisRun, error) {
	return s.repo.GetRunByID(id)
}

// ListRuns retrieves runs filtered by kind and status, newest first
func (s *RunService) ListRuns(kind, status string, limit int) ([]models.AnalysisRun, error) {
	if kind != "" {
		known := false
		for _, k := range analysis.Kinds() {
			if k == kind {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown run kind %q", kind)
		}
	}
	return s.repo.GetRuns(kind, status, limit)
}
