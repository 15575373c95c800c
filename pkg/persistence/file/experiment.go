package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
)

// ExperimentRepository stores experiments under <root>/experiments and runs
// under <root>/runs, one JSON document each.
type ExperimentRepository struct {
	root string
}

// NewExperimentRepository creates a new experiment repository.
func NewExperimentRepository(root string) *ExperimentRepository {
	return &ExperimentRepository{root: root}
}

func (er *ExperimentRepository) experimentsDir() string {
	return filepath.Join(er.root, "experiments")
}

func (er *ExperimentRepository) runsDir() string {
	return filepath.Join(er.root, "runs")
}

// SaveExperiment writes the experiment document.
func (er *ExperimentRepository) SaveExperiment(_ context.Context, experiment *models.Experiment) error {
	return writeJSON(er.experimentsDir(), experiment.ID, experiment)
}

// GetExperiment loads one experiment document.
func (er *ExperimentRepository) GetExperiment(_ context.Context, id string) (*models.Experiment, error) {
	var experiment models.Experiment

	err := readJSON(er.experimentsDir(), id, &experiment)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("experiment %s: %w", id, persistence.ErrExperimentNotFound)
		}

		return nil, fmt.Errorf("failed to load experiment %s: %w", id, err)
	}

	return &experiment, nil
}

// SaveRun writes the run document.
func (er *ExperimentRepository) SaveRun(_ context.Context, run *models.ExperimentRun) error {
	return writeJSON(er.runsDir(), run.ID, run)
}

// GetRun loads one run document.
func (er *ExperimentRepository) GetRun(_ context.Context, id string) (*models.ExperimentRun, error) {
	var run models.ExperimentRun

	err := readJSON(er.runsDir(), id, &run)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", id, persistence.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	return &run, nil
}

// RunsByExperiment loads all runs recorded for an experiment, oldest first.
func (er *ExperimentRepository) RunsByExperiment(ctx context.Context, experimentID string) ([]*models.ExperimentRun, error) {
	root := os.DirFS(er.runsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	runs := make([]*models.ExperimentRun, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		run, err := er.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}

		if run.ExperimentID == experimentID {
			runs = append(runs, run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})

	return runs, nil
}

func writeJSON(dir, id string, value any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", id, err)
	}

	return nil
}

func readJSON(dir, id string, value any) error {
	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, value)
}
