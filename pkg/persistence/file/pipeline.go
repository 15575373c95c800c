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

// PipelineRepository stores each pipeline as <root>/pipelines/<id>.json.
type PipelineRepository struct {
	root string
}

// NewPipelineRepository creates a new pipeline repository.
func NewPipelineRepository(root string) *PipelineRepository {
	return &PipelineRepository{root: root}
}

func (pr *PipelineRepository) dir() string {
	return filepath.Join(pr.root, "pipelines")
}

// List returns all stored pipelines sorted by creation time, newest first.
func (pr *PipelineRepository) List(ctx context.Context) ([]*models.Pipeline, error) {
	root := os.DirFS(pr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline files: %w", err)
	}

	pipelines := make([]*models.Pipeline, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		pipeline, err := pr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load pipeline %s: %w", id, err)
		}

		pipelines = append(pipelines, pipeline)
	}

	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].CreatedAt.After(pipelines[j].CreatedAt)
	})

	return pipelines, nil
}

// GetByID loads one pipeline document.
func (pr *PipelineRepository) GetByID(_ context.Context, id string) (*models.Pipeline, error) {
	data, err := os.ReadFile(filepath.Join(pr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewPipelineError("GetByID", id, persistence.ErrPipelineNotFound)
		}

		return nil, persistence.NewPipelineError("GetByID", id, err)
	}

	var pipeline models.Pipeline
	if err := json.Unmarshal(data, &pipeline); err != nil {
		return nil, persistence.NewPipelineError("GetByID", id, err)
	}

	return &pipeline, nil
}

// Save writes the pipeline document, creating the directory on first use.
func (pr *PipelineRepository) Save(_ context.Context, pipeline *models.Pipeline) error {
	if err := os.MkdirAll(pr.dir(), 0o755); err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	data, err := json.MarshalIndent(pipeline, "", "  ")
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	path := filepath.Join(pr.dir(), pipeline.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	return nil
}

// Delete removes the pipeline document.
func (pr *PipelineRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(pr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewPipelineError("Delete", id, persistence.ErrPipelineNotFound)
		}

		return persistence.NewPipelineError("Delete", id, err)
	}

	return nil
}
