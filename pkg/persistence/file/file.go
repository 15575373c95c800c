// Package file provides file-based persistence for pipelines and
// experiments. Each aggregate is stored as one JSON document, which keeps
// local development and tests free of external dependencies.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root           string
	pipelineRepo   *PipelineRepository
	experimentRepo *ExperimentRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		pipelineRepo:   NewPipelineRepository(cleanRoot),
		experimentRepo: NewExperimentRepository(cleanRoot),
	}
}

// Pipelines returns the pipeline repository.
func (fp *Persistence) Pipelines() persistence.PipelineRepository {
	return fp.pipelineRepo
}

// Experiments returns the experiment repository.
func (fp *Persistence) Experiments() persistence.ExperimentRepository {
	return fp.experimentRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
