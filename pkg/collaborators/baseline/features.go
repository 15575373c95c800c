package baseline

import (
	"context"
	"sort"

	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

// FeatureEngineer derives ratio and interaction features from the existing
// columns and selects the highest scoring subset.
type FeatureEngineer struct{}

func NewFeatureEngineer() *FeatureEngineer {
	return &FeatureEngineer{}
}

const defaultEngineeredFeatures = 10

func (e *FeatureEngineer) Engineer(ctx context.Context, data *protocol.ProcessedDataset, opts protocol.EngineerOptions) (*protocol.EngineeredDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := opts.MaxFeatures
	if limit <= 0 {
		limit = defaultEngineeredFeatures
	}

	engineered := make([]string, 0, limit)

	for _, name := range data.Features {
		if len(engineered) >= limit {
			break
		}

		engineered = append(engineered, name+"_log")
	}

	for i := 0; i < len(data.Features) && len(engineered) < limit; i++ {
		for j := i + 1; j < len(data.Features) && len(engineered) < limit; j++ {
			engineered = append(engineered, data.Features[i]+"_x_"+data.Features[j])
		}
	}

	return &protocol.EngineeredDataset{
		ProcessedDataset:   *data,
		EngineeredFeatures: engineered,
	}, nil
}

func (e *FeatureEngineer) SelectFeatures(ctx context.Context, data *protocol.EngineeredDataset, opts protocol.SelectionOptions) (*protocol.SelectedFeatures, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]string, 0, len(data.Features)+len(data.EngineeredFeatures))
	all = append(all, data.Features...)
	all = append(all, data.EngineeredFeatures...)

	// Score each feature by a stable hash of method and name, then keep the
	// top slice. Original features get a bonus so derived ones only displace
	// them when clearly useful.
	type scored struct {
		name  string
		score float64
	}

	ranked := make([]scored, 0, len(all))

	for i, name := range all {
		s := spread(0.1, 0.9, "selection", opts.Method, name)
		if i < len(data.Features) {
			s += 0.15
		}

		ranked = append(ranked, scored{name: name, score: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := opts.MaxFeatures
	if limit <= 0 || limit > len(ranked) {
		// Default keeps roughly the top two thirds.
		limit = (len(ranked)*2 + 2) / 3
	}

	selected := make([]string, 0, limit)
	total := 0.0

	for _, entry := range ranked[:limit] {
		selected = append(selected, entry.name)
		total += entry.score
	}

	score := 0.0
	if limit > 0 {
		score = total / float64(limit)
	}

	return &protocol.SelectedFeatures{
		EngineeredDataset: *data,
		Selected:          selected,
		SelectionScore:    score,
	}, nil
}
