package baseline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

type algorithm struct {
	name          string
	family        string
	ensemble      bool
	neural        bool
	interpretable bool
}

var algorithmCatalog = map[models.ProblemType][]algorithm{
	models.ProblemClassification: {
		{name: "logistic_regression", family: "linear", interpretable: true},
		{name: "random_forest", family: "tree_ensemble", ensemble: true, interpretable: true},
		{name: "gradient_boosting", family: "tree_ensemble", ensemble: true},
		{name: "svm", family: "kernel"},
		{name: "naive_bayes", family: "probabilistic", interpretable: true},
		{name: "knn", family: "instance"},
		{name: "mlp", family: "neural", neural: true},
	},
	models.ProblemRegression: {
		{name: "linear_regression", family: "linear", interpretable: true},
		{name: "ridge", family: "linear", interpretable: true},
		{name: "random_forest", family: "tree_ensemble", ensemble: true, interpretable: true},
		{name: "gradient_boosting", family: "tree_ensemble", ensemble: true},
		{name: "svr", family: "kernel"},
		{name: "mlp", family: "neural", neural: true},
	},
	models.ProblemForecasting: {
		{name: "exponential_smoothing", family: "statistical", interpretable: true},
		{name: "arima", family: "statistical", interpretable: true},
		{name: "gradient_boosting", family: "tree_ensemble", ensemble: true},
		{name: "lstm", family: "neural", neural: true},
	},
	models.ProblemClustering: {
		{name: "kmeans", family: "centroid", interpretable: true},
		{name: "gaussian_mixture", family: "probabilistic"},
		{name: "dbscan", family: "density"},
		{name: "agglomerative", family: "hierarchical", interpretable: true},
	},
}

// candidateScore derives a base score from the algorithm and data shape,
// oriented so that better always means closer to the optimum for the
// configured direction.
func candidateScore(algo string, spec protocol.ModelSelectionSpec) float64 {
	seed := unit("candidate", algo, string(spec.ProblemType), fmt.Sprint(spec.FeatureCount), fmt.Sprint(spec.SampleCount))

	if spec.Objective.Direction == models.DirectionMinimize {
		return 0.05 + 0.4*seed
	}

	return 0.6 + 0.35*seed
}

// ModelSelector picks candidate algorithms from a static catalog, honoring
// the user's preferences, and base-trains each one.
type ModelSelector struct{}

func NewModelSelector() *ModelSelector {
	return &ModelSelector{}
}

func (s *ModelSelector) SelectModels(ctx context.Context, spec protocol.ModelSelectionSpec) ([]models.CandidateModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []models.CandidateModel{}

	for _, algo := range algorithmCatalog[spec.ProblemType] {
		if algo.neural && !spec.Preferences.AllowNeuralNetworks {
			continue
		}

		if algo.ensemble && !spec.Preferences.AllowEnsembles {
			continue
		}

		if spec.Preferences.RequireExplainability && !algo.interpretable {
			continue
		}

		candidates = append(candidates, models.CandidateModel{
			ID:        "mdl-" + uuid.NewString(),
			Algorithm: algo.name,
			Family:    algo.family,
			Score:     candidateScore(algo.name, spec),
			TrainingTime: time.Duration(
				spread(0.5, 5, "training_time", algo.name) * float64(time.Second),
			),
		})
	}

	return candidates, nil
}

// HyperparameterTuner simulates a search that improves each candidate's base
// score by a stable margin.
type HyperparameterTuner struct{}

func NewHyperparameterTuner() *HyperparameterTuner {
	return &HyperparameterTuner{}
}

const defaultTuningTrials = 25

func (t *HyperparameterTuner) Tune(ctx context.Context, model models.CandidateModel, opts protocol.TuneOptions) (*models.TunedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trials := opts.MaxTrials
	if trials <= 0 {
		trials = defaultTuningTrials
	}

	improvement := spread(0.05, 0.25, "tuning", model.Algorithm, opts.Objective.Metric)

	var best float64
	if opts.Objective.Direction == models.DirectionMinimize {
		best = model.Score * (1 - improvement)
	} else {
		best = model.Score + (1-model.Score)*improvement
	}

	return &models.TunedModel{
		CandidateModel: model,
		BestParams: map[string]any{
			"learning_rate": math.Round(spread(0.001, 0.3, "lr", model.Algorithm)*1000) / 1000,
			"max_depth":     3 + int(spread(0, 9, "depth", model.Algorithm)),
			"n_estimators":  50 + int(spread(0, 450, "estimators", model.Algorithm)),
		},
		BestScore:   best,
		TotalTrials: trials,
	}, nil
}

// ModelEvaluator produces per-fold scores centered on the tuned score with a
// stable per-algorithm variance.
type ModelEvaluator struct{}

func NewModelEvaluator() *ModelEvaluator {
	return &ModelEvaluator{}
}

func (e *ModelEvaluator) Evaluate(ctx context.Context, model models.TunedModel, opts protocol.EvaluateOptions) (*models.EvaluatedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	noise := spread(0.005, 0.04, "cv_noise", model.Algorithm)
	scores := make([]float64, opts.Folds)
	sum := 0.0

	for i := range scores {
		offset := (unit("fold", model.Algorithm, fmt.Sprint(i)) - 0.5) * 2 * noise
		scores[i] = model.BestScore + offset
		sum += scores[i]
	}

	mean := sum / float64(opts.Folds)

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}

	stdDev := math.Sqrt(variance / float64(opts.Folds))

	evaluated := &models.EvaluatedModel{
		TunedModel: model,
		CrossValidation: models.CrossValidationResult{
			Mean:   mean,
			StdDev: stdDev,
			Scores: scores,
			Folds:  opts.Folds,
		},
	}

	if opts.HasTestSet {
		offset := (unit("test", model.Algorithm) - 0.5) * 4 * noise
		evaluated.TestSet = &models.TestSetResult{
			Score: mean + offset,
			Metrics: map[string]float64{
				opts.Objective.Metric: mean + offset,
			},
		}
	}

	return evaluated, nil
}

const (
	stabilityThreshold  = 0.75
	robustnessThreshold = 0.7
)

// ModelValidator scores stability and robustness from stable hashes and
// applies fixed pass thresholds.
type ModelValidator struct{}

func NewModelValidator() *ModelValidator {
	return &ModelValidator{}
}

func (v *ModelValidator) Validate(ctx context.Context, model models.EvaluatedModel, opts protocol.ValidateOptions) (*models.ValidatedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// High CV variance relative to the mean drags stability down.
	stability := spread(0.65, 1.0, "stability", model.Algorithm)
	if model.CrossValidation.Mean != 0 {
		penalty := model.CrossValidation.StdDev / math.Abs(model.CrossValidation.Mean)
		stability -= penalty
	}

	robustness := spread(0.6, 1.0, "robustness", model.Algorithm)

	result := models.ValidationResult{
		Stability:  math.Max(0, stability),
		Robustness: robustness,
		Passed:     stability >= stabilityThreshold && robustness >= robustnessThreshold,
	}

	if opts.CheckFairness {
		fairness := spread(0.7, 1.0, "fairness", model.Algorithm)
		result.Fairness = &fairness
	}

	return &models.ValidatedModel{
		EvaluatedModel: model,
		Validation:     result,
	}, nil
}

// InterpretabilityEngine attributes global importance over the model's tuned
// parameters.
type InterpretabilityEngine struct{}

func NewInterpretabilityEngine() *InterpretabilityEngine {
	return &InterpretabilityEngine{}
}

func (e *InterpretabilityEngine) Analyze(ctx context.Context, model models.ValidatedModel, opts protocol.AnalyzeOptions) (*models.InterpretableModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	importance := map[string]float64{}
	total := 0.0

	for name := range model.BestParams {
		w := unit("importance", model.Algorithm, name)
		importance[name] = w
		total += w
	}

	if total > 0 {
		for name, w := range importance {
			importance[name] = math.Round(w/total*1000) / 1000
		}
	}

	return &models.InterpretableModel{
		ValidatedModel: model,
		Interpretability: &models.InterpretabilityReport{
			GlobalImportance: importance,
			LocalExamples:    opts.LocalExamples,
			ArtifactName:     fmt.Sprintf("interpretability-%s.json", model.Algorithm),
		},
	}, nil
}

// DeploymentManager fills in a deployment skeleton for the winning model.
type DeploymentManager struct{}

func NewDeploymentManager() *DeploymentManager {
	return &DeploymentManager{}
}

func (m *DeploymentManager) Prepare(ctx context.Context, model models.InterpretableModel, target string) (*models.DeploymentConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.DeploymentConfig{
		Target:   target,
		ModelID:  model.ID,
		Runtime:  "python3.11",
		Replicas: 2,
		Notes: []string{
			fmt.Sprintf("serves %s model %s", model.Algorithm, model.ID),
			"resource sizing is a starting point, load test before production",
		},
	}, nil
}
