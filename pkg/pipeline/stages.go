package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

// execution carries the state threaded between stages of one pipeline run.
// It is owned by the goroutine executing the pipeline and never shared.
type execution struct {
	pipeline *models.Pipeline
	dataset  *models.Dataset
	runID    string
	logger   *slog.Logger

	quality    *models.DataQuality
	processed  *protocol.ProcessedDataset
	engineered *protocol.EngineeredDataset
	selected   *protocol.SelectedFeatures
	candidates []models.CandidateModel
	tuned      []models.TunedModel
	evaluated  []models.EvaluatedModel
	validated  []models.ValidatedModel
	final      []models.InterpretableModel
	results    *models.PipelineResults
}

// dispatchStage invokes the stage-specific runner. The bool result reports
// whether the stage was skipped by configuration.
func (o *Orchestrator) dispatchStage(ctx context.Context, ex *execution, stageType models.StageType) (*models.StageOutput, bool, error) {
	switch stageType {
	case models.StageDataValidation:
		return o.runDataValidation(ctx, ex)
	case models.StageDataPreprocessing:
		return o.runDataPreprocessing(ctx, ex)
	case models.StageFeatureEngineering:
		return o.runFeatureEngineering(ctx, ex)
	case models.StageFeatureSelection:
		return o.runFeatureSelection(ctx, ex)
	case models.StageModelSelection:
		return o.runModelSelection(ctx, ex)
	case models.StageHyperparameterTuning:
		return o.runHyperparameterTuning(ctx, ex)
	case models.StageModelEvaluation:
		return o.runModelEvaluation(ctx, ex)
	case models.StageModelValidation:
		return o.runModelValidation(ctx, ex)
	case models.StageInterpretability:
		return o.runInterpretability(ctx, ex)
	case models.StageResultsGeneration:
		return o.runResultsGeneration(ctx, ex)
	default:
		return nil, false, fmt.Errorf("unknown stage type %s", stageType)
	}
}

// Stage 1: always runs, never mutates the dataset.
func (o *Orchestrator) runDataValidation(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config

	quality, err := o.collaborators.Data.ValidateData(ctx, ex.dataset, protocol.ValidationOptions{
		TargetColumn: config.Target.Column,
		ProblemType:  config.ProblemType,
	})
	if err != nil {
		return nil, false, err
	}

	ex.quality = quality

	err = o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"data_validation.score":        quality.Score,
		"data_validation.completeness": quality.Completeness,
		"data_validation.consistency":  quality.Consistency,
		"data_validation.issues":       float64(len(quality.Issues)),
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		DataValidation: &models.DataValidationOutput{Quality: *quality},
	}, false, nil
}

// Stage 2: always runs. The quality report from stage 1 drives the
// preprocessing plan.
func (o *Orchestrator) runDataPreprocessing(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config
	split := config.EffectiveSplit()

	processed, err := o.collaborators.Data.Preprocess(ctx, ex.dataset, protocol.PreprocessOptions{
		Quality:        *ex.quality,
		TargetColumn:   config.Target.Column,
		Split:          split,
		ExcludeColumns: config.Features.Exclude,
	})
	if err != nil {
		return nil, false, err
	}

	ex.processed = processed

	err = o.tracker.LogParams(ctx, ex.runID, map[string]string{
		"preprocessing.steps":      strings.Join(processed.AppliedSteps, ","),
		"preprocessing.split":      fmt.Sprintf("%.2f/%.2f/%.2f", split.Train, split.Validation, split.Test),
		"preprocessing.stratified": fmt.Sprintf("%t", split.Stratified),
	})
	if err != nil {
		return nil, false, err
	}

	err = o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"preprocessing.features":           float64(len(processed.Features)),
		"preprocessing.train_samples":      float64(processed.TrainSamples),
		"preprocessing.validation_samples": float64(processed.ValidationSamples),
		"preprocessing.test_samples":       float64(processed.TestSamples),
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Preprocessing: &models.PreprocessingOutput{
			Features:          processed.Features,
			TrainSamples:      processed.TrainSamples,
			ValidationSamples: processed.ValidationSamples,
			TestSamples:       processed.TestSamples,
			AppliedSteps:      processed.AppliedSteps,
			ProcessingTime:    processed.ProcessingTime,
		},
	}, false, nil
}

// Stage 3: skippable. Engineered features are appended, originals are never
// removed.
func (o *Orchestrator) runFeatureEngineering(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config

	if !config.Features.Engineering.Enabled {
		ex.engineered = &protocol.EngineeredDataset{
			ProcessedDataset:   *ex.processed,
			EngineeredFeatures: []string{},
		}

		return &models.StageOutput{
			Engineering: &models.EngineeringOutput{
				EngineeredFeatures: []string{},
				TotalFeatures:      len(ex.processed.Features),
				Skipped:            "feature engineering disabled by configuration",
			},
		}, true, nil
	}

	engineered, err := o.collaborators.Features.Engineer(ctx, ex.processed, protocol.EngineerOptions{
		MaxFeatures: config.Features.Engineering.MaxFeatures,
		TimeLimit:   config.Features.Engineering.TimeLimit,
		ProblemType: config.ProblemType,
	})
	if err != nil {
		return nil, false, err
	}

	ex.engineered = engineered

	err = o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"feature_engineering.engineered": float64(len(engineered.EngineeredFeatures)),
		"feature_engineering.total":      float64(len(engineered.Features) + len(engineered.EngineeredFeatures)),
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Engineering: &models.EngineeringOutput{
			EngineeredFeatures: engineered.EngineeredFeatures,
			TotalFeatures:      len(engineered.Features) + len(engineered.EngineeredFeatures),
		},
	}, false, nil
}

// Stage 4: skippable. When skipped, all features pass through unchanged.
func (o *Orchestrator) runFeatureSelection(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config

	if !config.Features.Selection.Enabled {
		all := append([]string{}, ex.engineered.Features...)
		all = append(all, ex.engineered.EngineeredFeatures...)

		ex.selected = &protocol.SelectedFeatures{
			EngineeredDataset: *ex.engineered,
			Selected:          all,
			SelectionScore:    0,
		}

		return &models.StageOutput{
			Selection: &models.SelectionOutput{
				SelectedFeatures: all,
				Skipped:          "feature selection disabled by configuration",
			},
		}, true, nil
	}

	method := config.Features.Selection.Method
	if method == "" {
		method = "mutual_information"
	}

	selected, err := o.collaborators.Features.SelectFeatures(ctx, ex.engineered, protocol.SelectionOptions{
		Method:      method,
		MaxFeatures: config.Features.Selection.MaxFeatures,
		Objective:   config.Objective,
	})
	if err != nil {
		return nil, false, err
	}

	ex.selected = selected

	err = o.tracker.LogParams(ctx, ex.runID, map[string]string{
		"feature_selection.method": method,
	})
	if err != nil {
		return nil, false, err
	}

	err = o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"feature_selection.selected": float64(len(selected.Selected)),
		"feature_selection.score":    selected.SelectionScore,
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Selection: &models.SelectionOutput{
			SelectedFeatures: selected.Selected,
			SelectionScore:   selected.SelectionScore,
			Method:           method,
		},
	}, false, nil
}

// Stage 5: selects and base-trains candidate algorithms, retaining the
// configured number of best ones.
func (o *Orchestrator) runModelSelection(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config

	candidates, err := o.collaborators.Selector.SelectModels(ctx, protocol.ModelSelectionSpec{
		ProblemType:     config.ProblemType,
		FeatureCount:    len(ex.selected.Selected),
		SampleCount:     ex.processed.TrainSamples,
		MaxCandidates:   config.MaxCandidates(),
		MaxTrainingTime: config.Constraints.MaxTrainingTime,
		Preferences:     config.Preferences,
		Objective:       config.Objective,
	})
	if err != nil {
		return nil, false, err
	}

	if len(candidates) == 0 {
		return nil, false, ErrNoCandidates
	}

	evaluated := len(candidates)
	sortCandidates(candidates, config.Objective.Direction)

	if len(candidates) > config.MaxCandidates() {
		candidates = candidates[:config.MaxCandidates()]
	}

	ex.candidates = candidates

	algorithms := make([]string, 0, len(candidates))
	metrics := map[string]float64{
		"model_selection.evaluated": float64(evaluated),
		"model_selection.retained":  float64(len(candidates)),
	}

	for _, candidate := range candidates {
		algorithms = append(algorithms, candidate.Algorithm)
		metrics["model_selection."+candidate.Algorithm+".score"] = candidate.Score
	}

	if err := o.tracker.LogMetrics(ctx, ex.runID, metrics); err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		ModelSelection: &models.ModelSelectionOutput{
			Algorithms: algorithms,
			Evaluated:  evaluated,
			Retained:   len(candidates),
		},
	}, false, nil
}

// Stage 6: tunes every retained candidate with bounded parallelism. The
// stage is a barrier: all tuning finishes (or one fails) before it ends, and
// results are re-sorted so downstream behavior is independent of completion
// order.
func (o *Orchestrator) runHyperparameterTuning(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config
	tuned := make([]models.TunedModel, len(ex.candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.MaxParallelModels)

	for i, candidate := range ex.candidates {
		group.Go(func() error {
			result, err := o.collaborators.Tuner.Tune(groupCtx, candidate, protocol.TuneOptions{
				Objective: config.Objective,
				TimeLimit: config.Constraints.MaxTrainingTime,
			})
			if err != nil {
				return fmt.Errorf("tuning %s: %w", candidate.Algorithm, err)
			}

			tuned[i] = *result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	sortTuned(tuned, config.Objective.Direction)
	ex.tuned = tuned

	totalTrials := 0
	metrics := make(map[string]float64, len(tuned)+2)

	for _, model := range tuned {
		totalTrials += model.TotalTrials
		metrics["tuning."+model.Algorithm+".best_score"] = model.BestScore
	}

	metrics["tuning.total_trials"] = float64(totalTrials)
	metrics["tuning.best_score"] = tuned[0].BestScore

	if err := o.tracker.LogMetrics(ctx, ex.runID, metrics); err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Tuning: &models.TuningOutput{
			TotalTrials:   totalTrials,
			BestScore:     tuned[0].BestScore,
			BestAlgorithm: tuned[0].Algorithm,
		},
	}, false, nil
}

// Stage 7: cross-validates and test-evaluates every tuned model, again with
// bounded parallelism, then re-ranks by cross-validation mean.
func (o *Orchestrator) runModelEvaluation(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config
	evaluated := make([]models.EvaluatedModel, len(ex.tuned))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.MaxParallelModels)

	for i, model := range ex.tuned {
		group.Go(func() error {
			result, err := o.collaborators.Evaluator.Evaluate(groupCtx, model, protocol.EvaluateOptions{
				Folds:      config.CVFolds(),
				Strategy:   config.CrossValidation.Strategy,
				Objective:  config.Objective,
				HasTestSet: ex.processed.TestSamples > 0,
			})
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", model.Algorithm, err)
			}

			evaluated[i] = *result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	sortEvaluated(evaluated, config.Objective.Direction)
	ex.evaluated = evaluated

	metrics := make(map[string]float64, len(evaluated)+1)
	for _, model := range evaluated {
		metrics["evaluation."+model.Algorithm+".cv_mean"] = model.CrossValidation.Mean
		metrics["evaluation."+model.Algorithm+".cv_std"] = model.CrossValidation.StdDev
	}

	metrics["evaluation.best_cv_mean"] = evaluated[0].CrossValidation.Mean

	if err := o.tracker.LogMetrics(ctx, ex.runID, metrics); err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Evaluation: &models.EvaluationOutput{
			Evaluated:  len(evaluated),
			BestCVMean: evaluated[0].CrossValidation.Mean,
			Folds:      config.CVFolds(),
		},
	}, false, nil
}

// Stage 8: the hard gate. Models failing validation are dropped, not
// errored. An empty survivor list is valid: later stages degrade gracefully.
func (o *Orchestrator) runModelValidation(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config
	checkFairness := config.Constraints.Interpretability == models.InterpretabilityHigh

	validated := make([]models.ValidatedModel, 0, len(ex.evaluated))

	for _, model := range ex.evaluated {
		result, err := o.collaborators.Validator.Validate(ctx, model, protocol.ValidateOptions{
			CheckFairness: checkFairness,
		})
		if err != nil {
			return nil, false, fmt.Errorf("validating %s: %w", model.Algorithm, err)
		}

		if !result.Validation.Passed {
			ex.logger.InfoContext(ctx, "Model failed validation, dropping",
				"algorithm", model.Algorithm,
				"stability", result.Validation.Stability,
				"robustness", result.Validation.Robustness,
			)

			continue
		}

		validated = append(validated, *result)
	}

	ex.validated = validated

	err := o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"validation.models_checked": float64(len(ex.evaluated)),
		"validation.models_passed":  float64(len(validated)),
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Validation: &models.ValidationOutput{
			ModelsChecked: len(ex.evaluated),
			ModelsPassed:  len(validated),
		},
	}, false, nil
}

// maxAnalyzedModels bounds interpretability cost to the leaderboard head.
const maxAnalyzedModels = 3

// Stage 9: skippable when the interpretability constraint is low. Only the
// top models are analyzed; the rest pass through without a report.
func (o *Orchestrator) runInterpretability(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	config := ex.pipeline.Config

	if config.Constraints.Interpretability == models.InterpretabilityLow {
		ex.final = passthroughModels(ex.validated)

		return &models.StageOutput{
			Interpretability: &models.InterpretabilityOutput{
				Skipped: "interpretability constraint is low",
			},
		}, true, nil
	}

	analyzed := len(ex.validated)
	if analyzed > maxAnalyzedModels {
		analyzed = maxAnalyzedModels
	}

	final := passthroughModels(ex.validated)
	artifacts := make([]string, analyzed)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.MaxParallelModels)

	for i := 0; i < analyzed; i++ {
		model := ex.validated[i]

		group.Go(func() error {
			result, err := o.collaborators.Interpreter.Analyze(groupCtx, model, protocol.AnalyzeOptions{
				Level:         config.Constraints.Interpretability,
				LocalExamples: 10,
			})
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", model.Algorithm, err)
			}

			final[i] = *result

			if result.Interpretability != nil {
				name := result.Interpretability.ArtifactName
				if name == "" {
					name = fmt.Sprintf("interpretability-%s.json", model.Algorithm)
				}

				data, err := json.Marshal(result.Interpretability)
				if err != nil {
					return fmt.Errorf("marshalling interpretability report for %s: %w", model.Algorithm, err)
				}

				artifacts[i] = name

				return o.tracker.LogArtifact(groupCtx, ex.runID, models.Artifact{
					Name: name,
					Type: "application/json",
					Data: data,
				})
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	ex.final = final

	// Models analyzed without a report leave no artifact behind.
	logged := make([]string, 0, analyzed)

	for _, name := range artifacts {
		if name != "" {
			logged = append(logged, name)
		}
	}

	err := o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"interpretability.models_analyzed": float64(analyzed),
	})
	if err != nil {
		return nil, false, err
	}

	return &models.StageOutput{
		Interpretability: &models.InterpretabilityOutput{
			ModelsAnalyzed: analyzed,
			Artifacts:      logged,
		},
	}, false, nil
}

// Stage 10: pure aggregation, no new computation.
func (o *Orchestrator) runResultsGeneration(ctx context.Context, ex *execution) (*models.StageOutput, bool, error) {
	results, err := o.buildResults(ctx, ex)
	if err != nil {
		return nil, false, err
	}

	ex.results = results

	err = o.tracker.LogMetrics(ctx, ex.runID, map[string]float64{
		"results.leaderboard_size": float64(len(results.Leaderboard)),
	})
	if err != nil {
		return nil, false, err
	}

	output := &models.ResultsOutput{LeaderboardSize: len(results.Leaderboard)}
	if results.BestModel != nil {
		output.BestModel = results.BestModel.Algorithm
	}

	return &models.StageOutput{Results: output}, false, nil
}

// passthroughModels lifts validated models to the final enrichment level
// without an interpretability report.
func passthroughModels(validated []models.ValidatedModel) []models.InterpretableModel {
	final := make([]models.InterpretableModel, len(validated))
	for i, model := range validated {
		final[i] = models.InterpretableModel{ValidatedModel: model}
	}

	return final
}
