package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// better compares two objective scores under the configured direction.
func better(direction models.ObjectiveDirection, a, b float64) bool {
	if direction == models.DirectionMinimize {
		return a < b
	}

	return a > b
}

// The sorts below are stable so that models with equal scores keep their
// upstream order, making rankings independent of goroutine completion order.

func sortCandidates(candidates []models.CandidateModel, direction models.ObjectiveDirection) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return better(direction, candidates[i].Score, candidates[j].Score)
	})
}

func sortTuned(tuned []models.TunedModel, direction models.ObjectiveDirection) {
	sort.SliceStable(tuned, func(i, j int) bool {
		return better(direction, tuned[i].BestScore, tuned[j].BestScore)
	})
}

func sortEvaluated(evaluated []models.EvaluatedModel, direction models.ObjectiveDirection) {
	sort.SliceStable(evaluated, func(i, j int) bool {
		return better(direction, evaluated[i].CrossValidation.Mean, evaluated[j].CrossValidation.Mean)
	})
}

func sortFinal(final []models.InterpretableModel, direction models.ObjectiveDirection) {
	sort.SliceStable(final, func(i, j int) bool {
		return better(direction, final[i].CrossValidation.Mean, final[j].CrossValidation.Mean)
	})
}

// buildResults assembles the leaderboard, insights, and deployment config
// from the models that survived validation. An empty survivor list produces
// a completed result with an empty leaderboard and a diagnostic insight.
func (o *Orchestrator) buildResults(ctx context.Context, ex *execution) (*models.PipelineResults, error) {
	config := ex.pipeline.Config
	direction := config.Objective.Direction

	final := make([]models.InterpretableModel, len(ex.final))
	copy(final, ex.final)
	sortFinal(final, direction)

	leaderboard := make([]models.LeaderboardEntry, 0, len(final))

	for i, model := range final {
		entry := models.LeaderboardEntry{
			Rank:      i + 1,
			ModelID:   model.ID,
			Algorithm: model.Algorithm,
			Score:     model.BestScore,
			CVMean:    model.CrossValidation.Mean,
			CVStdDev:  model.CrossValidation.StdDev,
		}

		if model.TestSet != nil {
			score := model.TestSet.Score
			entry.TestScore = &score
		}

		leaderboard = append(leaderboard, entry)
	}

	results := &models.PipelineResults{
		Leaderboard: leaderboard,
		Insights:    o.buildInsights(ex, final),
		GeneratedAt: time.Now(),
	}

	if len(final) == 0 {
		return results, nil
	}

	best := final[0]
	results.BestModel = &best

	if o.collaborators.Deployer != nil && config.Constraints.DeploymentTarget != "" {
		deployment, err := o.collaborators.Deployer.Prepare(ctx, best, config.Constraints.DeploymentTarget)
		if err != nil {
			return nil, fmt.Errorf("preparing deployment for %s: %w", best.Algorithm, err)
		}

		results.Deployment = deployment
	}

	return results, nil
}

// qualityInsightThreshold marks the data quality score below which a data
// insight is emitted.
const qualityInsightThreshold = 80.0

func (o *Orchestrator) buildInsights(ex *execution, final []models.InterpretableModel) []models.Insight {
	insights := []models.Insight{}

	if len(final) == 0 {
		insights = append(insights, models.Insight{
			Category: models.InsightModel,
			Message: fmt.Sprintf(
				"No model passed validation: %d candidates were evaluated, none met the stability and robustness thresholds.",
				len(ex.evaluated),
			),
			Recommendation: "Review the validation metrics in the experiment run, then relax thresholds or expand the candidate pool.",
		})

		return insights
	}

	best := final[0]

	insights = append(insights, models.Insight{
		Category: models.InsightModel,
		Message: fmt.Sprintf("%s achieved the best %s with a cross-validation mean of %.4f (±%.4f).",
			best.Algorithm, ex.pipeline.Config.Objective.Metric,
			best.CrossValidation.Mean, best.CrossValidation.StdDev),
	})

	if ex.quality != nil && ex.quality.Score < qualityInsightThreshold {
		insights = append(insights, models.Insight{
			Category: models.InsightData,
			Message: fmt.Sprintf("Data quality score is %.1f with %d issues detected.",
				ex.quality.Score, len(ex.quality.Issues)),
			Recommendation: "Addressing the reported data issues may improve model performance more than further tuning.",
		})
	}

	if best.TestSet != nil {
		gap := best.CrossValidation.Mean - best.TestSet.Score
		if gap < 0 {
			gap = -gap
		}

		if best.CrossValidation.Mean != 0 && gap/absFloat(best.CrossValidation.Mean) > 0.1 {
			insights = append(insights, models.Insight{
				Category: models.InsightPerformance,
				Message: fmt.Sprintf("Cross-validation (%.4f) and test-set (%.4f) scores for %s diverge noticeably.",
					best.CrossValidation.Mean, best.TestSet.Score, best.Algorithm),
				Recommendation: "Consider a larger test split or additional data to confirm generalization.",
			})
		}
	}

	if len(final) > 1 {
		runnerUp := final[1]
		insights = append(insights, models.Insight{
			Category: models.InsightPerformance,
			Message: fmt.Sprintf("%d models passed validation; the runner-up %s scored %.4f.",
				len(final), runnerUp.Algorithm, runnerUp.CrossValidation.Mean),
		})
	}

	return insights
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
