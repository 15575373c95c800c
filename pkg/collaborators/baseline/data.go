package baseline

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

// DataProcessor profiles the dataset schema statistics to produce a quality
// report and a preprocessing plan.
type DataProcessor struct{}

func NewDataProcessor() *DataProcessor {
	return &DataProcessor{}
}

const (
	highCardinalityRatio = 0.5
	missingWarningRatio  = 0.05
	missingCriticalRatio = 0.3
)

func (p *DataProcessor) ValidateData(ctx context.Context, dataset *models.Dataset, opts protocol.ValidationOptions) (*models.DataQuality, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := dataset.Size.Rows
	issues := []models.DataIssue{}

	totalCells := 0
	missingCells := 0
	inconsistent := 0

	for _, col := range dataset.Schema {
		totalCells += rows

		stats := col.Stats
		if stats == nil {
			continue
		}

		missingCells += stats.MissingCount

		if rows > 0 {
			ratio := float64(stats.MissingCount) / float64(rows)

			switch {
			case ratio >= missingCriticalRatio:
				issues = append(issues, models.DataIssue{
					Column:      col.Name,
					Kind:        "missing_values",
					Description: fmt.Sprintf("%.0f%% of values are missing", ratio*100),
					Severity:    models.SeverityCritical,
				})
			case ratio >= missingWarningRatio:
				issues = append(issues, models.DataIssue{
					Column:      col.Name,
					Kind:        "missing_values",
					Description: fmt.Sprintf("%.0f%% of values are missing", ratio*100),
					Severity:    models.SeverityWarning,
				})
			}
		}

		if stats.DistinctCount == 1 && rows > 1 {
			inconsistent++

			issues = append(issues, models.DataIssue{
				Column:      col.Name,
				Kind:        "constant_column",
				Description: "column has a single distinct value and carries no signal",
				Severity:    models.SeverityWarning,
			})
		}

		if col.Type == models.ColumnTypeCategorical && rows > 0 &&
			float64(stats.DistinctCount)/float64(rows) > highCardinalityRatio {
			inconsistent++

			issues = append(issues, models.DataIssue{
				Column:      col.Name,
				Kind:        "high_cardinality",
				Description: fmt.Sprintf("%d distinct values over %d rows", stats.DistinctCount, rows),
				Severity:    models.SeverityInfo,
			})
		}
	}

	if opts.TargetColumn != "" {
		found := slices.ContainsFunc(dataset.Schema, func(col models.ColumnSchema) bool {
			return col.Name == opts.TargetColumn
		})
		if !found {
			issues = append(issues, models.DataIssue{
				Column:      opts.TargetColumn,
				Kind:        "missing_target",
				Description: "target column not present in the dataset schema",
				Severity:    models.SeverityCritical,
			})
		}
	}

	completeness := 100.0
	if totalCells > 0 {
		completeness = 100 * (1 - float64(missingCells)/float64(totalCells))
	}

	consistency := 100.0
	if len(dataset.Schema) > 0 {
		consistency = 100 * (1 - float64(inconsistent)/float64(len(dataset.Schema)))
	}

	score := 0.6*completeness + 0.4*consistency
	for _, issue := range issues {
		if issue.Severity == models.SeverityCritical {
			score -= 10
		}
	}

	return &models.DataQuality{
		Score:        math.Max(0, math.Round(score*10)/10),
		Completeness: math.Round(completeness*10) / 10,
		Consistency:  math.Round(consistency*10) / 10,
		Issues:       issues,
		ComputedAt:   time.Now().UTC(),
	}, nil
}

func (p *DataProcessor) Preprocess(ctx context.Context, dataset *models.Dataset, opts protocol.PreprocessOptions) (*protocol.ProcessedDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	features := dataset.FeatureColumns(opts.TargetColumn)
	features = slices.DeleteFunc(features, func(name string) bool {
		return slices.Contains(opts.ExcludeColumns, name)
	})

	steps := []string{}
	hasMissing := false
	hasCategorical := false
	hasNumeric := false

	for _, col := range dataset.Schema {
		if !slices.Contains(features, col.Name) {
			continue
		}

		if col.Stats != nil && col.Stats.MissingCount > 0 {
			hasMissing = true
		}

		switch col.Type {
		case models.ColumnTypeCategorical, models.ColumnTypeBoolean:
			hasCategorical = true
		case models.ColumnTypeNumeric:
			hasNumeric = true
		}
	}

	if hasMissing {
		steps = append(steps, "impute_missing")
	}

	if hasCategorical {
		steps = append(steps, "encode_categoricals")
	}

	if hasNumeric {
		steps = append(steps, "scale_numeric")
	}

	for _, issue := range opts.Quality.Issues {
		if issue.Kind == "constant_column" && slices.Contains(features, issue.Column) {
			features = slices.DeleteFunc(features, func(name string) bool {
				return name == issue.Column
			})
			if !slices.Contains(steps, "drop_constant_columns") {
				steps = append(steps, "drop_constant_columns")
			}
		}
	}

	rows := dataset.Size.Rows
	train := int(float64(rows) * opts.Split.Train)
	validation := int(float64(rows) * opts.Split.Validation)
	test := rows - train - validation

	return &protocol.ProcessedDataset{
		Features:          features,
		TrainSamples:      train,
		ValidationSamples: validation,
		TestSamples:       test,
		AppliedSteps:      steps,
		ProcessingTime:    time.Since(start),
	}, nil
}
