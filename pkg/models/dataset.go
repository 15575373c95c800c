// Package models defines the core domain models for automated machine
// learning pipelines: datasets, problem configurations, pipeline aggregates,
// progressively enriched model records, experiments, and results.
package models

import "time"

// ColumnType classifies a dataset column for preprocessing purposes.
type ColumnType string

const (
	ColumnTypeNumeric     ColumnType = "numeric"
	ColumnTypeCategorical ColumnType = "categorical"
	ColumnTypeDatetime    ColumnType = "datetime"
	ColumnTypeText        ColumnType = "text"
	ColumnTypeBoolean     ColumnType = "boolean"
)

// ColumnStats carries summary statistics computed by the caller's profiling
// layer. Numeric fields are pointers because they are undefined for
// non-numeric columns.
type ColumnStats struct {
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Mean          *float64 `json:"mean,omitempty"`
	StdDev        *float64 `json:"std_dev,omitempty"`
	DistinctCount int      `json:"distinct_count"`
	MissingCount  int      `json:"missing_count"`
}

// ColumnSchema describes a single dataset column.
type ColumnSchema struct {
	Name     string       `json:"name"     validate:"required"`
	Type     ColumnType   `json:"type"     validate:"required"`
	Nullable bool         `json:"nullable"`
	Stats    *ColumnStats `json:"stats,omitempty"`
}

// DatasetSize describes the physical extent of a dataset.
type DatasetSize struct {
	Rows    int   `json:"rows"`
	Columns int   `json:"columns"`
	Bytes   int64 `json:"bytes"`
}

// Dataset is the caller-owned input to a pipeline. The orchestrator and its
// collaborators treat it as read-only.
type Dataset struct {
	Name   string         `json:"name"   validate:"required,min=1"`
	Schema []ColumnSchema `json:"schema" validate:"required,min=1,dive"`
	Size   DatasetSize    `json:"size"`
}

// FeatureColumns returns the column names excluding the given target column.
func (d *Dataset) FeatureColumns(target string) []string {
	features := make([]string, 0, len(d.Schema))

	for _, col := range d.Schema {
		if col.Name == target {
			continue
		}

		features = append(features, col.Name)
	}

	return features
}

// IssueSeverity ranks data quality issues.
type IssueSeverity string

const (
	SeverityInfo     IssueSeverity = "info"
	SeverityWarning  IssueSeverity = "warning"
	SeverityCritical IssueSeverity = "critical"
)

// DataIssue is a single problem found during data validation.
type DataIssue struct {
	Column      string        `json:"column,omitempty"`
	Kind        string        `json:"kind"`
	Description string        `json:"description"`
	Severity    IssueSeverity `json:"severity"`
}

// DataQuality is the output of the data validation stage: an overall score
// in [0, 100] plus the issues that lowered it.
type DataQuality struct {
	Score        float64     `json:"score"`
	Completeness float64     `json:"completeness"`
	Consistency  float64     `json:"consistency"`
	Issues       []DataIssue `json:"issues"`
	ComputedAt   time.Time   `json:"computed_at"`
}
