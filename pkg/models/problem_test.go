package models_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

func TestProblemConfigValidate(t *testing.T) {
	t.Parallel()

	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		mutate  func(c *models.ProblemConfig)
		wantErr string
	}{
		{
			name:   "valid classification config",
			mutate: func(c *models.ProblemConfig) {},
		},
		{
			name: "clustering needs no target",
			mutate: func(c *models.ProblemConfig) {
				c.ProblemType = models.ProblemClustering
				c.Target.Column = ""
			},
		},
		{
			name: "missing target for classification",
			mutate: func(c *models.ProblemConfig) {
				c.Target.Column = ""
			},
			wantErr: "target column is required",
		},
		{
			name: "unknown problem type",
			mutate: func(c *models.ProblemConfig) {
				c.ProblemType = "ranking"
			},
			wantErr: "oneof",
		},
		{
			name: "split ratios must sum to one",
			mutate: func(c *models.ProblemConfig) {
				c.Split = models.SplitConfig{Train: 0.8, Validation: 0.1, Test: 0.05}
			},
			wantErr: "split ratios must sum to 1.0",
		},
		{
			name: "unknown selection method",
			mutate: func(c *models.ProblemConfig) {
				c.Features.Selection.Enabled = true
				c.Features.Selection.Method = "magic"
			},
			wantErr: "oneof",
		},
		{
			name: "unknown objective direction",
			mutate: func(c *models.ProblemConfig) {
				c.Objective.Direction = "sideways"
			},
			wantErr: "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := testProblemConfig()
			tt.mutate(&config)

			err := config.Validate(validate)
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProblemConfigDefaults(t *testing.T) {
	t.Parallel()

	config := testProblemConfig()

	assert.Equal(t, 5, config.MaxCandidates())
	assert.Equal(t, 5, config.CVFolds())
	assert.Equal(t, models.DefaultSplit(), config.EffectiveSplit())

	config.Preferences.MaxCandidates = 3
	config.CrossValidation.Folds = 10
	config.Split = models.SplitConfig{Train: 0.8, Validation: 0.1, Test: 0.1}

	assert.Equal(t, 3, config.MaxCandidates())
	assert.Equal(t, 10, config.CVFolds())
	assert.Equal(t, config.Split, config.EffectiveSplit())
}

func TestFeatureColumns(t *testing.T) {
	t.Parallel()

	dataset := models.Dataset{
		Name: "churn",
		Schema: []models.ColumnSchema{
			{Name: "age", Type: models.ColumnTypeNumeric},
			{Name: "income", Type: models.ColumnTypeNumeric},
			{Name: "churn", Type: models.ColumnTypeCategorical},
		},
	}

	features := dataset.FeatureColumns("churn")
	assert.Equal(t, []string{"age", "income"}, features)
}
