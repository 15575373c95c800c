package models

import "time"

// LeaderboardEntry ranks one surviving model by the configured objective.
type LeaderboardEntry struct {
	Rank      int      `json:"rank"`
	ModelID   string   `json:"model_id"`
	Algorithm string   `json:"algorithm"`
	Score     float64  `json:"score"`
	CVMean    float64  `json:"cv_mean"`
	CVStdDev  float64  `json:"cv_std_dev"`
	TestScore *float64 `json:"test_score,omitempty"`
}

// InsightCategory buckets observations for dashboard display.
type InsightCategory string

const (
	InsightData        InsightCategory = "data"
	InsightModel       InsightCategory = "model"
	InsightPerformance InsightCategory = "performance"
)

// Insight is a human-readable observation plus an optional recommendation.
type Insight struct {
	Category       InsightCategory `json:"category"`
	Message        string          `json:"message"`
	Recommendation string          `json:"recommendation,omitempty"`
}

// DeploymentConfig is the skeleton handed to the deployment layer. It names
// the model and target but carries no serving infrastructure details.
type DeploymentConfig struct {
	Target   string   `json:"target"`
	ModelID  string   `json:"model_id"`
	Runtime  string   `json:"runtime,omitempty"`
	Replicas int      `json:"replicas,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// PipelineResults is the final aggregation produced by stage 10. It is
// created once and never mutated afterwards. BestModel is nil when no model
// survived validation; the leaderboard is empty in that case and an
// explanatory insight is present instead.
type PipelineResults struct {
	BestModel   *InterpretableModel `json:"best_model,omitempty"`
	Leaderboard []LeaderboardEntry  `json:"leaderboard"`
	Insights    []Insight           `json:"insights,omitempty"`
	Deployment  *DeploymentConfig   `json:"deployment,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}
