package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE pipelines (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('created', 'running', 'completed', 'failed', 'cancelled')),
				config JSONB NOT NULL,
				stages JSONB NOT NULL,
				progress JSONB NOT NULL,
				results JSONB,
				experiment_ids JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_pipelines_status ON pipelines(status);
			CREATE INDEX idx_pipelines_created_at ON pipelines(created_at);

			CREATE TABLE experiments (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				tags JSONB,
				pipeline_id VARCHAR(64),
				run_ids JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_experiments_pipeline_id ON experiments(pipeline_id);

			CREATE TABLE experiment_runs (
				id VARCHAR(64) PRIMARY KEY,
				experiment_id VARCHAR(64) NOT NULL REFERENCES experiments(id),
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed', 'killed')),
				params JSONB,
				metrics JSONB,
				artifacts JSONB,
				logs JSONB,
				error TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT
			);

			CREATE INDEX idx_experiment_runs_experiment_id ON experiment_runs(experiment_id);
			CREATE INDEX idx_experiment_runs_status ON experiment_runs(status);
		`,
	}
}
