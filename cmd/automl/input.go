package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// loadDataset reads and schema-validates a dataset document.
func loadDataset(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	if err := models.ValidateDatasetJSON(data); err != nil {
		return nil, err
	}

	var dataset models.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode dataset file: %w", err)
	}

	return &dataset, nil
}

// loadProblemConfig reads and schema-validates a problem configuration
// document.
func loadProblemConfig(path string) (*models.ProblemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := models.ValidateProblemConfigJSON(data); err != nil {
		return nil, err
	}

	var config models.ProblemConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}
