package models

import "time"

// FinalReport is the terminal artifact of a study: the winning model
// refit on the full training set and scored exactly once on the
// held-out test set.
type FinalReport struct {
	StudyName   string             `json:"study_name,omitempty"`
	ModelID     string             `json:"model_id"`
	ConfigLabel string             `json:"config_label"`
	Timestamp   time.Time          `json:"timestamp"`
	TrainRows   int                `json:"train_rows"`
	TestRows    int                `json:"test_rows"`
	TestMetrics map[string]float64 `json:"test_metrics"`
	Predictions []float64          `json:"predictions,omitempty"`
}
