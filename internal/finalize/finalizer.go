package finalize

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/modelrace/modelrace/internal/dataset"
	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/statistics"
)

// State tracks the finalizer's lifecycle. Transitions only move
// forward: Templated -> Finalized -> Evaluated.
type State int

const (
	// StateTemplated means hyperparameters are bound but nothing is fitted.
	StateTemplated State = iota
	// StateFinalized means the estimator is fitted on the full training set.
	StateFinalized
	// StateEvaluated is terminal: the test set has been scored.
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateTemplated:
		return "templated"
	case StateFinalized:
		return "finalized"
	case StateEvaluated:
		return "evaluated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotFinalized is returned when Evaluate is called before Finalize.
var ErrNotFinalized = errors.New("finalize: estimator has not been fitted yet")

// Finalizer carries one selected model configuration through fitting
// and the single test-set evaluation. There is deliberately no way to
// evaluate more than one candidate against the test set through this
// type; re-selecting against test metrics would overfit the holdout.
type Finalizer struct {
	modelID     string
	configLabel string
	params      RidgeParams

	state     State
	estimator *RidgeEstimator
	trainRows int
	report    *models.FinalReport
}

// NewFinalizer binds the configuration's hyperparameters into the
// ridge template. The returned finalizer is in the Templated state.
func NewFinalizer(modelID string, config *models.ConfigResult) (*Finalizer, error) {
	params, err := BindParams(config.Hyperparameters)
	if err != nil {
		return nil, err
	}
	return &Finalizer{
		modelID:     modelID,
		configLabel: config.Label,
		params:      params,
		state:       StateTemplated,
	}, nil
}

// State returns the current lifecycle state.
func (f *Finalizer) State() State {
	return f.state
}

// Finalize fits the estimator on the full training set and moves to
// the Finalized state. It can only be called in the Templated state.
func (f *Finalizer) Finalize(train *dataset.Frame, target string) error {
	if f.state != StateTemplated {
		return fmt.Errorf("finalize: cannot fit in state %s", f.state)
	}

	features, y, err := train.Split(target)
	if err != nil {
		return err
	}
	est, err := Fit(features, y, f.params)
	if err != nil {
		return err
	}

	f.estimator = est
	f.trainRows = len(y)
	f.state = StateFinalized
	return nil
}

// Evaluate scores the held-out test set once and moves to the terminal
// Evaluated state. A second call returns the report computed by the
// first call unchanged, so repeated calls are bit-identical and cannot
// be used to probe the test set with new candidates.
func (f *Finalizer) Evaluate(test *dataset.Frame, target string) (*models.FinalReport, error) {
	switch f.state {
	case StateTemplated:
		return nil, ErrNotFinalized
	case StateEvaluated:
		return f.report, nil
	}

	features, y, err := test.Split(target)
	if err != nil {
		return nil, err
	}
	preds := f.estimator.Predict(features)

	f.report = &models.FinalReport{
		ModelID:     f.modelID,
		ConfigLabel: f.configLabel,
		Timestamp:   time.Now().UTC(),
		TrainRows:   f.trainRows,
		TestRows:    len(y),
		TestMetrics: map[string]float64{
			"rmse": RMSE(y, preds),
			"mae":  MAE(y, preds),
			"rsq":  RSquared(y, preds),
		},
		Predictions: preds,
	}
	f.state = StateEvaluated
	return f.report, nil
}

// RMSE computes root-mean-squared error.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// MAE computes mean absolute error.
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// RSquared computes the coefficient of determination. Returns 0 when
// the actuals have no variance.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) < 2 {
		return 0
	}
	m := statistics.Mean(actual)
	ssTot := 0.0
	ssRes := 0.0
	for i := range actual {
		dt := actual[i] - m
		dr := actual[i] - predicted[i]
		ssTot += dt * dt
		ssRes += dr * dr
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
