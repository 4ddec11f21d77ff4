package dataset

import (
	"fmt"
	"math/rand"
)

// TrainTestSplit is a disjoint, reproducible partition of a frame.
// The test rows are untouched during tuning and scored exactly once by
// the finalize step.
type TrainTestSplit struct {
	Train *Frame
	Test  *Frame
}

// NewTrainTestSplit partitions the frame by a seeded shuffle. The same
// seed, fraction, and row count always produce the same partition.
// testFraction must be in (0, 1); at least one row lands on each side.
func NewTrainTestSplit(frame *Frame, testFraction float64, seed int64) (*TrainTestSplit, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("dataset: test fraction must be in (0, 1), got %f", testFraction)
	}
	n := frame.Len()
	if n < 2 {
		return nil, fmt.Errorf("dataset: need at least 2 rows to split, got %d", n)
	}

	nTest := int(float64(n) * testFraction)
	if nTest == 0 {
		nTest = 1
	}
	if nTest == n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	test := &Frame{Columns: frame.Columns, Rows: make([][]float64, 0, nTest)}
	train := &Frame{Columns: frame.Columns, Rows: make([][]float64, 0, n-nTest)}
	for i, idx := range perm {
		if i < nTest {
			test.Rows = append(test.Rows, frame.Rows[idx])
		} else {
			train.Rows = append(train.Rows, frame.Rows[idx])
		}
	}

	return &TrainTestSplit{Train: train, Test: test}, nil
}
