// Package collection aggregates independently tuned model results into
// a single collection suitable for ranking and posterior comparison.
//
// Every model in a collection must have been tuned under the same
// resampling scheme (identical fold identifiers); paired comparisons
// across models are meaningless otherwise.
package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modelrace/modelrace/internal/models"
)

// ErrEmpty is returned when a collection is built from no results.
var ErrEmpty = errors.New("collection: no model results provided")

// DuplicateModelError reports two results claiming the same model id.
type DuplicateModelError struct {
	ModelID string
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("collection: duplicate model id %q", e.ModelID)
}

// FoldMismatchError reports a model whose resampling folds differ from
// the rest of the collection.
type FoldMismatchError struct {
	ModelID string
	Want    []string
	Got     []string
}

func (e *FoldMismatchError) Error() string {
	return fmt.Sprintf("collection: model %q was resampled on folds [%s], expected [%s]",
		e.ModelID, strings.Join(e.Got, " "), strings.Join(e.Want, " "))
}

// ResultCollection holds one ModelResult per model id. Insertion order
// is preserved for display; it carries no other meaning.
type ResultCollection struct {
	ids     []string
	results map[string]*models.ModelResult
}

// New builds a ResultCollection from tuning results. It fails with
// ErrEmpty for empty input, a DuplicateModelError when two results
// share a model id, and a FoldMismatchError when the results were not
// produced under a common resampling scheme. On failure no partial
// collection is returned.
func New(results []*models.ModelResult) (*ResultCollection, error) {
	if len(results) == 0 {
		return nil, ErrEmpty
	}

	c := &ResultCollection{
		results: make(map[string]*models.ModelResult, len(results)),
	}

	var folds []string
	for _, r := range results {
		if r.ModelID == "" {
			return nil, fmt.Errorf("collection: model result with empty model id")
		}
		if _, exists := c.results[r.ModelID]; exists {
			return nil, &DuplicateModelError{ModelID: r.ModelID}
		}
		if folds == nil {
			folds = r.FoldIDs()
		} else if got := r.FoldIDs(); !equalStrings(folds, got) {
			return nil, &FoldMismatchError{ModelID: r.ModelID, Want: folds, Got: got}
		}
		c.ids = append(c.ids, r.ModelID)
		c.results[r.ModelID] = r
	}

	return c, nil
}

// ModelIDs returns the model ids in insertion order.
func (c *ResultCollection) ModelIDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Get returns the result for a model id, or nil when absent.
func (c *ResultCollection) Get(modelID string) *models.ModelResult {
	return c.results[modelID]
}

// Len returns the number of models in the collection.
func (c *ResultCollection) Len() int {
	return len(c.ids)
}

// FoldIDs returns the shared fold identifiers of the collection, sorted.
func (c *ResultCollection) FoldIDs() []string {
	if len(c.ids) == 0 {
		return nil
	}
	return c.results[c.ids[0]].FoldIDs()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
