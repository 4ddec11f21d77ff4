package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "sqft,age,price\n100,5,200\n150,2,320\n")

	frame, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sqft", "age", "price"}, frame.Columns)
	assert.Equal(t, 2, frame.Len())
	assert.Equal(t, []float64{150, 2, 320}, frame.Rows[1])
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"non-numeric cell", "a,b\n1,x\n"},
		{"ragged row", "a,b\n1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(writeCSV(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestFrame_Split(t *testing.T) {
	frame := &Frame{
		Columns: []string{"sqft", "price", "age"},
		Rows: [][]float64{
			{100, 200, 5},
			{150, 320, 2},
		},
	}

	features, y, err := frame.Split("price")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{100, 5}, {150, 2}}, features)
	assert.Equal(t, []float64{200, 320}, y)

	_, _, err = frame.Split("bedrooms")
	assert.Error(t, err)
}
