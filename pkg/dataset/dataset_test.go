package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/record"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeDataset(t, `[
    {"id64": 10477373803, "name": "Sol", "coords": {"x": 0, "y": 0, "z": 0}, "population": 22780919531},
    {"id64": 3657265287659, "name": "Alpha Centauri", "coords": {"x": 3.03125, "y": -0.09375, "z": 3.15625}, "population": 85441},
    {"id64": 2832631632306, "name": "Barnard's Star", "coords": {"x": -3.03125, "y": 1.375, "z": 4.9375}, "population": 50000}
]`)

	ds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, path, ds.Path())
	assert.Equal(t, "Sol", ds.At(0).Name)
	assert.Equal(t, uint64(3657265287659), ds.At(1).ID64)

	bounds := ds.Bounds()
	assert.Equal(t, record.Coords{X: -3.03125, Y: -0.09375, Z: 0}, bounds.Min)
	assert.Equal(t, record.Coords{X: 3.03125, Y: 1.375, Z: 4.9375}, bounds.Max)
}

func TestLoad_Empty(t *testing.T) {
	ds, err := Load(writeDataset(t, `[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, Bounds{}, ds.Bounds())
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestLoad_Corrupt(t *testing.T) {
	_, err := Load(writeDataset(t, `[{"id64": 1, "name": "A"`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))

	var structured *errors.Error
	require.ErrorAs(t, err, &structured)
	assert.Contains(t, structured.Details, "byte_offset")
}

func TestLoad_NotAnArray(t *testing.T) {
	_, err := Load(writeDataset(t, `{"id64": 1}`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestIterate_EarlyStop(t *testing.T) {
	path := writeDataset(t, `[
    {"id64": 1, "name": "A", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 2, "name": "B", "coords": {"x": 1, "y": 1, "z": 1}, "population": 0},
    {"id64": 3, "name": "C", "coords": {"x": 2, "y": 2, "z": 2}, "population": 0}
]`)
	ds, err := Load(path)
	require.NoError(t, err)

	var seen []string
	ds.Iterate(func(i int32, rec record.Canonical) bool {
		seen = append(seen, rec.Name)
		return rec.Name != "B"
	})
	assert.Equal(t, []string{"A", "B"}, seen)

	// Iteration restarts from the beginning.
	count := 0
	ds.Iterate(func(i int32, rec record.Canonical) bool {
		count++
		return true
	})
	assert.Equal(t, 3, count)
}
