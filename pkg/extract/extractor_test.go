package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/json"
	"github.com/edatlas/galaxymap/pkg/record"
)

func testExtractConfig() config.ExtractConfig {
	cfg := config.NewDefaultConfig()
	return cfg.Extract
}

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readOutput(t *testing.T, path string) []record.Canonical {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []record.Canonical
	require.NoError(t, json.Unmarshal(data, &records), "output must be a valid JSON array")
	return records
}

const solInput = `[
    {"id64": 10477373803, "name": "Sol", "coords": {"x": 0.0, "y": 0.0, "z": 0.0},
     "population": 22780919531, "allegiance": "Federation", "bodies": [{"name": "Earth"}]},
    {"name": "Nameless", "coords": {"x": 1.0, "y": 2.0, "z": 3.0}},
    {"id64": 3657265287659, "name": "Alpha Centauri",
     "coords": {"x": 3.03125, "y": -0.09375, "z": 3.15625}, "population": 85441}
]`

func TestExtract_AcceptsValidRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, solInput)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	stats, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Greater(t, stats.BytesRead, uint64(0))
	assert.Equal(t, stats.TotalBytes, stats.BytesRead)

	records := readOutput(t, output)
	require.Len(t, records, 2)

	// Input order preserved, extra keys dropped.
	assert.Equal(t, uint64(10477373803), records[0].ID64)
	assert.Equal(t, "Sol", records[0].Name)
	assert.Equal(t, record.Coords{X: 0, Y: 0, Z: 0}, records[0].Coords)
	assert.Equal(t, uint64(22780919531), records[0].Population)
	assert.Equal(t, "Alpha Centauri", records[1].Name)
}

func TestExtract_OutputIsPrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, solInput)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"id64\"")
}

func TestExtract_EmptyArrayProducesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[]`)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	stats, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Accepted)

	records := readOutput(t, output)
	assert.Empty(t, records)
}

func TestExtract_AllRejectedProducesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[{"name": "no id"}, {"id64": 1}]`)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	stats, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Accepted)
	assert.Equal(t, uint64(2), stats.Rejected)

	records := readOutput(t, output)
	assert.Empty(t, records)
}

func TestExtract_RefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[]`)
	output := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(output, []byte("precious"), 0644))

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(), input, output)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAlreadyExists))

	// Existing file untouched.
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(data))
}

func TestExtract_MissingInput(t *testing.T) {
	dir := t.TempDir()

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(),
		filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestExtract_MalformedTopLevel(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `{"not": "an array"}`)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(), input, output)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))
}

func TestExtract_MalformedMidStreamAborts(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[
    {"id64": 1, "name": "A", "coords": {"x": 1, "y": 2, "z": 3}, "population": 0},
    {"id64": 2, "name": "B", "coords": {"x": 1, "y": 2, "z"`)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(), input, output)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))

	var structured *errors.Error
	require.ErrorAs(t, err, &structured)
	assert.Contains(t, structured.Details, "byte_offset")
}

func TestExtract_ProgressCadence(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[
    {"id64": 1, "name": "A", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 2, "name": "B", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 3, "name": "C", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 4, "name": "D", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 5, "name": "E", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0}
]`)
	output := filepath.Join(dir, "output.json")

	cfg := testExtractConfig()
	cfg.ProgressEvery = 2

	type call struct{ bytesRead, totalBytes, items uint64 }
	var calls []call
	extractor := NewExtractor(cfg, func(bytesRead, totalBytes, items uint64) {
		calls = append(calls, call{bytesRead, totalBytes, items})
	})

	_, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)

	// Every 2 items plus the final call: items 2, 4, 5.
	require.Len(t, calls, 3)
	assert.Equal(t, uint64(2), calls[0].items)
	assert.Equal(t, uint64(4), calls[1].items)
	assert.Equal(t, uint64(5), calls[2].items)
	for _, c := range calls {
		assert.LessOrEqual(t, c.bytesRead, c.totalBytes)
	}
}

func TestExtract_PanickingProgressCallbackIsIsolated(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, `[
    {"id64": 1, "name": "A", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0},
    {"id64": 2, "name": "B", "coords": {"x": 0, "y": 0, "z": 0}, "population": 0}
]`)
	output := filepath.Join(dir, "output.json")

	cfg := testExtractConfig()
	cfg.ProgressEvery = 1
	extractor := NewExtractor(cfg, func(_, _, _ uint64) {
		panic("telemetry backend down")
	})

	stats, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Accepted)
}

func TestExtract_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, solInput)
	output := filepath.Join(dir, "output.json")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(ctx, input, output)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_RoundTripThroughValidate(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, solInput)
	output := filepath.Join(dir, "output.json")

	extractor := NewExtractor(testExtractConfig(), nil)
	_, err := extractor.Extract(context.Background(), input, output)
	require.NoError(t, err)

	// Re-extracting the compact output accepts every record unchanged.
	second := filepath.Join(dir, "second.json")
	stats, err := extractor.Extract(context.Background(), output, second)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(0), stats.Rejected)
	assert.Equal(t, readOutput(t, output), readOutput(t, second))
}
