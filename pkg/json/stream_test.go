package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingEncoder_WellFormedArray(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf)

	require.NoError(t, enc.Encode(map[string]int{"a": 1}))
	require.NoError(t, enc.Encode(map[string]int{"b": 2}))
	require.NoError(t, enc.Close())

	var out []map[string]int
	require.NoError(t, Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, []map[string]int{{"a": 1}, {"b": 2}}, out)
}

func TestStreamingEncoder_EmptyArray(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf)
	require.NoError(t, enc.Close())
	assert.Equal(t, "[]\n", buf.String())

	// Close is idempotent; Encode after Close fails.
	require.NoError(t, enc.Close())
	assert.Error(t, enc.Encode(1))
}

func TestStreamingEncoder_Pretty(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf)
	enc.SetPretty(true, "    ")

	require.NoError(t, enc.Encode(map[string]int{"a": 1}))
	require.NoError(t, enc.Close())

	assert.Contains(t, buf.String(), "\n    \"a\": 1")

	var out []map[string]int
	require.NoError(t, Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
}

func TestPooledDecoder_UsesNumber(t *testing.T) {
	dec := GetDecoder(bytes.NewReader([]byte(`{"v": 9007199254740993}`)))
	defer PutDecoder(dec)

	var m map[string]interface{}
	require.NoError(t, dec.Decode(&m))
	num, ok := m["v"].(interface{ Int64() (int64, error) })
	require.True(t, ok, "numbers must decode as json.Number, got %T", m["v"])

	i, err := num.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), i)
}
