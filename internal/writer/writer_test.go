package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMapping(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestWriteToFileRoundTrip(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	out := filepath.Join(t.TempDir(), "results.json")
	entries := map[string]string{
		"receipt.png": "Total: 12.50",
		"blank.png":   "",
		"broken.png":  "[[OCR FAILED]]",
		"unicode.png": "café – ñandú",
	}

	require.NoError(t, jw.WriteToFile(entries, out))
	assert.Equal(t, entries, readMapping(t, out))
}

func TestWriteToFileIsFlatJSONObject(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	out := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, jw.WriteToFile(map[string]string{"a.png": "x <b>"}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var top map[string]any
	require.NoError(t, json.Unmarshal(data, &top))
	require.Len(t, top, 1)
	_, isString := top["a.png"].(string)
	assert.True(t, isString, "values are plain strings, no envelope")
	assert.Contains(t, string(data), "x <b>", "text is not HTML-escaped")
}

func TestMergeToFileFoldsIntoExisting(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	out := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, jw.WriteToFile(map[string]string{"a.png": "one"}, out))
	require.NoError(t, jw.MergeToFile(map[string]string{"b.png": "two"}, out))
	require.NoError(t, jw.MergeToFile(map[string]string{"a.png": "one-again"}, out))

	assert.Equal(t, map[string]string{
		"a.png": "one-again",
		"b.png": "two",
	}, readMapping(t, out))
}

func TestWriteToFileReplacesPreviousContents(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	out := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, jw.WriteToFile(map[string]string{"a.png": "one"}, out))
	require.NoError(t, jw.WriteToFile(map[string]string{"b.png": "two"}, out))

	assert.Equal(t, map[string]string{"b.png": "two"}, readMapping(t, out))
}

func TestWriteToFileCreatesParentDirectory(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	out := filepath.Join(t.TempDir(), "deep", "nested", "results.json")
	require.NoError(t, jw.WriteToFile(map[string]string{"a.png": "x"}, out))
	require.FileExists(t, out)
}

func TestWriteToFileSurfacesPersistenceError(t *testing.T) {
	jw := NewJSONWriter()
	defer jw.Close()

	dir := t.TempDir()
	// A directory at the output path makes os.Create fail.
	err := jw.WriteToFile(map[string]string{"a.png": "x"}, dir)
	require.Error(t, err)
}
