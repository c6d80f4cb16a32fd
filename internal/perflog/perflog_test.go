package perflog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Run("writes one JSON line per record", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, "run-1")
		require.NoError(t, err)

		require.NoError(t, w.Write(Record{
			RunID:    "run-1",
			Test:     "osu-bw",
			Params:   map[string]interface{}{"size": 1, "mode": "a"},
			Elapsed:  1.25,
			Passed:   true,
			Status:   "pass",
			ExitCode: 0,
			Results:  map[string]interface{}{"bandwidth": 24.5},
		}))
		require.NoError(t, w.Write(Record{
			RunID:   "run-1",
			Test:    "osu-bw",
			Passed:  false,
			Status:  "fail",
			Message: "mismatch",
		}))
		require.NoError(t, w.Close())

		f, err := os.Open(filepath.Join(dir, "perf-run-1.jsonl"))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		var records []Record
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			var rec Record
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
			records = append(records, rec)
		}
		require.Len(t, records, 2)

		assert.Equal(t, "osu-bw", records[0].Test)
		assert.True(t, records[0].Passed)
		assert.Equal(t, 1.25, records[0].Elapsed)
		assert.False(t, records[0].Time.IsZero())

		assert.Equal(t, "mismatch", records[1].Message)
		assert.Equal(t, "fail", records[1].Status)
	})

	t.Run("creates the output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		w, err := NewWriter(dir, "run-2")
		require.NoError(t, err)
		defer func() { _ = w.Close() }()

		assert.FileExists(t, w.Path())
	})

	t.Run("keeps an explicit record timestamp", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, "run-3")
		require.NoError(t, err)

		stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, w.Write(Record{Test: "t", Time: stamp}))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(w.Path())
		require.NoError(t, err)

		var rec Record
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, stamp, rec.Time)
	})

	t.Run("nil writer discards records", func(t *testing.T) {
		var w *Writer
		assert.NoError(t, w.Write(Record{Test: "x"}))
		assert.NoError(t, w.Close())
		assert.Empty(t, w.Path())
	})
}
