package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("returns defaults when no file exists", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, DefaultTimeout, cfg.Run.Timeout)
		assert.Equal(t, DefaultWorkDir, cfg.Run.WorkDir)
		assert.Equal(t, DefaultJobs, cfg.Run.Jobs)
		assert.Empty(t, cfg.Run.Output)
	})

	t.Run("reads unframe.yaml from the directory", func(t *testing.T) {
		dir := t.TempDir()
		content := "run:\n  timeout: 120\n  workdir: /scratch\n  jobs: 4\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "unframe.yaml"), []byte(content), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, 120, cfg.Run.Timeout)
		assert.Equal(t, "/scratch", cfg.Run.WorkDir)
		assert.Equal(t, 4, cfg.Run.Jobs)
		assert.Equal(t, 2*time.Minute, cfg.TaskTimeout())
	})

	t.Run("partial file keeps remaining defaults", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "unframe.yaml"), []byte("run:\n  timeout: 30\n"), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, 30, cfg.Run.Timeout)
		assert.Equal(t, DefaultWorkDir, cfg.Run.WorkDir)
	})
}

func TestLoadConfigFromPath(t *testing.T) {
	t.Run("loads an explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("run:\n  jobs: 8\n"), 0644))

		cfg, err := LoadConfigFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Run.Jobs)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestParseExtraArgs(t *testing.T) {
	t.Run("decodes a JSON object", func(t *testing.T) {
		args, err := ParseExtraArgs(`{"account": "proj123", "nodes": 2}`)
		require.NoError(t, err)
		assert.Equal(t, "proj123", args["account"])
		assert.Equal(t, float64(2), args["nodes"])
	})

	t.Run("empty string yields empty map", func(t *testing.T) {
		args, err := ParseExtraArgs("")
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("null yields empty map", func(t *testing.T) {
		args, err := ParseExtraArgs("null")
		require.NoError(t, err)
		assert.NotNil(t, args)
	})

	t.Run("array is rejected", func(t *testing.T) {
		_, err := ParseExtraArgs("[1, 2]")
		assert.Error(t, err)
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		_, err := ParseExtraArgs("{bad}")
		assert.Error(t, err)
	})
}
