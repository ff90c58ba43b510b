package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Soo0803/ternswipe-matcher/ai/mock"
	"github.com/Soo0803/ternswipe-matcher/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level defaults to info", func(t *testing.T) {
		var levelFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "log-level" {
				levelFlag = f
				break
			}
		}
		require.NotNil(t, levelFlag)
		assert.Equal(t, "info", levelFlag.Value)
		assert.Empty(t, levelFlag.EnvVars)
	})

	t.Run("all commands registered", func(t *testing.T) {
		for _, name := range []string{"import", "index", "rank", "explain", "assign"} {
			assert.NotNil(t, findCommand(t, app, name))
		}
	})

	t.Run("explain requires seeker", func(t *testing.T) {
		err := newApp().Run([]string{"matcher", "explain"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seeker")
	})

	t.Run("rank requires exactly one side", func(t *testing.T) {
		err := newApp().Run([]string{"matcher", "rank"})
		require.Error(t, err)

		err = newApp().Run([]string{"matcher", "rank", "--seeker", "s1", "--offer", "p1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one")
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := newApp().Run([]string{"matcher", "--log-level", "loud", "index"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("import requires a dataset", func(t *testing.T) {
		err := newApp().Run([]string{"matcher", "import"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataset path")
	})
}

// run executes the CLI against dbPath with the mock embedder and returns stdout.
func run(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(append([]string{"matcher", "--log-level", "error", "--db", dbPath}, args...)))
	return out.String()
}

func TestCommands(t *testing.T) {
	newProvider = mock.NewMockProvider
	t.Cleanup(func() { newProvider = nil })

	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "matcher.prom")
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("MATCHER_METRICS_FILE", metricsFile)
	dbPath := filepath.Join(dir, "db")

	out := run(t, dbPath, "import", "--index", "testdata/dataset.yaml")
	assert.Contains(t, out, "Imported 2 seekers and 3 offers")
	assert.Contains(t, out, "Embedded 5, skipped 0, failed 0")

	t.Run("index is incremental", func(t *testing.T) {
		out := run(t, dbPath, "index")
		assert.Contains(t, out, "Embedded 0, skipped 5, failed 0")
	})

	t.Run("rank offers", func(t *testing.T) {
		out := run(t, dbPath, "rank", "--seeker", "s1")
		assert.Contains(t, out, "rank\tid\tscore")
		assert.Contains(t, out, "1\tp1\t")
		assert.NotContains(t, out, "p3", "closed offers are never ranked")
	})

	t.Run("rank seekers", func(t *testing.T) {
		out := run(t, dbPath, "rank", "--offer", "p2", "--limit", "1")
		assert.Contains(t, out, "1\ts2\t")
		assert.NotContains(t, out, "2\ts1\t")
	})

	t.Run("unknown seeker", func(t *testing.T) {
		out := run(t, dbPath, "rank", "--seeker", "s9")
		assert.Contains(t, out, "No results: not_found")
	})

	t.Run("explain", func(t *testing.T) {
		out := run(t, dbPath, "explain", "--seeker", "s1", "--top", "1")
		assert.Contains(t, out, "1. p1 (")
	})

	t.Run("assign every seeker", func(t *testing.T) {
		out := run(t, dbPath, "assign")
		assert.Contains(t, out, "s1\tp1\t")
		assert.Contains(t, out, "s2\tp2\t")
		assert.Contains(t, out, "remaining\tp1\t0")
		assert.Contains(t, out, "assigned 2 of 2 seekers")
	})

	t.Run("assign explicit order", func(t *testing.T) {
		out := run(t, dbPath, "assign", "s9", "s1")
		assert.Contains(t, out, "s9\t-\tunassigned (not_found)")
		assert.Contains(t, out, "assigned 1 of 2 seekers")
	})

	t.Run("metrics textfile", func(t *testing.T) {
		data, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "ternswipe_matcher_assignment_runs_total")
	})
}
