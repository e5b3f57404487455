package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/isdmx/questbox/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseContextPairs(t *testing.T) {
	ctx := map[string]any{"keep": "me"}
	err := parseContextPairs([]string{
		"has_key=true",
		"steps=3",
		`room="hall"`,
		"name=Ada",
		"items=[1,2]",
		"empty=",
	}, ctx)
	require.NoError(t, err)

	assert.Equal(t, "me", ctx["keep"])
	assert.Equal(t, true, ctx["has_key"])
	assert.Equal(t, json.Number("3"), ctx["steps"])
	assert.Equal(t, "hall", ctx["room"])
	assert.Equal(t, "Ada", ctx["name"])
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, ctx["items"])
	assert.Equal(t, "", ctx["empty"])
}

func TestParseContextPairsInvalid(t *testing.T) {
	for _, pair := range []string{"novalue", "=3"} {
		t.Run(pair, func(t *testing.T) {
			err := parseContextPairs([]string{pair}, map[string]any{})
			assert.Error(t, err)
		})
	}
}

func TestLoadContext(t *testing.T) {
	ctx, err := loadContext("")
	require.NoError(t, err)
	assert.Empty(t, ctx)

	path := writeFile(t, "ctx.json", `{"gold": 10, "door": "north"}`)
	ctx, err = loadContext(path)
	require.NoError(t, err)
	assert.Equal(t, json.Number("10"), ctx["gold"])
	assert.Equal(t, "north", ctx["door"])

	_, err = loadContext(writeFile(t, "bad.json", `[1, 2]`))
	assert.Error(t, err)

	_, err = loadContext(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadSource(t *testing.T) {
	code, err := readSource(strings.NewReader("move_to(1)"), "-")
	require.NoError(t, err)
	assert.Equal(t, "move_to(1)", code)

	path := writeFile(t, "game.py", "collect_item('key')")
	code, err = readSource(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "collect_item('key')", code)

	_, err = readSource(nil, filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("valid program", func(t *testing.T) {
		out, err := execute(t, "", "check", writeFile(t, "ok.py", "move_to(1)\n"))
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, true, result["valid"])
	})

	t.Run("rejected program from stdin", func(t *testing.T) {
		out, err := execute(t, "import os\n", "check", "-")
		require.ErrorIs(t, err, errRejected)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, false, result["valid"])
		assert.Contains(t, result["error"], "Line 1")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "", "check")
		assert.Error(t, err)
	})
}

func TestRunCommandRejected(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "", "run", writeFile(t, "bad.py", "open('/etc/passwd')\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	var outcome map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, "rejected", outcome["kind"])
}

func TestRunCommandInvalidContext(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "", "run", writeFile(t, "ok.py", "move_to(1)\n"), "--context", "broken")
	assert.Error(t, err)
}

func TestRunCommandPython(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	t.Chdir(t.TempDir())

	code := "if has_key:\n    move_to(x)\nelse:\n    open_door()\n"
	out, err := execute(t, "", "run", writeFile(t, "game.py", code),
		"--context", "has_key=true", "--context", "x=4")
	require.NoError(t, err)

	var outcome map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, "success", outcome["kind"])
	result, ok := outcome["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "move", result["action"])
	assert.Equal(t, "4", result["location"])
}

func TestConfigFlag(t *testing.T) {
	path := writeFile(t, "questbox.yaml", "sandbox:\n  timeout_ms: 250\nlogging:\n  level: warn\n")

	c := &cli{configPath: path}
	require.NoError(t, c.load(nil, nil))
	assert.Equal(t, 250, c.cfg.Sandbox.TimeoutMS)
	assert.Equal(t, "warn", c.cfg.Logging.Level)

	c = &cli{configPath: path, logLevel: "debug"}
	require.NoError(t, c.load(nil, nil))
	assert.Equal(t, "debug", c.cfg.Logging.Level)
}

func TestEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	envFile := writeFile(t, ".env", "QUESTBOX_SANDBOX_TIMEOUT_MS=750\n")
	t.Setenv("QUESTBOX_SANDBOX_TIMEOUT_MS", "")
	require.NoError(t, os.Unsetenv("QUESTBOX_SANDBOX_TIMEOUT_MS"))

	c := &cli{envFile: envFile}
	require.NoError(t, c.load(nil, nil))
	assert.Equal(t, 750, c.cfg.Sandbox.TimeoutMS)

	c = &cli{envFile: filepath.Join(t.TempDir(), "absent.env")}
	assert.NoError(t, c.load(nil, nil))
}

func TestAppGraph(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, transport := range []string{"stdio", "http", "rest"} {
		t.Run(transport, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)
			cfg.Server.Transport = transport
			cfg.History.Enabled = false
			cfg.Logging.Level = "error"

			require.NoError(t, fx.ValidateApp(appOptions(cfg)))
		})
	}
}
