package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<p>{{ user.name }}</p><button @click="inc">{{ count }}</button><span v-foo="x">s</span>`

const testConfig = `
template: page.html
data: data.yaml
methods:
  inc:
    - increment: count
log:
  level: error
`

// writeProject writes a template, data file and config into a temp dir and
// returns the config path.
func writeProject(t *testing.T, template, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"page.html":  template,
		"data.yaml":  "user:\n  name: ann\ncount: 1\n",
		"vbind.yaml": cfg,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return filepath.Join(dir, "vbind.yaml")
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&errOut)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRender(t *testing.T) {
	cfg := writeProject(t, testTemplate, testConfig)

	stdout, _, err := execute(t, "--config", cfg, "render")
	require.NoError(t, err)
	assert.Equal(t, "<p>ann</p><button>1</button><span>s</span>\n", stdout)
}

func TestRenderToFile(t *testing.T) {
	cfg := writeProject(t, testTemplate, testConfig)
	out := filepath.Join(t.TempDir(), "index.html")

	_, stderr, err := execute(t, "--config", cfg, "render", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<p>ann</p><button>1</button><span>s</span>", string(data))
}

func TestRenderTemplateFlagOverridesConfig(t *testing.T) {
	cfg := writeProject(t, testTemplate, testConfig)
	other := filepath.Join(t.TempDir(), "other.html")
	require.NoError(t, os.WriteFile(other, []byte(`<i v-text="user.name"></i>`), 0o644))

	stdout, _, err := execute(t, "--config", cfg, "--template", other, "render")
	require.NoError(t, err)
	assert.Equal(t, "<i>ann</i>\n", stdout)
}

func TestCheck(t *testing.T) {
	cfg := writeProject(t, testTemplate, testConfig)

	stdout, _, err := execute(t, "--config", cfg, "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "compiled")
	assert.Contains(t, stdout, "watchers:       2")
	assert.Contains(t, stdout, "listeners:      1")
	assert.Contains(t, stdout, "interpolations: 2")
	assert.Contains(t, stdout, "unknown directive v-foo was removed")
}

func TestCheckReportsMissingMethod(t *testing.T) {
	cfg := writeProject(t, `<button @click="save">s</button>`, testConfig)

	_, stderr, err := execute(t, "--config", cfg, "check")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "E020")
	assert.Contains(t, stderr, "Missing method")
}

func TestCheckReportsPathError(t *testing.T) {
	cfg := writeProject(t, `<p>{{ count.deep.er }}</p>`, testConfig)

	_, stderr, err := execute(t, "--config", cfg, "check")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "E001")
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeProject(t, testTemplate, "log:\n  level: loud\ntemplate: page.html\n")

	_, _, err := execute(t, "--config", cfg, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E060")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev", strings.TrimSpace(stdout))

	stdout, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Go version:")
}
