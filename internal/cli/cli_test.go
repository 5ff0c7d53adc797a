package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/llm-prompts/internal/models"
)

const (
	packagePath = "deploy/espanso-hub/packages/llm-prompts/2.3.0/package.yml"
	csvPath     = "deploy/textexpander/llm-prompts.csv"
)

type harness struct {
	mem    afero.Fs
	fs     afero.Fs
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// newHarness lays out a project rooted at /work inside an in-memory fs
func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	h := &harness{mem: afero.NewMemMapFs()}
	h.fs = afero.NewBasePathFs(h.mem, "/work")

	defaults := map[string]string{
		"VERSION":                               "2.3.0\n",
		"src/espanso-hub/package.yml.tmpl":      "matches:\n{{- range .prompts}}\n  - trigger: \":{{.Trigger}}\"\n{{- end}}\n",
		"src/espanso-hub/_manifest.yml.tmpl":    "name: {{.name}}\nversion: {{.version}}\n",
		"src/espanso-hub/README.md":             "# readme\n",
		"src/textexpander/llm-prompts.csv.tmpl": "{{range .prompts}}{{csv .Trigger}},{{csv .Replace}}\n{{end}}",
		"prompts/greeting.yml":                  "trigger: \":hi\"\nreplace: Hello there\nlabel: Greeting\n",
	}
	for path, content := range defaults {
		if _, ok := files[path]; !ok {
			files[path] = content
		}
	}
	for path, content := range files {
		if content == "" {
			continue
		}
		require.NoError(t, afero.WriteFile(h.fs, path, []byte(content), 0644))
	}
	require.NoError(t, h.fs.MkdirAll("prompts", 0755))
	return h
}

func (h *harness) run(args ...string) error {
	return NewCLI(WithFS(h.fs), WithOutput(&h.stdout, &h.stderr)).Execute(args)
}

func (h *harness) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(h.fs, path)
	require.NoError(t, err)
	return ok
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestDeployBothTargetsByDefault(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.NoError(t, h.run())

	assert.Equal(t, "matches:\n  - trigger: \":hi\"\n", h.read(t, packagePath))
	assert.Equal(t, "name: llm-prompts\nversion: 2.3.0\n", h.read(t, "deploy/espanso-hub/packages/llm-prompts/2.3.0/_manifest.yml"))
	assert.Equal(t, "# readme\n", h.read(t, "deploy/espanso-hub/packages/llm-prompts/2.3.0/README.md"))
	assert.Equal(t, "hi,Hello there\n", h.read(t, csvPath))

	assert.Contains(t, h.stdout.String(), "Generated "+packagePath+" successfully!")
	assert.Contains(t, h.stdout.String(), "Generated "+csvPath+" successfully!")
}

func TestDeployEspansoOnly(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.NoError(t, h.run("--espanso"))
	assert.True(t, h.exists(t, packagePath))
	assert.False(t, h.exists(t, "deploy/textexpander"))
}

func TestDeployEspansoOnlyLeavesExistingCSV(t *testing.T) {
	h := newHarness(t, map[string]string{csvPath: "previous\n"})

	require.NoError(t, h.run("--espanso"))
	assert.Equal(t, "previous\n", h.read(t, csvPath))
}

func TestDeployTextExpanderOnly(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.NoError(t, h.run("--textexpander"))
	assert.True(t, h.exists(t, csvPath))
	assert.False(t, h.exists(t, "deploy/espanso-hub"))
}

func TestDeployMissingVersionUsesDefault(t *testing.T) {
	h := newHarness(t, map[string]string{})
	require.NoError(t, h.fs.Remove("VERSION"))

	require.NoError(t, h.run("--espanso"))
	assert.True(t, h.exists(t, "deploy/espanso-hub/packages/llm-prompts/0.1.0/package.yml"))
	assert.Contains(t, h.stderr.String(), "VERSION file not found")
}

func TestDeployEmptyPromptsDirectory(t *testing.T) {
	h := newHarness(t, map[string]string{})
	require.NoError(t, h.fs.Remove("prompts/greeting.yml"))

	require.NoError(t, h.run())
	assert.Equal(t, "matches:\n", h.read(t, packagePath))
	assert.Equal(t, "", h.read(t, csvPath))
}

func TestUnknownFlagIsRejected(t *testing.T) {
	h := newHarness(t, map[string]string{})

	err := h.run("--espanzo")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "invalid usage")
	assert.False(t, h.exists(t, "deploy"))
}

func TestUnknownFlagReportsUsageCode(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.Error(t, h.run("-v", "--espanzo"))
	assert.Contains(t, h.stderr.String(), "code=INVALID_COMMAND")
	assert.Contains(t, h.stderr.String(), "run 'llm-prompts --help' for usage")
}

func TestSubcommandFlagErrorNamesSubcommand(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.Error(t, h.run("-v", "list", "--fancy"))
	assert.Contains(t, h.stderr.String(), "command=llm-prompts list")
}

func TestTableRenderFailureIsNotUsageError(t *testing.T) {
	h := newHarness(t, map[string]string{})
	c := NewCLI(WithFS(h.fs), WithOutput(&h.stdout, &h.stderr))
	c.renderMarkdown = func(string) (string, error) {
		return "", fmt.Errorf("no terminal style")
	}

	require.Error(t, c.Execute([]string{"-v", "list"}))
	stderr := h.stderr.String()
	assert.Contains(t, stderr, "failed to render prompt table")
	assert.Contains(t, stderr, "code=INTERNAL_ERROR")
	assert.NotContains(t, stderr, "invalid usage")
}

func TestPositionalArgumentIsRejected(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.Error(t, h.run("espanso"))
	assert.False(t, h.exists(t, "deploy"))
}

func TestSelectionFlagsAreExclusive(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.Error(t, h.run("--espanso", "--textexpander"))
	assert.False(t, h.exists(t, "deploy"))
}

func TestParseErrorAbortsRun(t *testing.T) {
	h := newHarness(t, map[string]string{"prompts/broken.yml": "- not\n- a mapping\n"})

	err := h.run()
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "failed to parse prompts/broken.yml")
	assert.False(t, h.exists(t, "deploy"))
}

func TestDeployBlankVersionUsesDefault(t *testing.T) {
	h := newHarness(t, map[string]string{"VERSION": "\n"})

	require.NoError(t, h.run("--espanso"))
	assert.True(t, h.exists(t, "deploy/espanso-hub/packages/llm-prompts/0.1.0/package.yml"))
	assert.Contains(t, h.stderr.String(), "VERSION file is empty")
}

func TestConfigFileOverridesPaths(t *testing.T) {
	h := newHarness(t, map[string]string{
		"custom.yaml":      "prompts_dir: snippets\ndeploy_dir: dist\n",
		"snippets/bye.yml": "trigger: bye\nreplace: Goodbye\n",
	})

	require.NoError(t, h.run("--config", "/custom.yaml", "--textexpander"))
	assert.Equal(t, "bye,Goodbye\n", h.read(t, "dist/textexpander/llm-prompts.csv"))
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.NoError(t, h.run("version"))
	assert.Equal(t, "2.3.0\n", h.stdout.String())
}

func TestListPlain(t *testing.T) {
	h := newHarness(t, map[string]string{
		"prompts/summary.yml": "trigger: sum\nreplace: Summarize this | briefly\n",
	})

	require.NoError(t, h.run("list", "--plain"))
	out := h.stdout.String()
	assert.Contains(t, out, "# Prompts (2)")
	assert.Contains(t, out, "| `hi` | Greeting | greeting | Hello there |")
	assert.Contains(t, out, "| `sum` | sum | summary | Summarize this \\| briefly |")
	assert.False(t, h.exists(t, "deploy"))
}

func TestSearch(t *testing.T) {
	h := newHarness(t, map[string]string{
		"prompts/summary.yml": "trigger: sum\nreplace: Summarize\nlabel: Summary\n",
	})

	require.NoError(t, h.run("search", "summ", "--plain"))
	out := h.stdout.String()
	assert.Contains(t, out, "`sum`")
	assert.NotContains(t, out, "`hi`")

	h.stdout.Reset()
	require.NoError(t, h.run("search", "zzzz"))
	assert.Contains(t, h.stdout.String(), `No prompts match "zzzz"`)
}

func TestCheck(t *testing.T) {
	h := newHarness(t, map[string]string{})
	require.NoError(t, h.run("check"))
	assert.Contains(t, h.stdout.String(), "Checked 1 prompts: 0 errors, 0 warnings")

	h = newHarness(t, map[string]string{"prompts/empty.yml": "trigger: x\n"})
	require.Error(t, h.run("check"))
	assert.Contains(t, h.stdout.String(), "replace is required")
	assert.Contains(t, h.stderr.String(), "1 of 2 prompts failed validation")
}

func TestPromptTable(t *testing.T) {
	md := PromptTable(models.PromptSet{
		{"trigger": "hi", "replace": "Hello\nthere", "_filename": "greeting"},
	})
	assert.Equal(t, "# Prompts (1)\n\n| Trigger | Title | File | Description |\n|---|---|---|---|\n| `hi` | hi | greeting | Hello there |\n", md)
}

func TestHelpDescribesConfigurableOutputPaths(t *testing.T) {
	h := newHarness(t, map[string]string{})

	require.NoError(t, h.run("--help"))
	assert.Contains(t, h.stdout.String(), "<deploy_dir>/espanso-hub/packages/<espanso.package_name>/<VERSION>/")
	assert.False(t, h.exists(t, "deploy"))
}
