package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/xmlsyntax/internal/cli"
	"github.com/yaklabco/xmlsyntax/pkg/config"
	"github.com/yaklabco/xmlsyntax/pkg/reporter"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// execute runs the root command with args plus an explicit, empty config
// file so no project or user configuration leaks into the test.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfgFile := filepath.Join(t.TempDir(), ".xmlsyntax.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("jobs: 2\n"), 0o644))

	cmd := cli.NewRootCommand(testInfo())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgFile, "--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func writeXML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIntegration_Check(t *testing.T) {
	t.Parallel()

	t.Run("malformed document fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeXML(t, dir, "good.xml", "<a/>")
		writeXML(t, dir, "bad.xml", "<root></toor>")

		out, err := execute(t, "", "check", dir)
		require.ErrorIs(t, err, cli.ErrIssuesFound)
		assert.Equal(t, cli.ExitParseErrors, cli.ExitCode(err))
		assert.Contains(t, out, "bad.xml:1:7")
		assert.Contains(t, out, "(XML0017 MismatchedEndTag)")
		assert.Contains(t, out, "1 issue (1 error) in 1 file")
	})

	t.Run("well-formed documents pass", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeXML(t, dir, "a.xml", "<?xml version=\"1.0\"?>\n<a>\n  <b x='1'/>\n</a>\n")
		writeXML(t, dir, "b.svg", "<svg/>")
		writeXML(t, dir, "notes.txt", "<not-checked")

		out, err := execute(t, "", "check", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "No issues found")
		assert.NotContains(t, out, "notes.txt")
	})

	t.Run("exclude skips files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
		writeXML(t, dir, "a.xml", "<a/>")
		writeXML(t, dir, filepath.Join("vendor", "bad.xml"), "<a>")

		_, err := execute(t, "", "check", "--exclude", "vendor/**", dir)
		require.NoError(t, err)
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeXML(t, dir, "bad.xml", "<root></toor>")

		out, err := execute(t, "", "check", "--format", "json", dir)
		require.ErrorIs(t, err, cli.ErrIssuesFound)

		var output reporter.JSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &output))
		assert.Equal(t, 1, output.Summary.TotalIssues)
		assert.Equal(t, map[string]int{"XML0017": 1}, output.Summary.ByCode)
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "", "check", "--format", "diff", t.TempDir())
		require.Error(t, err)
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	})
}

func TestIntegration_Parse(t *testing.T) {
	t.Parallel()

	t.Run("text tree", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<a/>")
		out, err := execute(t, "", "parse", path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Document [0..4)\n"), out)
		assert.Contains(t, out, `EndOfFileToken "" [4..4)`)
	})

	t.Run("text tree with diagnostics", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<root></toor>")
		out, err := execute(t, "", "parse", path)
		require.NoError(t, err)
		assert.Contains(t, out, "! XML0017")
		assert.Contains(t, out, "doc.xml (1 issue)")
		assert.Contains(t, out, "doc.xml:1:7")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<a />")
		out, err := execute(t, "", "parse", "--format", "json", "--trivia", path)
		require.NoError(t, err)

		var root map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &root))
		assert.Equal(t, "Document", root["kind"])
		assert.InDelta(t, 0, root["start"], 0)
		assert.InDelta(t, 5, root["end"], 0)
		assert.Contains(t, out, `"kind": "WhitespaceTrivia"`)
	})

	t.Run("yaml from stdin", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "<>", "parse", "--format", "yaml", "-")
		require.NoError(t, err)

		var root struct {
			Kind string `yaml:"kind"`
			End  int    `yaml:"end"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(out), &root))
		assert.Equal(t, "Document", root.Kind)
		assert.Equal(t, 2, root.End)
		assert.Contains(t, out, "missing: true")
		assert.Contains(t, out, "code: XML0013")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "gone.xml"))
		require.Error(t, err)
		assert.Equal(t, cli.ExitIOError, cli.ExitCode(err))
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "", "parse", "--format", "sarif", "-")
		require.Error(t, err)
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	})
}

func TestIntegration_Reparse(t *testing.T) {
	t.Parallel()

	t.Run("reports reuse and matches a full parse", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<root><a/><c>text</c></root>")
		out, err := execute(t, "", "reparse", path, "--edit", "6:4:<b/>")
		require.NoError(t, err)
		assert.Contains(t, out, "Edits:")
		assert.Regexp(t, `Full parse: +identical`, out)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<root><a/><c>text</c></root>", string(content), "file untouched without --write")
	})

	t.Run("write with quoted text", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<root><a/></root>")
		_, err := execute(t, "", "reparse", path, "--edit", `6:0:"\n  "`, "--edit", "10:0:\n", "--write")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<root>\n  <a/>\n</root>", string(content))
	})

	t.Run("tree", func(t *testing.T) {
		t.Parallel()

		path := writeXML(t, t.TempDir(), "doc.xml", "<a/>")
		out, err := execute(t, "", "reparse", path, "--edit", "1:1:b", "--tree")
		require.NoError(t, err)
		assert.Contains(t, out, `NameToken "b" [1..2)`)
	})

	tests := []struct {
		name  string
		edits []string
	}{
		{name: "no edits"},
		{name: "malformed edit", edits: []string{"--edit", "x:1:y"}},
		{name: "negative length", edits: []string{"--edit", "0:-1:y"}},
		{name: "overlapping edits", edits: []string{"--edit", "0:3:x", "--edit", "1:1:y"}},
		{name: "out of range", edits: []string{"--edit", "100:1:y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeXML(t, t.TempDir(), "doc.xml", "<a/>")
			_, err := execute(t, "", append([]string{"reparse", path}, tt.edits...)...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
		})
	}
}

func TestIntegration_Codes(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "", "codes")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(syntax.AllErrorIDs()))
		assert.Contains(t, out, "XML0017 MismatchedEndTag")
	})

	t.Run("json selection", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "", "codes", "--format", "json", "xml0016", "dtdnotsupported")
		require.NoError(t, err)

		var infos []map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "MissingEndTag", infos[0]["name"])
		assert.Equal(t, "error", infos[0]["severity"])
		assert.Equal(t, "DTDNotSupported", infos[1]["name"])
		assert.Equal(t, "warning", infos[1]["severity"])
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "", "codes", "XML9999")
		require.Error(t, err)
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	})
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yml")

	_, err := execute(t, "", "init", "--output", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# xmlsyntax configuration."))

	cfg, err := config.FromYAML(content)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DefaultCacheSize, cfg.Cache.Size)
	assert.True(t, cfg.Incremental.IsEnabled())

	_, err = execute(t, "", "init", "--output", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "", "init", "--output", path, "--force")
	require.NoError(t, err)
}
