package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/runner"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func abs(dir string, names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = filepath.Join(dir, filepath.FromSlash(name))
	}
	return out
}

func TestIsXMLPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path  string
		extra []string
		want  bool
	}{
		{"doc.xml", nil, true},
		{"DOC.XML", nil, true},
		{"icon.svg", nil, true},
		{"style.xslt", nil, true},
		{"pom.xml", nil, true},
		{"Info.plist", nil, true},
		{"app.csproj", nil, true},
		{"main.ts", nil, false},
		{"readme.md", nil, false},
		{"notes.txt", nil, false},
		{"notes.txt", []string{".txt"}, true},
		{"Makefile", nil, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, runner.IsXMLPath(testCase.path, testCase.extra))
		})
	}
}

func TestIsXMLContent(t *testing.T) {
	t.Parallel()

	assert.True(t, runner.IsXMLContent([]byte("<a/>")))
	assert.True(t, runner.IsXMLContent([]byte("\ufeff\n  <?xml version='1.0'?><a/>")))
	assert.False(t, runner.IsXMLContent([]byte("plain text")))
	assert.False(t, runner.IsXMLContent([]byte{'<', 0, 0, 0, 1, 2}))
	assert.False(t, runner.IsXMLContent(nil))
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.xml":            "<a/>",
		"docs/b.svg":       "<svg/>",
		"docs/readme.md":   "# doc",
		"src/main.go":      "package main",
		".hidden/c.xml":    "<c/>",
		"docs/.d.xml":      "<d/>",
		"build/out/e.xml":  "<e/>",
		"config/pom.xml":   "<project/>",
		"config/notes.txt": "<notes/>",
	})

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, abs(dir, "a.xml", "build/out/e.xml", "config/pom.xml", "docs/b.svg"), files)
}

func TestDiscover_Globs(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.xml":           "<a/>",
		"build/out/e.xml": "<e/>",
		"docs/b.svg":      "<svg/>",
		"docs/f.xml":      "<f/>",
	})

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{"exclude directory", nil, []string{"build"}, []string{"a.xml", "docs/b.svg", "docs/f.xml"}},
		{"exclude subtree", nil, []string{"build/**"}, []string{"a.xml", "docs/b.svg", "docs/f.xml"}},
		{"exclude by base name", nil, []string{"*.svg"}, []string{"a.xml", "build/out/e.xml", "docs/f.xml"}},
		{"include anywhere", []string{"**/*.xml"}, nil, []string{"a.xml", "build/out/e.xml", "docs/f.xml"}},
		{"include directory", []string{"docs/*"}, nil, []string{"docs/b.svg", "docs/f.xml"}},
		{"both", []string{"*.xml"}, []string{"docs"}, []string{"a.xml", "build/out/e.xml"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			files, err := runner.Discover(context.Background(), runner.Options{
				WorkingDir:   dir,
				IncludeGlobs: testCase.include,
				ExcludeGlobs: testCase.exclude,
			})
			require.NoError(t, err)
			assert.Equal(t, abs(dir, testCase.want...), files)
		})
	}
}

func TestDiscover_ExplicitFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"data.txt":  "  <data/>",
		"plain.txt": "hello",
		"a.xml":     "<a/>",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Paths:      []string{"data.txt", "plain.txt", "a.xml", "./a.xml", "."},
	})
	require.NoError(t, err)
	assert.Equal(t, abs(dir, "a.xml", "data.txt"), files)

	_, err = runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Paths:      []string{"missing.xml"},
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_Extensions(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.xml":    "<a/>",
		"b.custom": "<b/>",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Extensions: []string{".custom"},
	})
	require.NoError(t, err)
	assert.Equal(t, abs(dir, "a.xml", "b.custom"), files)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	target := writeTree(t, map[string]string{"linked.xml": "<l/>"})
	dir := writeTree(t, map[string]string{"a.xml": "<a/>"})
	if err := os.Symlink(target, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, abs(dir, "a.xml"), files)

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, append(abs(dir, "a.xml"), filepath.Join(target, "linked.xml")), files)
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.xml": "<a/>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}
