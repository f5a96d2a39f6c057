package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/fsutil"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadSource(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "<a>\r\n</a>")
	src, err := fsutil.ReadSource(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, src.Path)
	assert.Equal(t, "<a>\r\n</a>", src.Text)
	assert.Equal(t, int64(9), src.Size)
	assert.Equal(t, os.FileMode(0o600), src.Mode.Perm())
	assert.NotEqual(t, [32]byte{}, src.Hash)
	assert.Equal(t, src.Text, text.String(src.Buffer()))
}

func TestReadSource_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := fsutil.ReadSource(ctx, filepath.Join(t.TempDir(), "missing.xml"))
	require.ErrorIs(t, err, fsutil.ErrNotFound)

	_, err = fsutil.ReadSource(ctx, t.TempDir())
	require.ErrorIs(t, err, fsutil.ErrIsDirectory)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = fsutil.ReadSource(cancelled, writeFile(t, "<a/>"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSource_Changed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, "<a/>")
	src, err := fsutil.ReadSource(ctx, path)
	require.NoError(t, err)

	changed, err := src.Changed(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	// Same size, same modification time, different bytes.
	require.NoError(t, os.WriteFile(path, []byte("<b/>"), 0o600))
	require.NoError(t, os.Chtimes(path, src.ModTime, src.ModTime))
	changed, err = src.Changed(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, os.Remove(path))
	changed, err = src.Changed(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSource_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes with backup", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "<a/>")
		src, err := fsutil.ReadSource(ctx, path)
		require.NoError(t, err)

		written, err := src.Save(ctx, "<a>x</a>", fsutil.SaveOptions{Backup: true})
		require.NoError(t, err)
		assert.True(t, written)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<a>x</a>", string(got))

		backup, err := os.ReadFile(path + fsutil.BackupSuffix)
		require.NoError(t, err)
		assert.Equal(t, "<a/>", string(backup))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("unchanged text is not written", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "<a/>")
		src, err := fsutil.ReadSource(ctx, path)
		require.NoError(t, err)

		written, err := src.Save(ctx, "<a/>", fsutil.SaveOptions{Backup: true})
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoFileExists(t, path+fsutil.BackupSuffix)
	})

	t.Run("refuses a file changed on disk", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "<a/>")
		src, err := fsutil.ReadSource(ctx, path)
		require.NoError(t, err)

		later := src.ModTime.Add(time.Second)
		require.NoError(t, os.WriteFile(path, []byte("<other/>"), 0o600))
		require.NoError(t, os.Chtimes(path, later, later))

		_, err = src.Save(ctx, "<b/>", fsutil.SaveOptions{})
		require.ErrorIs(t, err, fsutil.ErrModified)

		written, err := src.Save(ctx, "<b/>", fsutil.SaveOptions{Force: true})
		require.NoError(t, err)
		assert.True(t, written)
	})
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "new.xml")
	require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("<n/>"), 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fsutil.DefaultFileMode, info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")

	err = fsutil.WriteAtomic(context.Background(), filepath.Join(dir, "missing", "x.xml"), nil, 0)
	require.Error(t, err)
}
