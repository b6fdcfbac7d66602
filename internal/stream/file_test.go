package stream

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeshell/internal/testutils"
)

func TestFileReader_ReadsLines(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/data/in.txt", "one\r\ntwo\n\nlast")

	r, err := OpenFileReader(fs, "/data/in.txt")
	require.NoError(t, err)
	defer r.Close()

	lines, err := ReadAll(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "", "last"}, lines)

	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileReader_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/empty.txt", "")

	r, err := OpenFileReader(fs, "/empty.txt")
	require.NoError(t, err)
	lines, err := ReadAll(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, lines)
	require.NoError(t, r.Close())
}

func TestFileReader_Missing(t *testing.T) {
	_, err := OpenFileReader(afero.NewMemMapFs(), "/missing.txt")
	assert.Error(t, err)
}

func TestFileReader_ClosesOnce(t *testing.T) {
	fs := testutils.NewTrackingFs(nil)
	testutils.WriteFile(t, fs, "/in.txt", "x\n")

	r, err := OpenFileReader(fs, "/in.txt")
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	files := fs.Files()
	require.Len(t, files, 2) // fixture write + reader
	assert.Equal(t, 1, files[1].Closes())

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileWriter_TruncateAndAppend(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/out.txt", "old\n")

	w, err := OpenFileWriter(fs, "/out.txt", false)
	require.NoError(t, err)
	require.NoError(t, w.Write(ctx, "new"))
	require.NoError(t, w.WriteLine(ctx, " line"))
	require.NoError(t, w.Close())
	assert.Equal(t, "new line\n", testutils.ReadFile(t, fs, "/out.txt"))

	w, err = OpenFileWriter(fs, "/out.txt", true)
	require.NoError(t, err)
	require.NoError(t, w.WriteLine(ctx, "more"))
	require.NoError(t, w.Close())
	assert.Equal(t, "new line\nmore\n", testutils.ReadFile(t, fs, "/out.txt"))
}

func TestFileWriter_CreatesFile(t *testing.T) {
	fs := testutils.NewMemFs(t, "/dir")
	w, err := OpenFileWriter(fs, "/dir/created.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "/dir/created.txt", w.Name())
	require.NoError(t, w.Close())

	exists, err := afero.Exists(fs, "/dir/created.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileWriter_ClosesOnce(t *testing.T) {
	ctx := context.Background()
	fs := testutils.NewTrackingFs(nil)

	w, err := OpenFileWriter(fs, "/out.txt", false)
	require.NoError(t, err)
	require.NoError(t, w.WriteLine(ctx, "x"))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	files := fs.Files()
	require.Len(t, files, 1)
	assert.Equal(t, 1, files[0].Closes())
	assert.ErrorIs(t, w.Write(ctx, "y"), ErrClosed)
	assert.ErrorIs(t, w.Flush(ctx), ErrClosed)
}

func TestFileWriter_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := OpenFileWriter(fs, "/out.txt", false)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.WriteLine(ctx, "x"), context.Canceled)
}

func TestIOWriterAndReader(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewIOWriter(&buf)
	require.NoError(t, w.Write(ctx, "a"))
	require.NoError(t, w.WriteLine(ctx, "b"))
	require.NoError(t, w.Close())
	assert.Equal(t, "ab\n", buf.String())

	r := NewIOReader(strings.NewReader("x\r\ny"))
	lines, err := ReadAll(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, lines)
}
