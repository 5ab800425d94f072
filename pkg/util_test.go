package pkg

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPathExists(t *testing.T) {
	exists, err := PathExists("/invalid/path/some-dir", true)
	assert.NoError(t, err)
	assert.False(t, exists)
	exists, err = PathExists("/invalid/path/some-file", false)
	assert.NoError(t, err)
	assert.False(t, exists)

	tempDir := t.TempDir()
	exists, err = PathExists(tempDir, true)
	assert.NoError(t, err)
	assert.True(t, exists)
	exists, err = PathExists(tempDir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
	assert.False(t, exists)

	filePath := filepath.Join(tempDir, "index.html")
	require.NoError(t, os.WriteFile(filePath, []byte("<html></html>"), 0o644))
	exists, err = PathExists(filePath, false)
	assert.NoError(t, err)
	assert.True(t, exists)
	exists, err = PathExists(filePath, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
	assert.False(t, exists)
}

func TestCompress(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "post", "como-utilizar-hooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("home"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "post", "como-utilizar-hooks", "index.html"), []byte("post"), 0o644))

	buf := &bytes.Buffer{}
	require.NoError(t, Compress(src, buf))

	gzipReader, err := gzip.NewReader(buf)
	require.NoError(t, err)
	tarReader := tar.NewReader(gzipReader)

	files := map[string]string{}
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tarReader)
		require.NoError(t, err)
		files[header.Name] = string(content)
	}

	assert.Equal(t, map[string]string{
		"index.html":                          "home",
		"post/como-utilizar-hooks/index.html": "post",
	}, files)
}

func TestCompress_MissingSource(t *testing.T) {
	err := Compress(filepath.Join(t.TempDir(), "missing"), &bytes.Buffer{})
	assert.Error(t, err)
}
