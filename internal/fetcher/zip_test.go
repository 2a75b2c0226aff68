package fetcher

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZIP(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	require.NoError(t, os.WriteFile(path, buildZIP(t, files), 0o644))
	return path
}

func TestReadZIPEntry(t *testing.T) {
	archive := buildZIP(t, map[string]string{
		"US.txt":     "tab\tseparated\trows",
		"readme.txt": "attribution",
	})

	data, err := ReadZIPEntry(archive, "US.txt")
	require.NoError(t, err)
	assert.Equal(t, "tab\tseparated\trows", string(data))
}

func TestReadZIPEntry_NotFound(t *testing.T) {
	archive := buildZIP(t, map[string]string{"US.txt": "rows"})

	_, err := ReadZIPEntry(archive, "CA.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadZIPEntry_CorruptArchive(t *testing.T) {
	_, err := ReadZIPEntry([]byte("this is not a zip"), "US.txt")
	require.Error(t, err)
}

func TestExtractZIPFile(t *testing.T) {
	zipPath := writeZIP(t, map[string]string{
		"US.txt":     "rows",
		"readme.txt": "attribution",
	})

	destDir := t.TempDir()
	path, err := ExtractZIPFile(zipPath, "US.txt", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "US.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rows", string(data))
}

func TestExtractZIPFile_NotFound(t *testing.T) {
	zipPath := writeZIP(t, map[string]string{"US.txt": "rows"})

	_, err := ExtractZIPFile(zipPath, "missing.txt", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExtractZIPFile_ZipSlipPrevention(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "malicious.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	fw, err := w.Create("../../../etc/evil")
	require.NoError(t, err)
	_, err = fw.Write([]byte("bad"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	_, err = ExtractZIPFile(zipPath, "../../../etc/evil", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}
