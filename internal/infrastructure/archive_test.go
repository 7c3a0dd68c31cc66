package infrastructure

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateZip(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "one.mp3")
	b := filepath.Join(dir, "two.mp3")
	require.NoError(t, os.WriteFile(a, []byte("first"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("second"), 0644))

	archivePath := filepath.Join(dir, "album.zip")
	require.NoError(t, CreateZip(archivePath, []string{a, b}))

	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]uint64{}
	for _, f := range zr.File {
		names[f.Name] = f.UncompressedSize64
	}
	assert.Equal(t, uint64(5), names["one.mp3"])
	assert.Equal(t, uint64(6), names["two.mp3"])
}

func TestCreateZip_MissingInput(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "album.zip")

	err := CreateZip(archivePath, []string{filepath.Join(dir, "ghost.mp3")})
	assert.Error(t, err)
}
