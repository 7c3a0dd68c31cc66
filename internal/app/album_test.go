package app

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

func zipEntryNames(t *testing.T, archivePath string) []string {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestFetchAlbum_Success(t *testing.T) {
	config := testConfig(t)
	extractor := &stubExtractor{fns: []func(context.Context, string, domain.ExtractOptions) error{
		func(_ context.Context, _ string, opts domain.ExtractOptions) error {
			writeOutput(t, opts, "track-one.mp3", []byte("one"))
			writeOutput(t, opts, "track-two.mp3", []byte("two"))
			writeOutput(t, opts, "track-three.mp3", []byte("three"))
			return nil
		},
	}}
	packager := NewAlbumPackager(extractor, config, zap.NewNop())

	bundle, err := packager.FetchAlbum(context.Background(), "https://soundcloud.com/artist/sets/lp", 0)

	require.NoError(t, err)
	assert.False(t, bundle.Partial)
	assert.Equal(t, 3, bundle.ItemCount)
	assert.FileExists(t, bundle.ArchivePath)
	assert.ElementsMatch(t,
		[]string{"track-one.mp3", "track-two.mp3", "track-three.mp3"},
		zipEntryNames(t, bundle.ArchivePath))
	requireNoResidue(t, config.BaseDir)
}

func TestFetchAlbum_EmptyCollection(t *testing.T) {
	config := testConfig(t)
	// extraction reports success but yields zero files
	extractor := &stubExtractor{fns: []func(context.Context, string, domain.ExtractOptions) error{
		func(context.Context, string, domain.ExtractOptions) error { return nil },
	}}
	packager := NewAlbumPackager(extractor, config, zap.NewNop())

	_, err := packager.FetchAlbum(context.Background(), "https://soundcloud.com/artist/sets/lp", 0)

	require.Error(t, err)
	assert.Equal(t, domain.FailureEmptyCollection, domain.KindOf(err))

	// no archive is produced for a total failure
	archives, globErr := filepath.Glob(filepath.Join(config.BaseDir, "*.zip"))
	require.NoError(t, globErr)
	assert.Empty(t, archives)
	requireNoResidue(t, config.BaseDir)
}

func TestFetchAlbum_PartialOnTimeout(t *testing.T) {
	config := testConfig(t)
	extractor := &stubExtractor{fns: []func(context.Context, string, domain.ExtractOptions) error{
		func(ctx context.Context, _ string, opts domain.ExtractOptions) error {
			// two items complete, then the deadline cuts the job short
			writeOutput(t, opts, "track-one.mp3", []byte("one"))
			writeOutput(t, opts, "track-two.mp3", []byte("two"))
			<-ctx.Done()
			return ctx.Err()
		},
	}}
	packager := NewAlbumPackager(extractor, config, zap.NewNop())

	bundle, err := packager.FetchAlbum(context.Background(), "https://soundcloud.com/artist/sets/lp", 100*time.Millisecond)

	require.NoError(t, err)
	assert.True(t, bundle.Partial)
	assert.Equal(t, 2, bundle.ItemCount)
	assert.Contains(t, bundle.ArchivePath, "_partial.zip")
	assert.ElementsMatch(t,
		[]string{"track-one.mp3", "track-two.mp3"},
		zipEntryNames(t, bundle.ArchivePath))

	// the working directory no longer exists
	dirs, globErr := filepath.Glob(filepath.Join(config.BaseDir, "album_*"))
	require.NoError(t, globErr)
	for _, d := range dirs {
		fi, statErr := os.Stat(d)
		if statErr == nil {
			assert.False(t, fi.IsDir(), "residual working directory: %s", d)
		}
	}
}

func TestFetchAlbum_TimeoutWithNothingDownloaded(t *testing.T) {
	config := testConfig(t)
	extractor := &stubExtractor{fns: []func(context.Context, string, domain.ExtractOptions) error{
		func(ctx context.Context, _ string, _ domain.ExtractOptions) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}
	packager := NewAlbumPackager(extractor, config, zap.NewNop())

	_, err := packager.FetchAlbum(context.Background(), "https://soundcloud.com/artist/sets/lp", 50*time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, domain.FailureTimeout, domain.KindOf(err))
	requireNoResidue(t, config.BaseDir)
}

func TestFetchAlbum_DownstreamFailure(t *testing.T) {
	config := testConfig(t)
	fail := func(context.Context, string, domain.ExtractOptions) error {
		return errors.New("ERROR: This playlist is private")
	}
	extractor := &stubExtractor{fns: []func(context.Context, string, domain.ExtractOptions) error{fail}}
	packager := NewAlbumPackager(extractor, config, zap.NewNop())

	_, err := packager.FetchAlbum(context.Background(), "https://soundcloud.com/artist/sets/lp", 0)

	require.Error(t, err)
	assert.Equal(t, domain.FailureDownstream, domain.KindOf(err))
	requireNoResidue(t, config.BaseDir)
}
