package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/infrastructure"
)

// AlbumPackager fetches every item reachable from a collection URL into
// an isolated per-job directory and bundles the survivors into a zip
// archive. A deadline that truncates the collection still yields a
// bundle, marked partial, as long as at least one item completed; zero
// items is a hard failure. The working directory is removed on every
// exit path, the archive is placed outside it and belongs to the caller.
type AlbumPackager struct {
	extractor domain.Extractor
	config    *domain.DownloadConfig
	logger    *zap.Logger
}

// NewAlbumPackager creates a new album packager
func NewAlbumPackager(extractor domain.Extractor, config *domain.DownloadConfig, logger *zap.Logger) *AlbumPackager {
	return &AlbumPackager{
		extractor: extractor,
		config:    config,
		logger:    logger,
	}
}

// FetchAlbum downloads a collection and archives the completed items
func (p *AlbumPackager) FetchAlbum(ctx context.Context, url string, timeout time.Duration) (*domain.AlbumBundle, error) {
	workdir := filepath.Join(p.config.BaseDir, "album_"+uuid.New().String())
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return nil, domain.NewFetchError(domain.FailureDownstream, err)
	}

	opts := domain.ExtractOptions{
		Format:         domain.FormatForTier(domain.TierMP3),
		OutputTemplate: filepath.Join(workdir, "%(title)s.%(ext)s"),
		NoPlaylist:     false,
		ExtractAudio:   true,
		AudioCodec:     "mp3",
		AudioQuality:   "192",
	}

	if timeout <= 0 {
		timeout = p.config.AlbumTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := extractWithFallback(ctx, p.extractor, p.logger, url, opts)
		done <- err
	}()

	select {
	case err := <-done:
		defer os.RemoveAll(workdir)
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		items := p.collectItems(workdir)
		if len(items) == 0 {
			if ctx.Err() != nil {
				return nil, domain.NewFetchError(domain.FailureTimeout, ctx.Err())
			}
			return nil, domain.Failuref(domain.FailureEmptyCollection, "no items downloaded from %s", url)
		}
		partial := ctx.Err() != nil
		return p.bundle(workdir, items, partial)

	case <-ctx.Done():
		// deadline expired mid-download: archive whatever completed,
		// then scrub the working directory once the extractor returns
		items := p.collectItems(workdir)
		if len(items) == 0 {
			scrubAfter(func() { <-done }, workdir, p.config.CleanupGrace, p.logger)
			return nil, domain.NewFetchError(domain.FailureTimeout, ctx.Err())
		}
		bundle, err := p.bundle(workdir, items, true)
		scrubAfter(func() { <-done }, workdir, p.config.CleanupGrace, p.logger)
		return bundle, err
	}
}

// collectItems returns the completed item files inside the working
// directory: post-processed audio first, any other surviving media when
// the degraded fallback skipped post-processing
func (p *AlbumPackager) collectItems(workdir string) []string {
	if items, err := filepath.Glob(filepath.Join(workdir, "*.mp3")); err == nil && len(items) > 0 {
		return items
	}
	items, err := listNonEmptyFiles(workdir)
	if err != nil {
		return nil
	}
	return items
}

// bundle archives the items next to the working directory
func (p *AlbumPackager) bundle(workdir string, items []string, partial bool) (*domain.AlbumBundle, error) {
	name := filepath.Base(workdir) + ".zip"
	if partial {
		name = filepath.Base(workdir) + "_partial.zip"
	}
	archivePath := filepath.Join(p.config.BaseDir, name)

	if err := infrastructure.CreateZip(archivePath, items); err != nil {
		os.Remove(archivePath)
		return nil, domain.NewFetchError(domain.FailureDownstream, err)
	}

	p.logger.Info("Album bundled",
		zap.String("archive", archivePath),
		zap.Int("items", len(items)),
		zap.Bool("partial", partial))

	return &domain.AlbumBundle{
		ArchivePath: archivePath,
		ItemCount:   len(items),
		Partial:     partial,
	}, nil
}
