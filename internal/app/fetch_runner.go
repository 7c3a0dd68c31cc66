package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

// Ordered extension probes used to locate the extractor's output before
// falling back to a directory scan. The order matters: the post-processed
// container comes first, then the raw containers the extractor falls
// back to when post-processing is dropped.
var (
	audioProbeExts = []string{"mp3", "m4a", "webm"}
	videoProbeExts = []string{"mp4", "webm", "mkv", "jpg", "jpeg", "png"}
)

// FetchRequest describes one single-item fetch job
type FetchRequest struct {
	URL     string
	Options domain.ExtractOptions
	Timeout time.Duration

	// NormalizeToMP3 converts a non-mp3 audio result with the external
	// transcoder as a last resort
	NormalizeToMP3 bool

	// MultiItem means the URL may yield several files (e.g. a carousel
	// post); output is located by directory scan instead of stem probe
	MultiItem bool
}

// FetchRunner executes one extraction operation under a wall-clock
// deadline, with a single degraded-options retry on transient failures.
// It owns the job's working directory and guarantees it is removed on
// every exit path; on success the returned files have been moved out of
// the working area and belong to the caller.
type FetchRunner struct {
	extractor  domain.Extractor
	transcoder domain.Transcoder
	config     *domain.DownloadConfig
	logger     *zap.Logger
}

// NewFetchRunner creates a new fetch runner
func NewFetchRunner(extractor domain.Extractor, transcoder domain.Transcoder, config *domain.DownloadConfig, logger *zap.Logger) *FetchRunner {
	return &FetchRunner{
		extractor:  extractor,
		transcoder: transcoder,
		config:     config,
		logger:     logger,
	}
}

// Fetch downloads a single item. The extraction work runs on its own
// goroutine so the caller only blocks on the bounded wait, never on the
// subprocess itself.
func (r *FetchRunner) Fetch(ctx context.Context, req FetchRequest) (*domain.FetchResult, error) {
	workdir := filepath.Join(r.config.BaseDir, "job_"+uuid.New().String())
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	const stem = "media"
	opts := req.Options
	if req.MultiItem {
		opts.OutputTemplate = filepath.Join(workdir, "%(id)s.%(ext)s")
	} else {
		opts.OutputTemplate = filepath.Join(workdir, stem+".%(ext)s")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.TrackTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type attemptResult struct {
		fallbackUsed bool
		err          error
	}
	done := make(chan attemptResult, 1)
	go func() {
		fallback, err := extractWithFallback(ctx, r.extractor, r.logger, req.URL, opts)
		done <- attemptResult{fallbackUsed: fallback, err: err}
	}()

	var fallbackUsed bool
	select {
	case res := <-done:
		fallbackUsed = res.fallbackUsed
		if res.err != nil {
			os.RemoveAll(workdir)
			if ctx.Err() != nil {
				return nil, domain.NewFetchError(domain.FailureTimeout, ctx.Err())
			}
			return nil, res.err
		}
	case <-ctx.Done():
		scrubAfter(func() { <-done }, workdir, r.config.CleanupGrace, r.logger)
		return nil, domain.NewFetchError(domain.FailureTimeout, ctx.Err())
	}

	files, err := r.locateOutput(workdir, stem, req)
	if err != nil {
		os.RemoveAll(workdir)
		return nil, err
	}

	if req.NormalizeToMP3 {
		if files, err = r.normalizeToMP3(ctx, files); err != nil {
			os.RemoveAll(workdir)
			return nil, err
		}
	}

	moved, err := r.moveOut(workdir, files)
	if err != nil {
		os.RemoveAll(workdir)
		return nil, fmt.Errorf("failed to move output files: %w", err)
	}
	os.RemoveAll(workdir)

	return &domain.FetchResult{
		Files:        moved,
		Kind:         domain.InferMediaKind(moved[0]),
		FallbackUsed: fallbackUsed,
	}, nil
}

// extractWithFallback is the two-attempt state machine: the requested
// option set first, then at most one retry with the degraded set when
// the failure classifies as transient. A second failure is surfaced as
// downstream, never retried again.
func extractWithFallback(ctx context.Context, extractor domain.Extractor, logger *zap.Logger, url string, opts domain.ExtractOptions) (bool, error) {
	err := extractor.Extract(ctx, url, opts)
	if err == nil {
		return false, nil
	}
	if ctx.Err() != nil {
		return false, err
	}
	if domain.ClassifyExtractorError(err) != domain.FailureTransient {
		return false, domain.NewFetchError(domain.FailureDownstream, err)
	}

	logger.Warn("Transient extraction failure, retrying with degraded options",
		zap.String("url", url),
		zap.Error(err))

	if err := extractor.Extract(ctx, url, opts.Degraded()); err != nil {
		if ctx.Err() != nil {
			return true, err
		}
		return true, domain.NewFetchError(domain.FailureDownstream, err)
	}
	return true, nil
}

// locateOutput finds the files the extractor produced. For single-item
// jobs the expected extensions are probed in order against the job stem
// before scanning the directory; an empty result is a missing-output
// failure even though extraction reported success.
func (r *FetchRunner) locateOutput(workdir, stem string, req FetchRequest) ([]string, error) {
	if req.MultiItem {
		files, err := listNonEmptyFiles(workdir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan working directory: %w", err)
		}
		if len(files) == 0 {
			return nil, domain.Failuref(domain.FailureMissingOutput, "extraction succeeded but produced no files in %s", workdir)
		}
		return files, nil
	}

	probes := videoProbeExts
	if req.Options.ExtractAudio || req.NormalizeToMP3 {
		probes = audioProbeExts
	}
	for _, ext := range probes {
		candidate := filepath.Join(workdir, stem+"."+ext)
		if isNonEmptyFile(candidate) {
			return []string{candidate}, nil
		}
	}

	// fall back to a scan by filename stem
	matches, err := filepath.Glob(filepath.Join(workdir, stem+".*"))
	if err == nil {
		for _, m := range matches {
			if isNonEmptyFile(m) {
				return []string{m}, nil
			}
		}
	}
	return nil, domain.Failuref(domain.FailureMissingOutput, "no output file matching stem %q in %s", stem, workdir)
}

// normalizeToMP3 converts the primary file to mp3 when the extractor
// returned a different container
func (r *FetchRunner) normalizeToMP3(ctx context.Context, files []string) ([]string, error) {
	path := files[0]
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".mp3") {
		return files, nil
	}
	target := strings.TrimSuffix(path, ext) + ".mp3"
	if err := r.transcoder.Convert(ctx, path, target); err != nil {
		return nil, domain.NewFetchError(domain.FailureDownstream, fmt.Errorf("transcode to mp3 failed: %w", err))
	}
	os.Remove(path)
	files[0] = target
	return files, nil
}

// moveOut relocates the output files from the working directory into the
// base directory, prefixed with the working directory's unique name so
// concurrent jobs cannot collide
func (r *FetchRunner) moveOut(workdir string, files []string) ([]string, error) {
	prefix := filepath.Base(workdir)
	moved := make([]string, 0, len(files))
	for _, f := range files {
		dest := filepath.Join(r.config.BaseDir, prefix+"_"+filepath.Base(f))
		if err := os.Rename(f, dest); err != nil {
			return nil, err
		}
		moved = append(moved, dest)
	}
	return moved, nil
}

// scrubAfter removes the working directory once the in-flight extraction
// returns. The subprocess is killed with its context, so this normally
// completes within the grace window; an extractor that cannot be killed
// mid-operation gets its results discarded as soon as control returns.
func scrubAfter(wait func(), workdir string, grace time.Duration, logger *zap.Logger) {
	finished := make(chan struct{})
	go func() {
		wait()
		os.RemoveAll(workdir)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(grace):
		logger.Warn("Extraction still running after deadline, working directory will be scrubbed when it returns",
			zap.String("workdir", workdir))
	}
}

func isNonEmptyFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// listNonEmptyFiles returns the regular, non-empty files directly inside
// dir, sorted by name
func listNonEmptyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if isNonEmptyFile(path) {
			files = append(files, path)
		}
	}
	return files, nil
}
