package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// FFmpegTranscoder implements domain.Transcoder by shelling out to
// ffmpeg. It is the last-resort normalization step when the extractor
// could not produce the requested container directly.
type FFmpegTranscoder struct {
	binary string
	logger *zap.Logger
}

// NewFFmpegTranscoder creates a new ffmpeg backed transcoder
func NewFFmpegTranscoder(binary string, logger *zap.Logger) *FFmpegTranscoder {
	return &FFmpegTranscoder{binary: binary, logger: logger}
}

// Convert transcodes inputFile into an mp3 at outputFile
func (t *FFmpegTranscoder) Convert(ctx context.Context, inputFile, outputFile string) error {
	cmd := exec.CommandContext(ctx, t.binary,
		"-i", inputFile,
		"-codec:a", "libmp3lame",
		"-qscale:a", "2",
		outputFile,
		"-y",
	)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	t.logger.Debug("Transcoding", zap.String("input", inputFile), zap.String("output", outputFile))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tailOf(output.String(), stderrTailLimit))
	}
	return nil
}
