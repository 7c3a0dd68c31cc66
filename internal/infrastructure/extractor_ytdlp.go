package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

// stderrTailLimit bounds how much extractor output is carried inside the
// returned error. The tail is what matters: the transient-failure
// classification matches against it.
const stderrTailLimit = 2048

// YTDLPExtractor implements domain.Extractor by shelling out to the
// yt-dlp binary. The subprocess inherits the context, so a deadline
// kills it rather than leaving it running.
type YTDLPExtractor struct {
	binary  string
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(binary, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	return &YTDLPExtractor{
		binary:  binary,
		logsDir: logsDir,
		logger:  logger,
	}
}

// Extract downloads the URL according to opts. Tool output goes to the
// per-day download log; the stderr tail is preserved in the returned
// error so callers can classify the failure.
func (e *YTDLPExtractor) Extract(ctx context.Context, url string, opts domain.ExtractOptions) error {
	args := buildArgs(url, opts)

	downloadLog, err := e.openLogFile()
	if err != nil {
		return fmt.Errorf("failed to open download log: %w", err)
	}
	defer downloadLog.Close()

	cmdLine := commandLine(e.binary, args...)
	writeLogHeader(downloadLog, cmdLine)

	// Note: exec passes args directly to the process; the escaping in
	// cmdLine is for log display only
	var stderrTail bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = downloadLog
	cmd.Stderr = io.MultiWriter(downloadLog, &stderrTail)

	runErr := cmd.Run()
	if runErr != nil {
		if ctx.Err() != nil {
			writeLogFooter(downloadLog, false, "killed by deadline")
			return ctx.Err()
		}
		tail := tailOf(stderrTail.String(), stderrTailLimit)
		writeLogFooter(downloadLog, false, tail)
		return fmt.Errorf("yt-dlp failed: %w: %s", runErr, tail)
	}

	writeLogFooter(downloadLog, true, "done")
	return nil
}

// buildArgs translates the option set into a yt-dlp invocation
func buildArgs(url string, opts domain.ExtractOptions) []string {
	args := []string{
		"--no-progress",
		"--restrict-filenames",
		"--retries", "3",
		"--fragment-retries", "3",
		"--socket-timeout", "30",
		"-o", opts.OutputTemplate,
	}
	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}
	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	} else {
		args = append(args, "--yes-playlist")
	}
	if opts.ExtractAudio {
		args = append(args, "--extract-audio")
		if opts.AudioCodec != "" {
			args = append(args, "--audio-format", opts.AudioCodec)
		}
		if opts.AudioQuality != "" {
			args = append(args, "--audio-quality", opts.AudioQuality)
		}
	}
	return append(args, url)
}

// openLogFile opens the download log file for today. All tool output,
// stdout and stderr, goes to this single file.
func (e *YTDLPExtractor) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	dateStr := time.Now().Format("20060102")
	path := filepath.Join(e.logsDir, "download-"+dateStr+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func writeLogHeader(file *os.File, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	file.WriteString(fmt.Sprintf("\n=== [%s] ===\n$ %s\n", timestamp, cmdLine))
}

func writeLogFooter(file *os.File, success bool, message string) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	file.WriteString(fmt.Sprintf("[%s] %s: %s\n=== END ===\n\n", time.Now().Format("2006-01-02 15:04:05"), status, message))
}

func tailOf(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

// commandLine renders a shell-safe command line for log display
func commandLine(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(binary))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"$`\\!*?[](){}|;<>&~#%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
