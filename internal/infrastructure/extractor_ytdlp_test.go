package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

func TestBuildArgs_SingleAudio(t *testing.T) {
	opts := domain.OptionsForTier(domain.TierMP3)
	opts.OutputTemplate = "/tmp/job_x/media.%(ext)s"

	args := buildArgs("https://soundcloud.com/a/t", opts)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f bestaudio/best")
	assert.Contains(t, joined, "-o /tmp/job_x/media.%(ext)s")
	assert.Contains(t, joined, "--no-playlist")
	assert.Contains(t, joined, "--extract-audio")
	assert.Contains(t, joined, "--audio-format mp3")
	assert.Contains(t, joined, "--audio-quality 192")
	assert.Equal(t, "https://soundcloud.com/a/t", args[len(args)-1])
}

func TestBuildArgs_Playlist(t *testing.T) {
	opts := domain.ExtractOptions{
		Format:         domain.FormatForTier(domain.TierMP3),
		OutputTemplate: "/tmp/album_x/%(title)s.%(ext)s",
		NoPlaylist:     false,
	}

	args := buildArgs("https://soundcloud.com/a/sets/lp", opts)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "--yes-playlist")
	assert.NotContains(t, joined, "--no-playlist")
	assert.NotContains(t, joined, "--extract-audio")
}

func TestBuildArgs_DegradedDropsPostprocessing(t *testing.T) {
	opts := domain.OptionsForTier(domain.TierMP3).Degraded()
	opts.OutputTemplate = "/tmp/job_x/media.%(ext)s"

	args := buildArgs("https://soundcloud.com/a/t", opts)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f best")
	assert.NotContains(t, joined, "--extract-audio")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "plain", shellQuote("plain"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'has space'", shellQuote("has space"))
	assert.Equal(t, `'it'"'"'s'`, shellQuote("it's"))
}

func TestCommandLine(t *testing.T) {
	line := commandLine("yt-dlp", "-o", "/tmp/out dir/%(title)s.%(ext)s", "https://x")
	assert.Equal(t, `yt-dlp -o '/tmp/out dir/%(title)s.%(ext)s' https://x`, line)
}

func TestTailOf(t *testing.T) {
	assert.Equal(t, "short", tailOf("  short \n", 100))
	long := strings.Repeat("a", 50) + "END"
	assert.Equal(t, "aEND", tailOf(long, 4))
}
