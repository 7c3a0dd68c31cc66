package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "downloads", config.Download.BaseDir)
	assert.Equal(t, "yt-dlp", config.Download.YTDLPBinary)
	assert.Equal(t, "ffmpeg", config.Download.FFmpegBinary)
	assert.Equal(t, 3*time.Minute, config.Download.TrackTimeout)
	assert.Equal(t, 30*time.Minute, config.Download.AlbumTimeout)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.False(t, config.Server.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestFormatForTier(t *testing.T) {
	assert.Equal(t, "bestaudio/best", FormatForTier(TierMP3))
	assert.Equal(t, "best", FormatForTier(TierBest))
	assert.Contains(t, FormatForTier(Tier360), "height<=360")
	assert.Contains(t, FormatForTier(Tier720), "height<=720")
	// unknown tiers fall back to best
	assert.Equal(t, "best", FormatForTier(Tier("4k")))
}

func TestExtractOptions_Degraded(t *testing.T) {
	opts := OptionsForTier(TierMP3)
	assert.True(t, opts.ExtractAudio)
	assert.Equal(t, "mp3", opts.AudioCodec)

	degraded := opts.Degraded()
	assert.Equal(t, "best", degraded.Format)
	assert.False(t, degraded.ExtractAudio)
	assert.Empty(t, degraded.AudioCodec)
	// the original is untouched
	assert.True(t, opts.ExtractAudio)
}
