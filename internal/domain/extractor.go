package domain

import "context"

// Tier is a requested quality tier. Each tier maps to a fixed format
// selector precedence list; the lists are declared here once and never
// re-derived.
type Tier string

const (
	Tier360   Tier = "360p"
	Tier720   Tier = "720p"
	TierMP3   Tier = "mp3"
	TierAudio Tier = "audio"
	TierBest  Tier = "best"
)

// Format selector precedence per tier: capped-resolution combined
// video+audio preferred, then a single capped stream, then best-effort.
var tierFormats = map[Tier]string{
	Tier360:   "bestvideo[height<=360][ext=mp4]+bestaudio[ext=m4a]/best[height<=360][ext=mp4]/best",
	Tier720:   "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]/best",
	TierMP3:   "bestaudio/best",
	TierAudio: "bestaudio/best",
	TierBest:  "best",
}

// FormatForTier returns the fixed format selector for a tier
func FormatForTier(tier Tier) string {
	if f, ok := tierFormats[tier]; ok {
		return f
	}
	return tierFormats[TierBest]
}

// ExtractOptions is the option set handed to the extraction library for
// one attempt. OutputTemplate is filled in by the job runner, which owns
// the working directory.
type ExtractOptions struct {
	Format         string // format selector precedence list
	OutputTemplate string // extractor output path template
	NoPlaylist     bool   // single-item-only flag
	ExtractAudio   bool   // post-process into an audio file
	AudioCodec     string // target codec for audio extraction
	AudioQuality   string // target bitrate for audio extraction
}

// Degraded returns the fallback option set used for the single retry
// after a transient failure: post-processing requirements are dropped
// and the selector falls back to best available.
func (o ExtractOptions) Degraded() ExtractOptions {
	d := o
	d.Format = FormatForTier(TierBest)
	d.ExtractAudio = false
	d.AudioCodec = ""
	d.AudioQuality = ""
	return d
}

// OptionsForTier builds the extraction option set for a single-item
// fetch at the given tier
func OptionsForTier(tier Tier) ExtractOptions {
	opts := ExtractOptions{
		Format:     FormatForTier(tier),
		NoPlaylist: true,
	}
	if tier == TierMP3 {
		opts.ExtractAudio = true
		opts.AudioCodec = "mp3"
		opts.AudioQuality = "192"
	}
	return opts
}

// Extractor is the boundary to the external media-extraction tool.
// Extract downloads the URL according to opts, placing files where the
// output template points, and must return promptly once ctx is done.
type Extractor interface {
	Extract(ctx context.Context, url string, opts ExtractOptions) error
}

// Transcoder is the boundary to the external audio transcoder, invoked
// as a last-resort normalization step when the extractor could not
// produce the requested container directly.
type Transcoder interface {
	Convert(ctx context.Context, inputFile, outputFile string) error
}
