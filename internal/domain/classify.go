package domain

import (
	"regexp"
	"strings"
)

// Platform represents the source platform for fetch jobs
type Platform string

const (
	PlatformYouTube    Platform = "youtube"
	PlatformTikTok     Platform = "tiktok"
	PlatformInstagram  Platform = "instagram"
	PlatformPinterest  Platform = "pinterest"
	PlatformSoundCloud Platform = "soundcloud"
)

// Match is the classifier's verdict for a piece of inbound text
type Match struct {
	Platform   Platform
	Collection bool // URL enumerates multiple downloadable items
}

var platformPatterns = []struct {
	platform Platform
	re       *regexp.Regexp
}{
	{PlatformYouTube, regexp.MustCompile(`(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)},
	{PlatformTikTok, regexp.MustCompile(`(https?://)?(www\.|vm\.|vt\.)?tiktok\.com/`)},
	{PlatformInstagram, regexp.MustCompile(`(https?://)?(www\.)?(instagram\.com|instagr\.am)/(p|reel|reels|tv)/[A-Za-z0-9_-]+`)},
	{PlatformPinterest, regexp.MustCompile(`(https?://)?((www|\w\w)\.)?(pinterest\.\w+/pin/|pin\.it/)`)},
	{PlatformSoundCloud, regexp.MustCompile(`https?://(www\.)?soundcloud\.com/`)},
}

// collectionSegments are the path fragments that mark a multi-item
// source on the audio platforms. The test is a case-insensitive
// substring match and decides whether the user gets a choice prompt
// instead of a direct single-item fetch.
var collectionSegments = []string{"/sets/", "/playlists/", "/albums/"}

// Classify pattern-matches raw text against the known platform URL
// shapes. It is purely syntactic and performs no I/O. The second return
// is false when no platform matches.
func Classify(text string) (Match, bool) {
	text = strings.TrimSpace(text)
	for _, p := range platformPatterns {
		if p.re.MatchString(text) {
			return Match{Platform: p.platform, Collection: IsCollectionURL(text)}, true
		}
	}
	return Match{}, false
}

// IsCollectionURL reports whether the URL points at a set, playlist or
// album rather than a single item
func IsCollectionURL(url string) bool {
	lower := strings.ToLower(url)
	for _, seg := range collectionSegments {
		if strings.Contains(lower, seg) {
			return true
		}
	}
	return false
}
