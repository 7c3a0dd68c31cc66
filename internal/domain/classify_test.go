package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Platforms(t *testing.T) {
	tests := []struct {
		text     string
		platform Platform
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", PlatformYouTube},
		{"youtube.com/watch?v=abc", PlatformYouTube},
		{"https://www.tiktok.com/@user/video/123", PlatformTikTok},
		{"https://vm.tiktok.com/ZMabcdef/", PlatformTikTok},
		{"https://www.instagram.com/reel/Cabc123_-/", PlatformInstagram},
		{"https://instagr.am/p/Cabc123/", PlatformInstagram},
		{"https://www.pinterest.com/pin/123456/", PlatformPinterest},
		{"https://pin.it/abc123", PlatformPinterest},
		{"https://soundcloud.com/artist/track-name", PlatformSoundCloud},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			match, ok := Classify(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.platform, match.Platform)
		})
	}
}

func TestClassify_NoMatch(t *testing.T) {
	for _, text := range []string{
		"hello there",
		"https://example.com/watch?v=abc",
		"https://instagram.com/someuser", // profile page, not a post
		"",
	} {
		t.Run(text, func(t *testing.T) {
			_, ok := Classify(text)
			assert.False(t, ok)
		})
	}
}

func TestIsCollectionURL(t *testing.T) {
	tests := []struct {
		url        string
		collection bool
	}{
		{"https://soundcloud.com/artist/sets/x", true},
		{"https://soundcloud.com/artist/playlists/mix", true},
		{"https://soundcloud.com/artist/albums/lp", true},
		// the substring test is case-insensitive
		{"https://soundcloud.com/artist/SETS/x", true},
		{"https://soundcloud.com/artist/Sets/x", true},
		{"https://soundcloud.com/artist/track", false},
		{"https://soundcloud.com/artist/setlist-track", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.collection, IsCollectionURL(tt.url))
		})
	}
}

func TestClassify_CollectionFlag(t *testing.T) {
	match, ok := Classify("https://soundcloud.com/artist/sets/album-name")
	require.True(t, ok)
	assert.True(t, match.Collection)

	match, ok = Classify("https://soundcloud.com/artist/track-name")
	require.True(t, ok)
	assert.False(t, match.Collection)
}
