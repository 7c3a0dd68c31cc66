package app

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// tokenLength is the number of hex characters kept from the URL hash.
// Short enough to fit a callback payload alongside a prefix and tier.
const tokenLength = 10

// URLRegistry maps short opaque tokens to full URLs so that
// size-constrained callback payloads can reference arbitrary-length
// URLs. Tokens are derived from a content hash, so putting the same URL
// twice collapses to one entry and concurrent writers never conflict.
// Entries live for the process lifetime; there is no eviction.
type URLRegistry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewURLRegistry creates an empty registry
func NewURLRegistry() *URLRegistry {
	return &URLRegistry{entries: make(map[string]string)}
}

// Token derives the registry token for a URL without storing it
func Token(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:tokenLength]
}

// Put stores the URL and returns its token. Idempotent: the same URL
// always yields the same token.
func (r *URLRegistry) Put(url string) string {
	token := Token(url)
	r.mu.Lock()
	r.entries[token] = url
	r.mu.Unlock()
	return token
}

// Get resolves a token back to its URL. The second return is false for
// unknown tokens (a stale callback from before a restart); callers turn
// that into a resend prompt, never a crash.
func (r *URLRegistry) Get(token string) (string, bool) {
	r.mu.RLock()
	url, ok := r.entries[token]
	r.mu.RUnlock()
	return url, ok
}

// Len returns the number of stored entries
func (r *URLRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
