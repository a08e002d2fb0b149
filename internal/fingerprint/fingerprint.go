// Package fingerprint derives content hashes used to deduplicate transcripts.
//
// Two transcripts that differ only in letter case or whitespace produce the
// same hash, so re-uploads of the same video with cosmetic edits are skipped.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// videoNamespace scopes video ids derived from content hashes.
var videoNamespace = uuid.MustParse("6f1c1d0e-5b8a-4d57-9a41-2e7c3b9f0a11")

// Canonical returns the form of text that is hashed: whitespace runs
// collapsed to one space, lowercased and trimmed.
func Canonical(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Hash returns the hex-encoded SHA-256 of the canonical form of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Canonical(text)))
	return hex.EncodeToString(sum[:])
}

// VideoID returns the stable video id for a content hash.
func VideoID(contentHash string) string {
	return uuid.NewSHA1(videoNamespace, []byte(contentHash)).String()
}
