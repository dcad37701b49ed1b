package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

// sourceHash is the content identity of an event. When the raw
// document already carries a sha256 content digest that digest is
// reused verbatim, so the event hash stays stable across re-parses.
// Otherwise the hash is derived from the fallback seed.
func sourceHash(contentSHA256, fallbackSeed string) string {
	digest := strings.ToLower(strings.TrimSpace(contentSHA256))
	if hexDigest.MatchString(digest) {
		return digest
	}
	sum := sha256.Sum256([]byte(fallbackSeed))
	return hex.EncodeToString(sum[:])
}

// eventFingerprint digests the mapper's identity tuple, lowercased, so
// the same real-world event collapses to one fingerprint regardless of
// upstream casing.
func eventFingerprint(identity []string) string {
	parts := make([]string, len(identity))
	for i, p := range identity {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
