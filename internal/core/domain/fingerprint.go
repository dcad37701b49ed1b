package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentDigest returns the hex SHA-256 of the record's content.
func ContentDigest(rec *RawRecord) string {
	sum := sha256.Sum256(rec.ContentBytes())
	return hex.EncodeToString(sum[:])
}

// DocumentFingerprint computes the identity key for raw-document
// storage. Preference order: the source-native record ID, then the
// canonical URL, then the fetch URL combined with the content digest.
// The fingerprint, not the URL, is the identity key: two URLs for the
// same record ID collapse to one stored document.
func DocumentFingerprint(rec *RawRecord, contentDigest string) string {
	var key string
	switch {
	case rec.RecordID != "":
		key = fmt.Sprintf("%s|%s|%s", rec.SourceType, rec.SourceName, rec.RecordID)
	case rec.CanonicalURL != "":
		key = fmt.Sprintf("%s|%s|%s", rec.SourceType, rec.SourceName, rec.CanonicalURL)
	default:
		key = fmt.Sprintf("%s|%s|%s|%s", rec.SourceType, rec.SourceName, rec.URL, contentDigest)
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
