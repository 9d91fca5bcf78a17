package core

import (
	"crypto/sha256"
	"encoding/hex"
)

func Fingerprint(normalized string) string {
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ItemFingerprint identifies an item's payload independent of id and time.
// Text-like payloads are normalized first so whitespace-only edits collide.
func ItemFingerprint(it Item) string {
	body := it.Content
	switch it.Type {
	case TypeText, TypeCode, TypeHTML:
		body = Normalize(body)
	}
	if body == "" {
		return ""
	}
	return Fingerprint(string(it.Type) + "\x00" + body)
}
