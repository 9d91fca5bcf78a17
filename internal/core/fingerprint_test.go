package core

import "testing"

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(Normalize("hello  world"))
	b := Fingerprint(Normalize("hello world"))
	if a == "" || b == "" || a != b {
		t.Fatalf("expected stable fingerprint, got %q and %q", a, b)
	}
}

func TestItemFingerprintSeparatesTypes(t *testing.T) {
	text := Item{Type: TypeText, Content: "<b>x</b>"}
	html := Item{Type: TypeHTML, Content: "<b>x</b>"}
	if ItemFingerprint(text) == ItemFingerprint(html) {
		t.Fatalf("expected different fingerprints across types")
	}
	if ItemFingerprint(Item{Type: TypeText, Content: " "}) != "" {
		t.Fatalf("expected empty fingerprint for blank content")
	}
}
