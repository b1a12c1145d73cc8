package moderation

import (
	"reflect"
	"testing"
)

func TestScan_FlagsBannedWords(t *testing.T) {
	f := NewFilter([]string{"scam", "Fraud"})

	got := f.Scan("Totally legit offer, not a SCAM. Definitely no fraud, no scam at all.")
	want := []string{"scam", "fraud"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan: got %v, want %v", got, want)
	}
}

func TestScan_CleanText(t *testing.T) {
	f := NewFilter([]string{"scam"})
	if got := f.Scan("Help me assemble a bookshelf this weekend"); got != nil {
		t.Errorf("expected no flags, got %v", got)
	}
}

func TestScan_TokenBoundaries(t *testing.T) {
	f := NewFilter([]string{"scam"})
	// Substrings inside longer words are not matches.
	if got := f.Scan("delicious scampi dinner"); got != nil {
		t.Errorf("expected no flags for substring, got %v", got)
	}
	// Punctuation-adjacent occurrences are.
	if got := f.Scan("this is a scam!"); len(got) != 1 || got[0] != "scam" {
		t.Errorf("expected [scam], got %v", got)
	}
}

func TestScan_EmptyList(t *testing.T) {
	f := NewFilter(nil)
	if got := f.Scan("anything goes"); got != nil {
		t.Errorf("empty filter must flag nothing, got %v", got)
	}
}
