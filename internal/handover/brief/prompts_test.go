package brief

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCondenseHistoryTruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII characters put the first multibyte rune astride byte 200.
	msg := strings.Repeat("a", 199) + "ééé wörld and some trailing text"

	got := condenseHistory([]string{msg}, 10)

	if !utf8.ValidString(got) {
		t.Fatalf("condensed history contains an invalid UTF-8 sequence: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated line to end with ellipsis, got %q", got)
	}
}

func TestCondenseHistoryKeepsMostRecentMessages(t *testing.T) {
	history := []string{"first", "second", "third"}

	got := condenseHistory(history, 2)

	if strings.Contains(got, "first") {
		t.Fatalf("expected oldest message dropped, got %q", got)
	}
	if !strings.Contains(got, "second") || !strings.Contains(got, "third") {
		t.Fatalf("expected the two most recent messages, got %q", got)
	}
}

func TestCondenseHistoryEmpty(t *testing.T) {
	if got := condenseHistory(nil, 10); got != "(no prior messages)" {
		t.Fatalf("condenseHistory(nil) = %q", got)
	}
}
