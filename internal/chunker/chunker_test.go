// ABOUTME: Unit tests for the recursive text splitter
// ABOUTME: Covers size bounds, exact reconstruction, overlap, and oversized atomic units
package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_SegmentsWithinBound(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
	}{
		{"paragraphs", "First paragraph here.\n\nSecond paragraph follows.\n\nThird one.", 25},
		{"lines", "line one\nline two\nline three\nline four", 12},
		{"words", "the quick brown fox jumps over the lazy dog", 10},
		{"short", "tiny", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.size, 0, nil)
			segments := s.Split(tt.text)
			if len(segments) == 0 {
				t.Fatal("expected at least one segment")
			}
			for i, seg := range segments {
				if n := utf8.RuneCountInString(seg); n > tt.size {
					t.Errorf("segment %d has length %d, want <= %d: %q", i, n, tt.size, seg)
				}
			}
		})
	}
}

func TestSplit_ReconstructsOriginal(t *testing.T) {
	texts := []string{
		"First paragraph here.\n\nSecond paragraph follows.\n\nThird one.",
		"a\nb\nc\nd\ne\nf\ng",
		"the quick brown fox jumps over the lazy dog",
		"no separators at all but a very long single run of text",
		"trailing newline\n",
	}

	for _, text := range texts {
		s := New(12, 0, nil)
		segments := s.Split(text)
		if got := strings.Join(segments, ""); got != text {
			t.Errorf("concatenated segments = %q, want %q", got, text)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	const overlap = 3
	s := New(10, overlap, nil)
	text := "aaaa bbbb cccc dddd eeee"
	segments := s.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if n := utf8.RuneCountInString(seg); n > 10 {
			t.Errorf("segment %d has length %d, want <= 10", i, n)
		}
	}
	for i := 1; i < len(segments); i++ {
		prev := []rune(segments[i-1])
		curr := []rune(segments[i])
		suffix := string(prev[len(prev)-overlap:])
		prefix := string(curr[:overlap])
		if suffix != prefix {
			t.Errorf("segment %d prefix %q does not match previous suffix %q", i, prefix, suffix)
		}
	}
}

func TestSplit_OversizedAtomicUnit(t *testing.T) {
	// Without a character-level fallback separator, a single long word
	// is emitted oversized rather than failing.
	s := New(5, 0, []string{"\n\n", "\n", " "})
	segments := s.Split("supercalifragilistic")
	if len(segments) != 1 {
		t.Fatalf("expected 1 oversized segment, got %d: %v", len(segments), segments)
	}
	if segments[0] != "supercalifragilistic" {
		t.Errorf("unexpected segment %q", segments[0])
	}
}

func TestSplit_CharacterFallback(t *testing.T) {
	// With the empty separator configured, a long word is cut into
	// character windows.
	s := New(5, 0, []string{" ", ""})
	segments := s.Split("supercalifragilistic")
	if len(segments) != 4 {
		t.Fatalf("expected 4 segments, got %d: %v", len(segments), segments)
	}
	if got := strings.Join(segments, ""); got != "supercalifragilistic" {
		t.Errorf("concatenated segments = %q", got)
	}
	for i, seg := range segments {
		if utf8.RuneCountInString(seg) > 5 {
			t.Errorf("segment %d too long: %q", i, seg)
		}
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s := New(10, 0, nil)
	if segments := s.Split(""); segments != nil {
		t.Errorf("expected nil for empty text, got %v", segments)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New(15, 0, nil)
	text := "Some text.\n\nMore text here that needs splitting.\nAnd a line."
	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("split is not deterministic: %d vs %d segments", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs between calls: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestSplit_CustomLengthFunc(t *testing.T) {
	// Word-count length unit: max two words per segment.
	s := New(2, 0, []string{" "})
	s.Length = func(text string) int {
		return len(strings.Fields(text))
	}
	segments := s.Split("one two three four five")
	if got := strings.Join(segments, ""); got != "one two three four five" {
		t.Errorf("concatenated segments = %q", got)
	}
	for i, seg := range segments {
		if n := len(strings.Fields(seg)); n > 2 {
			t.Errorf("segment %d has %d words, want <= 2: %q", i, n, seg)
		}
	}
}
