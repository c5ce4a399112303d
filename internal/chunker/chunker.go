// ABOUTME: Recursive text splitter producing bounded-size overlapping segments
// ABOUTME: Tries boundary separators in priority order before falling back to smaller units
package chunker

import (
	"strings"
	"unicode/utf8"
)

// LengthFunc measures text in the unit chunk sizes are expressed in.
type LengthFunc func(string) int

// DefaultSeparators are tried in priority order: paragraph break, line
// break, space, then single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into segments no longer than ChunkSize, preferring
// to break at the earliest separator in Separators that occurs in the
// text. A Splitter is a pure function of its configuration: no state is
// carried between calls.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
	Length       LengthFunc
}

// New returns a Splitter measuring length in runes.
func New(chunkSize, chunkOverlap int, separators []string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   separators,
	}
}

// Split returns the segments of text. With zero overlap the segments are
// an exact partition: concatenating them reproduces text. With overlap O,
// each segment after the first starts with the last O runes of its
// predecessor. A single atomic unit longer than ChunkSize is emitted as
// its own oversized segment rather than failing.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	size := s.ChunkSize
	if s.ChunkOverlap > 0 {
		// Base segments leave room for the prepended overlap.
		size = s.ChunkSize - s.ChunkOverlap
		if size < 1 {
			size = 1
		}
	}
	segments := s.split(text, s.Separators, size)
	if s.ChunkOverlap <= 0 {
		return segments
	}
	return s.applyOverlap(segments)
}

func (s *Splitter) split(text string, separators []string, size int) []string {
	if s.length(text) <= size {
		return []string{text}
	}

	sep, rest, found := pickSeparator(text, separators)
	if !found {
		// No boundary left to try: emit the atomic unit oversized.
		return []string{text}
	}

	var pieces []string
	if sep == "" {
		pieces = splitRunes(text, size)
	} else {
		pieces = splitAfter(text, sep)
	}

	// Greedily merge pieces into segments no longer than size. Pieces
	// still too long recurse with the lower-priority separators.
	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, piece := range pieces {
		pieceLen := s.length(piece)
		if pieceLen > size {
			flush()
			out = append(out, s.split(piece, rest, size)...)
			continue
		}
		if curLen+pieceLen > size {
			flush()
		}
		cur.WriteString(piece)
		curLen += pieceLen
	}
	flush()
	return out
}

func (s *Splitter) applyOverlap(segments []string) []string {
	if len(segments) < 2 {
		return segments
	}
	out := make([]string, len(segments))
	out[0] = segments[0]
	for i := 1; i < len(segments); i++ {
		out[i] = lastRunes(segments[i-1], s.ChunkOverlap) + segments[i]
	}
	return out
}

func (s *Splitter) length(text string) int {
	if s.Length != nil {
		return s.Length(text)
	}
	return utf8.RuneCountInString(text)
}

// pickSeparator returns the first separator that occurs in text, together
// with the lower-priority separators after it. The empty separator always
// matches and means "split into single characters".
func pickSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// splitAfter splits text keeping the separator attached to the preceding
// piece, so concatenating the pieces reproduces text exactly.
func splitAfter(text, sep string) []string {
	return strings.SplitAfter(text, sep)
}

// splitRunes cuts text into windows of at most n runes.
func splitRunes(text string, n int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += n {
		end := start + n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// lastRunes returns the trailing n runes of text.
func lastRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
