package ingest

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order when splitting text.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks text into overlapping chunks, preferring paragraph breaks,
// then lines, then words, then characters.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter targeting size runes per chunk with overlap
// runes carried between neighbours.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap, separators: DefaultSeparators}
}

// Split returns the chunks of text. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	var sep string
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, fitting []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) <= s.size {
			fitting = append(fitting, p)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, s.merge(fitting, sep)...)
			fitting = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(fitting) > 0 {
		out = append(out, s.merge(fitting, sep)...)
	}
	return out
}

// merge packs pieces into chunks no longer than size, starting each new chunk
// with up to overlap runes of trailing pieces from the previous one.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	var out, window []string
	total := 0

	emit := func() {
		if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
			out = append(out, doc)
		}
	}

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if len(window) > 0 && total+sepLen+n > s.size {
			emit()
			for len(window) > 0 && (total > s.overlap || total+sepLen+n > s.size) {
				total -= utf8.RuneCountInString(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, p)
		total += n
	}
	if len(window) > 0 {
		emit()
	}
	return out
}
