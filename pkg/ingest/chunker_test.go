package ingest

import (
	"reflect"
	"testing"
)

func TestSplitterSplit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{name: "fits", size: 800, text: "hello world", want: []string{"hello world"}},
		{name: "words", size: 10, text: "aaaa bbbb cccc", want: []string{"aaaa bbbb", "cccc"}},
		{name: "overlap", size: 10, overlap: 4, text: "aaaa bbbb cccc", want: []string{"aaaa bbbb", "bbbb cccc"}},
		{name: "paragraphs first", size: 8, text: "aaaa bb\n\ncc dddd", want: []string{"aaaa bb", "cc dddd"}},
		{name: "characters", size: 3, text: "abcdefg", want: []string{"abc", "def", "g"}},
		{name: "recurse into long piece", size: 5, text: "ab cdefghij", want: []string{"ab", "cdefg", "hij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSplitter(tt.size, tt.overlap).Split(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitterDropsBlank(t *testing.T) {
	if got := NewSplitter(800, 100).Split("   \n\n  "); len(got) != 0 {
		t.Fatalf("expected no chunks, got %q", got)
	}
}

func TestSplitterBadOverlap(t *testing.T) {
	s := NewSplitter(10, 20)
	if s.overlap != 0 {
		t.Fatalf("overlap = %d, want 0", s.overlap)
	}
}
