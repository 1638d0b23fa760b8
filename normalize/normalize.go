// Package normalize prepares mixed-script text for regex scanning. Identifiers
// such as phone numbers or emails written inside CJK text frequently touch the
// surrounding script with no whitespace ("010-1234-5678은"), which defeats
// boundary-anchored expressions. Prepare inserts a single space at every
// boundary between identifier characters and another script, and keeps a
// byte-level index map so match spans on the prepared text translate back to
// exact offsets in the original.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type class int

const (
	classNone class = iota
	// ASCII letters, digits and identifier punctuation: the characters PII
	// values are made of.
	classSafe
	// Any non-ASCII rune that is not whitespace.
	classScript
	// Whitespace and remaining ASCII punctuation. Breaks adjacency without
	// triggering an insertion.
	classOther
)

func classify(r rune) class {
	if unicode.IsSpace(r) {
		return classOther
	}
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return classSafe
	case r == '-', r == '.', r == '@', r == '+', r == '_', r == ':', r == '/':
		return classSafe
	}
	if r > unicode.MaxASCII {
		return classScript
	}
	return classOther
}

// Prepared is the output of Prepare: the transformed text to scan, the
// original text, and the mapping between the two.
type Prepared struct {
	// Text is the prepared text with separators inserted. Scan this.
	Text string
	// Original is the input text. Spans returned by MapSpan index into it.
	Original string

	// indexMap has one entry per byte of Text: the originating byte offset
	// in Original, or -1 for inserted separator bytes. Nil when Text and
	// Original are identical.
	indexMap []int
	identity bool
}

// Identity returns a Prepared that leaves text untouched, for callers that
// scan with normalization disabled but still go through MapSpan.
func Identity(text string) *Prepared {
	return &Prepared{Text: text, Original: text, identity: true}
}

// Prepare transforms text for scanning. Pure-ASCII input is returned as-is
// with an identity mapping.
func Prepare(text string) *Prepared {
	if isASCII(text) {
		return &Prepared{Text: text, Original: text, identity: true}
	}

	var b strings.Builder
	b.Grow(len(text) + 16)
	indexMap := make([]int, 0, len(text)+16)

	prev := classNone
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		c := classify(r)
		if (prev == classSafe && c == classScript) || (prev == classScript && c == classSafe) {
			b.WriteByte(' ')
			indexMap = append(indexMap, -1)
		}
		b.WriteString(text[i : i+size])
		for k := 0; k < size; k++ {
			indexMap = append(indexMap, i+k)
		}
		prev = c
		i += size
	}

	p := &Prepared{Text: b.String(), Original: text, indexMap: indexMap}
	p.identity = p.Text == text
	return p
}

// Changed reports whether Prepare inserted any separators.
func (p *Prepared) Changed() bool {
	return !p.identity
}

// MapSpan translates a [start, end) byte span on Text to the corresponding
// span on Original. If start lands on an inserted separator it advances to
// the next original byte; the end resolves to the last original byte before
// it. Degenerate spans (empty text, end at or before zero, spans that cover
// no original bytes) resolve to (0, 0); MapSpan never panics.
func (p *Prepared) MapSpan(start, end int) (int, int) {
	if p.identity {
		n := len(p.Original)
		if n == 0 || end <= 0 {
			return 0, 0
		}
		if end > n {
			end = n
		}
		if start > n-1 {
			start = n - 1
		}
		if start < 0 {
			start = 0
		}
		return start, end
	}

	m := p.indexMap
	if len(m) == 0 {
		return 0, 0
	}
	if end > len(m) {
		end = len(m)
	}
	if start > len(m)-1 {
		start = len(m) - 1
	}
	if start < 0 {
		start = 0
	}

	idx := end - 1
	for idx >= 0 && m[idx] == -1 {
		idx--
	}
	if idx < 0 {
		return 0, 0
	}
	origEnd := m[idx] + 1

	origStart := m[start]
	for origStart == -1 && start < len(m)-1 {
		start++
		origStart = m[start]
	}
	if origStart == -1 {
		return 0, 0
	}
	return origStart, origEnd
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
