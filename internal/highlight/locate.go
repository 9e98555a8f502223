package highlight

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Span is a byte range [Start, End) within a string.
type Span struct {
	Start int
	End   int
}

// MatchSpan is one occurrence of the query inside a text run.
type MatchSpan struct {
	Run   *html.Node // text node the offsets refer to, before rewriting
	Start int
	End   int
	Text  string // matched substring as it appears in the run
}

// Locator finds literal, case-insensitive occurrences of one query.
// Runs are compared rune by rune after language-aware lowercasing and
// Unicode case folding, so "É" matches "é" but ligatures, compatibility
// forms and ignorable code points only match themselves.
// A Locator is not safe for concurrent use.
type Locator struct {
	query string
	keys  []string // folded form of each query rune
	lower cases.Caser
	fold  cases.Caser
	memo  map[rune]string
}

// NewLocator compiles query for lang. It returns false when the query is
// empty after trimming, which callers treat as a request to clear.
func NewLocator(query string, lang language.Tag) (*Locator, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, false
	}
	l := &Locator{
		query: q,
		lower: cases.Lower(lang),
		fold:  cases.Fold(),
		memo:  make(map[rune]string),
	}
	for i := 0; i < len(q); {
		key, size := l.key(q[i:])
		l.keys = append(l.keys, key)
		i += size
	}
	return l, true
}

// Query returns the trimmed query string.
func (l *Locator) Query() string {
	return l.query
}

// key folds the first rune of s. Invalid bytes stand for themselves.
func (l *Locator) key(s string) (string, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s[:size], size
	}
	if k, ok := l.memo[r]; ok {
		return k, size
	}
	k := l.fold.String(l.lower.String(string(r)))
	l.memo[r] = k
	return k, size
}

// matchAt reports the end of a match starting at byte i, or -1.
func (l *Locator) matchAt(text string, i int) int {
	for _, want := range l.keys {
		if i >= len(text) {
			return -1
		}
		got, size := l.key(text[i:])
		if got != want {
			return -1
		}
		i += size
	}
	return i
}

// Find returns non-overlapping matches in text, left to right, as byte
// offsets into text. Each scan resumes at the end of the previous match,
// so "aa" in "aaa" matches once.
func (l *Locator) Find(text string) []Span {
	var spans []Span
	for i := 0; i < len(text); {
		if end := l.matchAt(text, i); end > i {
			spans = append(spans, Span{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return spans
}

// Locate runs Find over a text node's value.
func (l *Locator) Locate(run *html.Node) []MatchSpan {
	if run == nil || run.Type != html.TextNode {
		return nil
	}
	spans := l.Find(run.Data)
	if len(spans) == 0 {
		return nil
	}
	out := make([]MatchSpan, len(spans))
	for i, s := range spans {
		out[i] = MatchSpan{
			Run:   run,
			Start: s.Start,
			End:   s.End,
			Text:  run.Data[s.Start:s.End],
		}
	}
	return out
}
