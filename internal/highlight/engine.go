// Package highlight finds literal, case-insensitive occurrences of a query
// in the visible text of an HTML content tree, wraps each one in a <mark>
// element in place, and navigates between them.
//
// Highlighting is reversible: clearing unwraps every mark and merges the
// text back together so the tree's text is byte-identical to what it was
// before the search. Matches never span two text nodes.
//
// An Engine owns one search session. Its methods serialize on a mutex, but
// the tree itself is shared with the host: the host must not mutate it
// while an Engine call is running.
package highlight

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// Alignment hints where a focused node should land in the viewport.
type Alignment string

const (
	AlignCenter  Alignment = "center"
	AlignStart   Alignment = "start"
	AlignEnd     Alignment = "end"
	AlignNearest Alignment = "nearest"
)

// Viewport brings a node into view. Calls are fire-and-forget: errors are
// logged and otherwise ignored.
type Viewport interface {
	BringIntoView(n *html.Node, align Alignment) error
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Exclude  Exclusion    // nil means DefaultExclusion
	Language language.Tag // case folding rules; language.Und when unset
	Viewport Viewport     // may be nil

	// Incremental enables ContentAdded.
	Incremental bool

	Logger *slog.Logger
}

// Engine is a single search session over a content tree.
type Engine struct {
	mu sync.Mutex

	reg         *Registry
	locator     *Locator // compiled query while a search is live
	exclude     Exclusion
	lang        language.Tag
	view        Viewport
	incremental bool
	log         *slog.Logger
}

// New creates an idle Engine.
func New(opts Options) *Engine {
	e := &Engine{
		reg:         NewRegistry(),
		exclude:     opts.Exclude,
		lang:        opts.Language,
		view:        opts.Viewport,
		incremental: opts.Incremental,
		log:         opts.Logger,
	}
	if e.exclude == nil {
		e.exclude = DefaultExclusion()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Search clears any previous highlights, then highlights every occurrence
// of query under root and focuses the first one. It returns the number of
// matches. An empty query only clears. A nil or detached root yields zero
// matches and the no-results state.
func (e *Engine) Search(root *html.Node, query string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearLocked()

	loc, ok := NewLocator(query, e.lang)
	if !ok {
		return 0
	}
	e.reg.query = loc.Query()

	if root == nil || !doctree.IsAttached(root) {
		e.log.Warn("search root unavailable", "query", loc.Query(), "root_missing", root == nil)
		return 0
	}

	if n := Sweep(root); n > 0 {
		e.log.Debug("restored stray highlights", "count", n)
	}

	e.locator = loc
	e.reg.add(e.highlight(root)...)
	if e.reg.Len() > 0 {
		e.activate(0, true)
	}
	return e.reg.Len()
}

// highlight walks root to completion before touching the tree, then
// rewrites the collected runs.
func (e *Engine) highlight(root *html.Node) []*html.Node {
	type pending struct {
		run   *html.Node
		spans []MatchSpan
	}

	var work []pending
	for _, run := range slices.Collect(TextRuns(root, e.exclude)) {
		if spans := e.locator.Locate(run); len(spans) > 0 {
			work = append(work, pending{run: run, spans: spans})
		}
	}

	var marks []*html.Node
	for _, w := range work {
		created, err := Render(w.run, w.spans)
		if err != nil {
			e.log.Debug("skipping text run", "error", err)
			continue
		}
		marks = append(marks, created...)
	}
	return marks
}

// Clear removes every highlight and returns to idle. It is safe to call
// repeatedly.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

func (e *Engine) clearLocked() {
	e.locator = nil
	marks := e.reg.drain()
	if len(marks) == 0 {
		return
	}
	if n := Restore(marks); n < len(marks) {
		e.log.Debug("skipped detached highlights", "detached", len(marks)-n)
	}
}

// Status reports the current state and cursor.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:    e.reg.State(),
		Query:    e.reg.Query(),
		Position: e.reg.position(),
	}
}

// Marks returns the live wrappers in registry order.
func (e *Engine) Marks() []*html.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Marks()
}

// ContentAdded highlights matches inside nodes that were attached after the
// last search. New wrappers go to the end of the sequence whatever their
// document position, and existing indexes are never renumbered. If nothing
// was active yet, the first new match becomes active without a viewport
// request. It returns the number of wrappers added, and is a no-op unless
// incremental mode is on and a query is live.
func (e *Engine) ContentAdded(nodes ...*html.Node) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.incremental || e.locator == nil {
		return 0
	}

	before := e.reg.Len()
	for _, n := range nodes {
		if n == nil || !doctree.IsAttached(n) || IsHighlight(n) || excludedAncestry(n, e.exclude) {
			continue
		}
		e.reg.add(e.highlight(n)...)
	}

	added := e.reg.Len() - before
	if added > 0 && e.reg.Active() < 0 {
		e.activate(0, false)
	}
	return added
}
