// Package session binds a parsed document to a search engine and keeps the
// live sessions in memory.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/dgallion1/docfind/internal/highlight"
	"github.com/dgallion1/docfind/internal/parser"
	"github.com/dgallion1/docfind/internal/stats"
	"github.com/dgallion1/docfind/internal/viewport"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/language"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrNoRoot   = errors.New("search root not found")
)

// Options is shared by every session a server opens.
type Options struct {
	Exclude     highlight.Exclusion
	Language    language.Tag
	Incremental bool
	Stats       *stats.Window // may be nil
	Logger      *slog.Logger
}

// Session is one document plus its search state. The mutex covers both
// the engine and the tree, since appends rewrite the same nodes the engine
// wraps.
type Session struct {
	mu sync.Mutex

	ID        string
	Title     string
	CreatedAt time.Time
	UsedAt    time.Time

	doc    *doctree.Document
	engine *highlight.Engine
	view   *viewport.Tracker
	stats  *stats.Window
	log    *slog.Logger
}

// Result is what every search operation reports back.
type Result struct {
	highlight.Status
	Display string          `json:"display"`
	Focus   *viewport.Focus `json:"focus,omitempty"`
}

// New opens a session over doc.
func New(id string, doc *doctree.Document, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("session_id", id)

	view := viewport.NewTracker()
	now := time.Now()
	return &Session{
		ID:        id,
		Title:     doc.Title,
		CreatedAt: now,
		UsedAt:    now,
		doc:       doc,
		view:      view,
		stats:     opts.Stats,
		log:       log,
		engine: highlight.New(highlight.Options{
			Exclude:     opts.Exclude,
			Language:    opts.Language,
			Viewport:    view,
			Incremental: opts.Incremental,
			Logger:      log,
		}),
	}
}

// root resolves the search root afresh: the element with rootID when
// given, otherwise <body>, otherwise the document node. A rootID that
// matches nothing yields nil.
func (s *Session) root(rootID string) *html.Node {
	if rootID != "" {
		return doctree.FindByID(s.doc.Root, rootID)
	}
	if body := doctree.FindBody(s.doc.Root); body != nil {
		return body
	}
	return s.doc.Root
}

// Search highlights query under the resolved root.
func (s *Session) Search(rootID, query string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.view.Reset()
	n := s.engine.Search(s.root(rootID), query)
	s.record("search", start, n)
	s.log.Info("search", "query", strings.TrimSpace(query), "matches", n, "root_id", rootID)
	return s.resultLocked()
}

func (s *Session) Next() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.view.Reset()
	s.engine.Next()
	s.record("next", start, 0)
	return s.resultLocked()
}

func (s *Session) Previous() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.view.Reset()
	s.engine.Previous()
	s.record("previous", start, 0)
	return s.resultLocked()
}

func (s *Session) Clear() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.engine.Clear()
	s.view.Reset()
	s.record("clear", start, 0)
	return s.resultLocked()
}

func (s *Session) Status() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UsedAt = time.Now()
	return s.resultLocked()
}

// Append sanitizes and parses an HTML fragment, appends it under the
// resolved root and lets the engine pick up matches in it. It returns the number of new
// highlights.
func (s *Session) Append(rootID, fragment string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.root(rootID)
	if root == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoRoot, rootID)
	}
	context := root
	if root.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(parser.SanitizeHTML(fragment)), context)
	if err != nil {
		return 0, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	start := time.Now()
	added := s.engine.ContentAdded(nodes...)
	s.record("content_added", start, added)
	return added, nil
}

// Render writes the document, highlights included.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UsedAt = time.Now()
	return html.Render(w, s.doc.Root)
}

func (s *Session) record(op string, start time.Time, matches int) {
	s.UsedAt = time.Now()
	if s.stats != nil {
		s.stats.Record(op, time.Since(start), matches)
	}
}

func (s *Session) resultLocked() Result {
	st := s.engine.Status()
	r := Result{Status: st, Display: st.String()}
	if st.State == highlight.StatePopulated {
		if f, ok := s.view.Last(); ok {
			r.Focus = &f
		}
	}
	return r
}

// Info is a JSON-safe copy of session metadata.
type Info struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UsedAt    time.Time `json:"used_at"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt, UsedAt: s.UsedAt}
}
