// Package viewport records "bring into view" requests for remote clients.
//
// The server has no screen to scroll. Instead, each session keeps a Tracker
// that remembers the last node the engine asked to show; API responses carry
// it so the browser can scroll its own copy of the document.
package viewport

import (
	"errors"
	"sync"
	"time"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/dgallion1/docfind/internal/highlight"
	"golang.org/x/net/html"
)

// ErrNoNode is returned for a nil target.
var ErrNoNode = errors.New("viewport: nil node")

// Focus describes a node a client should scroll to.
type Focus struct {
	Path      string              `json:"path"`
	Align     highlight.Alignment `json:"align"`
	Text      string              `json:"text"`
	Requested time.Time           `json:"requested_at"`
	Seq       int                 `json:"seq"`
}

// Tracker implements highlight.Viewport by remembering the latest request.
type Tracker struct {
	mu   sync.Mutex
	last *Focus
	seq  int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) BringIntoView(n *html.Node, align highlight.Alignment) error {
	if n == nil {
		return ErrNoNode
	}
	f := Focus{
		Path:      doctree.Path(n),
		Align:     align,
		Text:      doctree.TextContent(n),
		Requested: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	f.Seq = t.seq
	t.last = &f
	return nil
}

// Last returns the most recent request, if any.
func (t *Tracker) Last() (Focus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Focus{}, false
	}
	return *t.last, true
}

// Reset forgets the last request, e.g. after the highlights were cleared.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = nil
}
