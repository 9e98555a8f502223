package highlight

import (
	"fmt"
	"slices"

	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
)

// State is the reporting state of a search session.
type State string

const (
	StateIdle      State = "idle"       // no search, or cleared
	StateNoResults State = "no-results" // a search ran and matched nothing
	StatePopulated State = "populated"  // at least one live match
)

// Registry is the ordered set of live wrappers for the current query plus
// the active cursor. Wrappers are in document order as of the last full
// search; incremental additions are appended after them.
type Registry struct {
	marks  []*html.Node
	query  string
	active int
}

// NewRegistry returns an idle registry.
func NewRegistry() *Registry {
	return &Registry{active: -1}
}

// State derives the reporting state.
func (r *Registry) State() State {
	switch {
	case len(r.marks) > 0:
		return StatePopulated
	case r.query != "":
		return StateNoResults
	default:
		return StateIdle
	}
}

func (r *Registry) Len() int      { return len(r.marks) }
func (r *Registry) Query() string { return r.query }

// Active returns the active index, or -1.
func (r *Registry) Active() int { return r.active }

// Marks returns a copy of the wrappers in order.
func (r *Registry) Marks() []*html.Node { return slices.Clone(r.marks) }

func (r *Registry) add(marks ...*html.Node) {
	r.marks = append(r.marks, marks...)
}

// setActive moves the cursor to i. The active class follows the cursor
// unless visible is false, in which case no wrapper carries it.
func (r *Registry) setActive(i int, visible bool) *html.Node {
	if i < 0 || i >= len(r.marks) {
		panic(fmt.Sprintf("highlight: active index %d out of range [0,%d)", i, len(r.marks)))
	}
	if r.active >= 0 && r.active < len(r.marks) {
		doctree.RemoveClass(r.marks[r.active], ActiveClass)
	}
	r.active = i
	m := r.marks[i]
	if visible {
		doctree.AddClass(m, ActiveClass)
	}
	return m
}

// drain empties the registry and hands back the wrappers it held.
func (r *Registry) drain() []*html.Node {
	marks := r.marks
	r.marks = nil
	r.query = ""
	r.active = -1
	return marks
}

// Position is a one-based cursor over the match set; zero when empty.
type Position struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

func (r *Registry) position() Position {
	if len(r.marks) == 0 || r.active < 0 {
		return Position{}
	}
	return Position{Index: r.active + 1, Total: len(r.marks)}
}

// Status is what a host displays next to its search box.
type Status struct {
	State State  `json:"state"`
	Query string `json:"query,omitempty"`
	Position
}

// String renders "3 of 7", "No results", or "" when idle.
func (s Status) String() string {
	switch s.State {
	case StatePopulated:
		return fmt.Sprintf("%d of %d", s.Index, s.Total)
	case StateNoResults:
		return "No results"
	default:
		return ""
	}
}
