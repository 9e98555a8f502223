package highlight

import (
	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
)

// Next moves to the following match, wrapping to the first.
func (e *Engine) Next() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(1)
}

// Previous moves to the preceding match, wrapping to the last.
func (e *Engine) Previous() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(-1)
}

func (e *Engine) step(delta int) Position {
	n := e.reg.Len()
	if n == 0 {
		return Position{}
	}
	i := e.reg.Active()
	if i < 0 {
		i = 0
	} else {
		i = ((i+delta)%n + n) % n
	}
	e.activate(i, true)
	return e.reg.position()
}

// activate moves the cursor to i. A wrapper removed from the tree by the
// host still takes the cursor but gets neither the active class nor focus.
func (e *Engine) activate(i int, focus bool) {
	m := e.reg.marks[i]
	attached := doctree.IsAttached(m)
	e.reg.setActive(i, attached)
	if !attached {
		e.log.Warn("active highlight is detached", "index", i)
		return
	}
	if focus {
		e.bringIntoView(m)
	}
}

func (e *Engine) bringIntoView(m *html.Node) {
	if e.view == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("viewport panicked", "panic", r)
		}
	}()
	if err := e.view.BringIntoView(m, AlignCenter); err != nil {
		e.log.Warn("bring into view failed", "error", err)
	}
}
