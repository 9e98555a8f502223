package highlight

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const threeRuns = `<article>
<h1>Go notes</h1>
<p>First mention of go.</p>
<pre><code>go build ./...</code></pre>
<p>Then <em>GO</em> again, and go once more.</p>
</article>`

func activeCount(marks []*html.Node) int {
	n := 0
	for _, m := range marks {
		if doctree.HasClass(m, ActiveClass) {
			n++
		}
	}
	return n
}

func TestEngine_SearchDocumentOrder(t *testing.T) {
	body := parseBody(t, threeRuns)
	view := &recordingViewport{}
	e := New(Options{Viewport: view})

	n := e.Search(body, "go")
	require.Equal(t, 4, n)

	marks := e.Marks()
	var got []string
	for _, m := range marks {
		got = append(got, doctree.TextContent(m))
	}
	assert.Equal(t, []string{"Go", "go", "GO", "go"}, got)

	assert.True(t, doctree.HasClass(marks[0], ActiveClass))
	assert.Equal(t, 1, activeCount(marks))
	assert.Equal(t, []string{"Go"}, view.calls)
	assert.Equal(t, []Alignment{AlignCenter}, view.align)

	st := e.Status()
	assert.Equal(t, StatePopulated, st.State)
	assert.Equal(t, "go", st.Query)
	assert.Equal(t, Position{Index: 1, Total: 4}, st.Position)
	assert.Equal(t, "1 of 4", st.String())
}

func TestEngine_ExcludedSubtreeNotHighlighted(t *testing.T) {
	body := parseBody(t, `<pre><code>needle</code></pre><p>hay</p>`)
	e := New(Options{})

	assert.Equal(t, 0, e.Search(body, "needle"))
	assert.Equal(t, StateNoResults, e.Status().State)
	assert.Equal(t, "No results", e.Status().String())
}

func TestEngine_SearchThenClearRestoresTree(t *testing.T) {
	body := parseBody(t, threeRuns)
	before := renderHTML(t, body)
	e := New(Options{})

	require.Equal(t, 4, e.Search(body, "GO"))
	assert.NotEqual(t, before, renderHTML(t, body))

	e.Clear()
	assert.Equal(t, before, renderHTML(t, body))
	assert.Equal(t, StateIdle, e.Status().State)
	assert.Equal(t, "", e.Status().String())

	e.Clear()
	assert.Equal(t, before, renderHTML(t, body))
	assert.Equal(t, Status{State: StateIdle}, e.Status())
}

func TestEngine_ClearWhenIdle(t *testing.T) {
	e := New(Options{})
	e.Clear()
	assert.Equal(t, Status{State: StateIdle}, e.Status())
	assert.Equal(t, Position{}, e.Next())
	assert.Equal(t, Position{}, e.Previous())
}

func TestEngine_EmptyQueryClears(t *testing.T) {
	body := parseBody(t, threeRuns)
	before := renderHTML(t, body)
	e := New(Options{})

	require.Equal(t, 4, e.Search(body, "go"))
	assert.Equal(t, 0, e.Search(body, "   "))
	assert.Equal(t, before, renderHTML(t, body))
	assert.Equal(t, StateIdle, e.Status().State)
}

func TestEngine_RepeatedSearchDoesNotNest(t *testing.T) {
	body := parseBody(t, threeRuns)
	before := renderHTML(t, body)
	e := New(Options{})

	for range 3 {
		require.Equal(t, 4, e.Search(body, "go"))
	}
	require.Equal(t, 1, e.Search(body, "mention of"))
	for _, m := range e.Marks() {
		assert.False(t, IsHighlight(m.Parent))
	}

	e.Clear()
	assert.Equal(t, before, renderHTML(t, body))
}

func TestEngine_NewSearchReplacesOld(t *testing.T) {
	body := parseBody(t, `<p>alpha beta alpha</p>`)
	e := New(Options{})

	require.Equal(t, 2, e.Search(body, "alpha"))
	require.Equal(t, 1, e.Search(body, "beta"))
	marks := e.Marks()
	require.Len(t, marks, 1)
	assert.Equal(t, "beta", doctree.TextContent(marks[0]))
	assert.Equal(t, "alpha beta alpha", doctree.TextContent(body))
}

func TestEngine_WraparoundNavigation(t *testing.T) {
	body := parseBody(t, `<p>x one</p><p>x two</p><p>x three</p>`)
	view := &recordingViewport{}
	e := New(Options{Viewport: view})
	require.Equal(t, 3, e.Search(body, "x"))

	assert.Equal(t, Position{Index: 2, Total: 3}, e.Next())
	assert.Equal(t, Position{Index: 3, Total: 3}, e.Next())
	assert.Equal(t, Position{Index: 1, Total: 3}, e.Next(), "next from last wraps to first")
	assert.Equal(t, Position{Index: 3, Total: 3}, e.Previous(), "previous from first wraps to last")
	assert.Equal(t, Position{Index: 2, Total: 3}, e.Previous())

	marks := e.Marks()
	assert.Equal(t, 1, activeCount(marks))
	assert.True(t, doctree.HasClass(marks[1], ActiveClass))
	assert.Len(t, view.calls, 6)
}

func TestEngine_NoRoot(t *testing.T) {
	e := New(Options{})

	assert.Equal(t, 0, e.Search(nil, "anything"))
	st := e.Status()
	assert.Equal(t, StateNoResults, st.State)
	assert.Equal(t, "anything", st.Query)

	detached := &html.Node{Type: html.ElementNode, Data: "div"}
	detached.AppendChild(&html.Node{Type: html.TextNode, Data: "anything"})
	assert.Equal(t, 0, e.Search(detached, "anything"))
	assert.Equal(t, "anything", doctree.TextContent(detached))
	assert.Nil(t, detached.FirstChild.NextSibling)
}

func TestEngine_StaleHighlight(t *testing.T) {
	body := parseBody(t, `<p>a1</p><div id="gone"><p>a2</p></div><p>a3</p>`)
	view := &recordingViewport{}
	e := New(Options{Viewport: view})
	require.Equal(t, 3, e.Search(body, "a"))

	gone := doctree.FindByID(body, "gone")
	body.RemoveChild(gone)

	pos := e.Next()
	assert.Equal(t, Position{Index: 2, Total: 3}, pos, "cursor advances past a detached highlight")
	assert.Equal(t, []string{"a"}, view.calls, "no viewport request for a detached highlight")
	assert.Equal(t, 0, activeCount(e.Marks()))

	assert.Equal(t, Position{Index: 3, Total: 3}, e.Next())
	assert.Equal(t, 1, activeCount(e.Marks()))

	e.Clear()
	assert.Equal(t, "a1a3", doctree.TextContent(body))
	assert.Equal(t, StateIdle, e.Status().State)
}

func TestEngine_ViewportFailuresSwallowed(t *testing.T) {
	body := parseBody(t, `<p>q q</p>`)

	failing := New(Options{Viewport: &recordingViewport{err: errors.New("no viewport")}})
	require.Equal(t, 2, failing.Search(body, "q"))
	assert.Equal(t, Position{Index: 2, Total: 2}, failing.Next())
	failing.Clear()

	panicking := New(Options{Viewport: &recordingViewport{panic: true}})
	require.Equal(t, 2, panicking.Search(body, "q"))
	assert.Equal(t, Position{Index: 2, Total: 2}, panicking.Next())
	assert.True(t, doctree.HasClass(panicking.Marks()[1], ActiveClass))
	panicking.Clear()

	assert.Equal(t, "q q", doctree.TextContent(body))
}

func TestEngine_ContentAdded(t *testing.T) {
	body := parseBody(t, `<p>first match</p><p>second match</p>`)
	view := &recordingViewport{}
	e := New(Options{Viewport: view, Incremental: true})
	require.Equal(t, 2, e.Search(body, "match"))
	e.Next()

	added, err := html.ParseFragment(strings.NewReader(`<p>streamed match</p><pre>match</pre>`), body)
	require.NoError(t, err)
	// Insert before existing content to show that new matches still go last.
	for _, n := range added {
		body.InsertBefore(n, body.FirstChild)
	}

	assert.Equal(t, 1, e.ContentAdded(added...))
	marks := e.Marks()
	require.Len(t, marks, 3)
	assert.Equal(t, "streamed match", doctree.TextContent(marks[2].Parent))
	assert.Equal(t, Position{Index: 2, Total: 3}, e.Status().Position, "active index unchanged")
	assert.Len(t, view.calls, 2, "incremental highlighting does not move the viewport")

	assert.Equal(t, 0, e.ContentAdded(added...), "already highlighted content is skipped")
}

func TestEngine_ContentAddedActivatesFirstMatch(t *testing.T) {
	body := parseBody(t, `<p>nothing yet</p>`)
	e := New(Options{Incremental: true})
	require.Equal(t, 0, e.Search(body, "later"))

	p := &html.Node{Type: html.ElementNode, Data: "p"}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: "later text"})
	body.AppendChild(p)

	assert.Equal(t, 1, e.ContentAdded(p))
	st := e.Status()
	assert.Equal(t, StatePopulated, st.State)
	assert.Equal(t, Position{Index: 1, Total: 1}, st.Position)
	assert.True(t, doctree.HasClass(e.Marks()[0], ActiveClass))
}

func TestEngine_ContentAddedDisabledOrIdle(t *testing.T) {
	body := parseBody(t, `<p>word</p>`)
	p := body.FirstChild

	off := New(Options{})
	off.Search(body, "nothing")
	assert.Equal(t, 0, off.ContentAdded(p))

	idle := New(Options{Incremental: true})
	assert.Equal(t, 0, idle.ContentAdded(p))
	assert.Equal(t, "word", p.FirstChild.Data)
}
