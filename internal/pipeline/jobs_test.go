package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docfind/internal/config"
	"github.com/dgallion1/docfind/internal/parser"
	"github.com/dgallion1/docfind/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("notes.txt", "", []byte("abc"))
	if job.ID == "" {
		t.Fatal("expected a job ID")
	}
	if other := NewJob("notes.txt", "", []byte("abc")); other.ID == job.ID {
		t.Error("expected distinct IDs for distinct jobs")
	}

	snap := job.Snapshot()
	if snap.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, snap.Status)
	}
	if snap.Size != 3 {
		t.Errorf("expected size 3, got %d", snap.Size)
	}
	if snap.ContentHash != ContentHashHex([]byte("abc")) {
		t.Errorf("unexpected content hash %q", snap.ContentHash)
	}
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.md", "", nil)

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusParsing, "parsing")
	if job.Status != StatusParsing || !job.UpdatedAt.After(before) {
		t.Errorf("expected parsing with advanced UpdatedAt, got %q", job.Status)
	}

	job.SetReady("sess-1", "A")
	snap := job.Snapshot()
	if snap.Status != StatusReady || snap.SessionID != "sess-1" || snap.Title != "A" {
		t.Errorf("unexpected ready snapshot %+v", snap)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released once ready")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.md", "", []byte("x"))
	job.Fail("parsing", errors.New("bad input"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed during parsing, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "bad input" {
		t.Errorf("unexpected errors %v", snap.Errors)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestWorker_ProcessOpensSession(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	w := NewWorker(sessions, session.Options{}, parser.Options{}, discardLogger())

	job := NewJob("notes.md", "", []byte("# Notes\n\nA needle in the hay.\n"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusReady {
		t.Fatalf("expected ready, got %q (errors %v)", snap.Status, snap.Errors)
	}
	if snap.Title != "Notes" {
		t.Errorf("expected title from heading, got %q", snap.Title)
	}

	sess, err := sessions.Get(snap.SessionID)
	if err != nil {
		t.Fatalf("expected session %q: %v", snap.SessionID, err)
	}
	if res := sess.Search("", "needle"); res.Total != 1 {
		t.Errorf("expected 1 match in opened session, got %d", res.Total)
	}
}

func TestWorker_ProcessUnsupported(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	w := NewWorker(sessions, session.Options{}, parser.Options{}, discardLogger())

	job := NewJob("image.png", "", []byte{0x89})
	w.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if sessions.Len() != 0 {
		t.Error("expected no session for a failed job")
	}
}

func TestOrchestrator_SubmitQueueFull(t *testing.T) {
	cfg := config.Config{JobTTL: time.Hour, MaxQueueSize: 1, WorkerCount: 1}
	o := NewOrchestrator(cfg, session.NewStore(time.Hour), session.Options{}, discardLogger())

	// Workers are not started, so the second job cannot be queued.
	if err := o.Submit(NewJob("a.txt", "", []byte("a"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	full := NewJob("b.txt", "", []byte("b"))
	err := o.Submit(full)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if o.GetJob(full.ID).Snapshot().Status != StatusFailed {
		t.Error("expected rejected job to be marked failed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	cfg := config.Config{JobTTL: time.Hour, MaxQueueSize: 4, WorkerCount: 2}
	sessions := session.NewStore(time.Hour)
	o := NewOrchestrator(cfg, sessions, session.Options{}, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("plain.txt", "Plain", []byte("first paragraph\n\nsecond paragraph"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for job.Snapshot().Status != StatusReady {
		if time.Now().After(deadline) {
			t.Fatalf("job did not become ready, last status %q", job.Snapshot().Status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := job.Snapshot()
	if snap.Title != "Plain" {
		t.Errorf("expected submitted title to win, got %q", snap.Title)
	}
	sess, err := sessions.Get(snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if res := sess.Search("", "paragraph"); res.Total != 2 {
		t.Errorf("expected 2 matches, got %d", res.Total)
	}
}
