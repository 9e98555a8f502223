package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/dgallion1/docfind/internal/parser"
	"github.com/dgallion1/docfind/internal/session"
	"github.com/google/uuid"
)

// Worker turns one uploaded file into a live search session.
type Worker struct {
	sessions *session.Store
	sessOpts session.Options
	parsing  parser.Options
	log      *slog.Logger
}

func NewWorker(sessions *session.Store, sessOpts session.Options, parsing parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		sessions: sessions,
		sessOpts: sessOpts,
		parsing:  parsing,
		log:      log,
	}
}

// Process parses the job's file and registers a session over the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Fail("queued", err)
		return
	}

	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parsing)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("parsing", err)
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Errorf("parse: %w", err))
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	if doctree.FindBody(doc.Root) == nil {
		log.Warn("document has no body, searching from the document root")
	}

	sess := session.New(uuid.NewString(), doc, w.sessOpts)
	w.sessions.Put(sess)
	job.SetReady(sess.ID, doc.Title)
	log.Info("session opened", "session_id", sess.ID, "title", doc.Title)
}
