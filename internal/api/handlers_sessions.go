package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docfind/internal/session"
	"github.com/go-chi/chi/v5"
)

const maxRequestBody = 1 << 20

type searchRequest struct {
	Query  string `json:"query"`
	RootID string `json:"root_id"`
}

type contentRequest struct {
	HTML   string `json:"html"`
	RootID string `json:"root_id"`
}

// session resolves {sessionID} or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.Get(id)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.Delete(id) {
		jsonError(w, session.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, sess.Search(req.RootID, req.Query))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, sess.Next())
	}
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, sess.Previous())
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, sess.Clear())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, sess.Status())
	}
}

// handleHTML returns the document as it currently stands, highlights
// included.
func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := sess.Render(w); err != nil {
		s.log.Error("render session", "session_id", sess.ID, "error", err)
	}
}

func (s *Server) handleAppendContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	added, err := sess.Append(req.RootID, req.HTML)
	switch {
	case errors.Is(err, session.ErrNoRoot):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"added":  added,
		"result": sess.Status(),
	})
}
