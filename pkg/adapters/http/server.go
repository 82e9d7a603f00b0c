// Package http exposes the dialogue engine as a small JSON API: create a
// session, submit one turn at a time, read the transcript, and stream
// narration over SSE. Persistence and locking go through a session manager
// so the engine core stays single-threaded per session.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evanfield/guidepost/internal/logging"
	"github.com/evanfield/guidepost/pkg/domain"
	"github.com/evanfield/guidepost/pkg/session"
)

// Engine is the surface of the dialogue core the server depends on.
type Engine interface {
	Start(ctx context.Context, lang domain.Language) (*domain.Session, []domain.TranscriptEntry, error)
	SubmitChoice(ctx context.Context, s *domain.Session, value string) ([]domain.TranscriptEntry, error)
	SubmitText(ctx context.Context, s *domain.Session, text string) ([]domain.TranscriptEntry, error)
	Languages() []domain.Language
}

// Server handles the JSON API over a session manager.
type Server struct {
	engine   Engine
	sessions *session.Manager
	streams  *StreamManager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	srv := &Server{
		engine:   engine,
		sessions: sessions,
		streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	r := chi.NewRouter()
	r.Get("/healthz", srv.health)
	r.Get("/languages", srv.languages)
	r.Post("/sessions", srv.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Post("/choice", srv.submitChoice)
		r.Post("/text", srv.submitText)
		r.Get("/transcript", srv.transcript)
		r.Get("/narration", srv.narration)
		r.Delete("/", srv.deleteSession)
	})
	return r
}

type createRequest struct {
	Language string `json:"language"`
}

type turnRequest struct {
	Value string `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
}

type turnResponse struct {
	SessionID string                   `json:"session_id"`
	Status    domain.Status            `json:"status"`
	Entries   []domain.TranscriptEntry `json:"entries"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": s.engine.Languages()})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, entries, err := s.engine.Start(r.Context(), domain.Language(body.Language))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess.ID, sess); err != nil {
		s.writeError(w, err)
		return
	}

	s.publish(sess.ID, entries)
	writeJSON(w, http.StatusCreated, turnResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Entries:   entries,
	})
}

func (s *Server) submitChoice(w http.ResponseWriter, r *http.Request) {
	s.submitTurn(w, r, func(ctx context.Context, sess *domain.Session, body turnRequest) ([]domain.TranscriptEntry, error) {
		return s.engine.SubmitChoice(ctx, sess, body.Value)
	})
}

func (s *Server) submitText(w http.ResponseWriter, r *http.Request) {
	s.submitTurn(w, r, func(ctx context.Context, sess *domain.Session, body turnRequest) ([]domain.TranscriptEntry, error) {
		return s.engine.SubmitText(ctx, sess, body.Text)
	})
}

// submitTurn runs one engine turn under the session lock: load, advance,
// save, respond.
func (s *Server) submitTurn(w http.ResponseWriter, r *http.Request, advance func(context.Context, *domain.Session, turnRequest) ([]domain.TranscriptEntry, error)) {
	id := chi.URLParam(r, "id")

	var body turnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		sess    *domain.Session
		entries []domain.TranscriptEntry
	)
	err := s.sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		var err error
		sess, err = s.sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		entries, err = advance(ctx, sess, body)
		if err != nil {
			return err
		}
		return s.sessions.Store().Save(ctx, id, sess)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.publish(id, entries)
	writeJSON(w, http.StatusOK, turnResponse{
		SessionID: id,
		Status:    sess.Status,
		Entries:   entries,
	})
}

func (s *Server) transcript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"status":     sess.Status,
		"transcript": sess.Transcript,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// narration streams newly rendered node text as Server-Sent Events.
func (s *Server) narration(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case lines, open := <-ch:
			if !open {
				return
			}
			for _, line := range lines {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

// publish forwards the node entries of a turn to SSE listeners, mirroring
// what the narration sink hears.
func (s *Server) publish(sessionID string, entries []domain.TranscriptEntry) {
	for _, entry := range entries {
		if entry.Kind == domain.EntryNode {
			s.streams.Publish(sessionID, entry.Lines)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var contentErr *domain.ContentError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionEnded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInputRejected), errors.Is(err, domain.ErrUnknownChoice):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &contentErr):
		// A broken script is an operator problem, not user behavior.
		s.logger.Error("content error", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		s.logger.Error("request failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
