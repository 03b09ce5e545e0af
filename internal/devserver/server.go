// Package devserver is a local, in-memory instance of the task + chat
// service the client speaks to. It exists for development and tests: no
// persistence, no real authentication, single process.
package devserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"taskroom-cli/internal/model"
)

type Server struct {
	log   zerolog.Logger
	store *memStore
	hub   *hub
}

func New(log zerolog.Logger) *Server {
	return &Server{
		log:   log,
		store: newMemStore(),
		hub:   newHub(log),
	}
}

type ctxKey int

const userKey ctxKey = 0

func userFrom(r *http.Request) string {
	user, _ := r.Context().Value(userKey).(string)
	return user
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)

	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Get("/api/tasks", s.handleListTasks)
		r.Post("/api/tasks", s.handleCreateTask)
		r.Put("/api/tasks/{id}", s.handleUpdateTask)
		r.Delete("/api/tasks/{id}", s.handleDeleteTask)
		r.Patch("/api/tasks/{id}/complete", s.handleCompleteTask)
	})

	// The websocket carries the token as a query parameter; header-based
	// bearer auth is not available to browser websocket clients.
	r.Get("/ws/chat", s.handleChat)

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled. Shutdown also closes
// live chat connections: websockets are hijacked, so http.Server.Shutdown
// alone would wait on them forever.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		s.hub.closeAll()
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("dev server listening")
	err := srv.Serve(ln)
	s.hub.wait()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("dur", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		user, ok := s.store.authenticate(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	// Any non-empty credentials succeed: this server develops the client,
	// it does not guard anything.
	token := s.store.login(username)
	s.log.Info().Str("user", username).Msg("login")
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.store.list(userFrom(r), r.URL.Query().Get("search"))
	writeJSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDate     *model.Date `json:"dueDate,omitempty"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "missing title")
		return
	}
	t := s.store.create(userFrom(r), req.Title, req.Description, req.DueDate)
	writeJSON(w, http.StatusCreated, t)
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// taskUpdateRequest distinguishes "field absent" (nil) from "field set to
// empty": sending description "" clears the description.
type taskUpdateRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	DueDate     *model.Date   `json:"dueDate"`
	Status      *model.Status `json:"status"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}
	t, found := s.store.update(userFrom(r), id, func(t *model.Task) {
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
	})
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	if !s.store.delete(userFrom(r), id) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	t, found := s.store.update(userFrom(r), id, func(t *model.Task) {
		t.Status = model.StatusDone
	})
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.authenticate(r.URL.Query().Get("token"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	s.hub.handleWS(w, r, user)
}
