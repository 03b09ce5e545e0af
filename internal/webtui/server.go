package webtui

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

type ServerConfig struct {
	Addr string
	// ServerURL is passed through to the child TUI process so the browser
	// session talks to the same task/chat server as the launching shell.
	ServerURL string
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template

	// startSession launches the process behind the browser terminal. Tests
	// swap it for something cheaper than re-running this binary.
	startSession func() (*os.File, *exec.Cmd, func(), error)
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("webtui: missing addr")
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, tmpl: tmpl}
	s.startSession = s.startPTYSession
	return s, nil
}

func (s *Server) Addr() string {
	return strings.TrimSpace(s.cfg.Addr)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/terminal", http.StatusFound)
	})
	mux.HandleFunc("GET /terminal", s.handleTerminal)
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "text/javascript; charset=utf-8"))

	return mux
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

type terminalVM struct {
	ServerURL string
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	vm := terminalVM{ServerURL: strings.TrimSpace(s.cfg.ServerURL)}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "terminal.html", vm); err != nil {
		// Headers may already be out; best effort.
		_, _ = io.WriteString(w, err.Error())
	}
}
