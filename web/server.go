// Package web maps HTTP verbs and paths onto the dispatcher and the
// filesystem services, wrapping every result in the standard envelope. No
// error may escape a handler unwrapped; the recover middleware is the last
// line and still produces the envelope shape.
package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/compiler"
	"github.com/unilatex/latex_api_server/project"
	"github.com/unilatex/latex_api_server/quality"
	"github.com/unilatex/latex_api_server/workspace"
)

const DefaultMaxUploadBytes = 16 * 1024 * 1024

type Server struct {
	log        loggerv2.Logger
	ws         *workspace.Workspace
	dispatcher *compiler.Dispatcher
	checker    *quality.Checker
	projects   *project.Service
	maxUpload  int64
}

func NewServer(log loggerv2.Logger, ws *workspace.Workspace, dispatcher *compiler.Dispatcher, checker *quality.Checker, projects *project.Service, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		log:        log,
		ws:         ws,
		dispatcher: dispatcher,
		checker:    checker,
		projects:   projects,
		maxUpload:  maxUpload,
	}
}

// Handler builds the route table. Every route goes through the body cap and
// the recover middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("GET /templates/{name}", s.handleTemplateContent)
	mux.HandleFunc("POST /templates/manage", s.handleManageTemplates)
	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("DELETE /projects/{path...}", s.handleDeleteProject)
	mux.HandleFunc("POST /compile", s.handleCompile)
	mux.HandleFunc("POST /quality-check", s.handleQualityCheck)
	mux.HandleFunc("GET /files/{path...}", s.handleGetFile)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /watch", s.handleWatch)
	mux.HandleFunc("GET /system/info", s.handleSystemInfo)
	mux.HandleFunc("/", s.handleNotFound)
	return s.recoverMiddleware(s.limitMiddleware(mux))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusNotFound, "Endpoint not found", "The requested endpoint does not exist")
}

func (s *Server) limitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.ErrorContext(r.Context(), "handler panicked",
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec),
				)
				writeFail(w, http.StatusInternalServerError, "Internal server error", fmt.Sprintf("%v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// respondError maps the error taxonomy onto status codes, always in the
// envelope shape.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, compiler.ErrFileNotFound), errors.Is(err, project.ErrNotFound):
		writeFail(w, http.StatusNotFound, message, err.Error())
	case errors.Is(err, project.ErrValidation), errors.Is(err, compiler.ErrUnsupportedEngine):
		writeFail(w, http.StatusBadRequest, message, err.Error())
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeFail(w, http.StatusRequestEntityTooLarge, "File too large",
				fmt.Sprintf("File size exceeds the maximum limit of %dMB", s.maxUpload/(1024*1024)))
			return
		}
		s.log.ErrorContext(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeFail(w, http.StatusInternalServerError, message, err.Error())
	}
}
