// Package server serves payload files the way the production payload API
// does, sealed under the configured key. It backs local development and the
// end-to-end tests of the fetch path.
package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"payloadcrypt/internal/core/ports"
)

type Server struct {
	sealer ports.DecryptionService
	root   fs.FS
}

func New(sealer ports.DecryptionService, dir string) *Server {
	return &Server{sealer: sealer, root: os.DirFS(dir)}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/payloads/{name}", s.sealed)
		r.Get("/client/{name}", s.wrapped)
		r.Get("/raw/{name}", s.raw)
	})
	return r
}

func (s *Server) sealed(w http.ResponseWriter, r *http.Request) {
	data, ok := s.read(w, r)
	if !ok {
		return
	}
	env, err := s.sealer.Seal(r.Context(), data)
	if err != nil {
		log.Error().Err(err).Msg("seal failed")
		writeError(w, http.StatusInternalServerError, "seal failed")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// wrapped mirrors the client API shape {"code":0,"data":{"iv":..,"data":..}}.
func (s *Server) wrapped(w http.ResponseWriter, r *http.Request) {
	data, ok := s.read(w, r)
	if !ok {
		return
	}
	env, err := s.sealer.Seal(r.Context(), data)
	if err != nil {
		log.Error().Err(err).Msg("seal failed")
		writeError(w, http.StatusInternalServerError, "seal failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": env,
	})
}

func (s *Server) raw(w http.ResponseWriter, r *http.Request) {
	data, ok := s.read(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", contentType(chi.URLParam(r, "name")))
	_, _ = w.Write(data)
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	name := chi.URLParam(r, "name")
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "payload not found")
		return nil, false
	}
	data, err := fs.ReadFile(s.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "payload not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to read payload")
		return nil, false
	}
	return data, true
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return "application/json"
	case ".plist":
		return "application/x-plist"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
