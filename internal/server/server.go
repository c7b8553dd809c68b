// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the formatter over HTTP.
//
//	GET  /             service description
//	GET  /health       liveness probe
//	POST /format-apa/  multipart or urlencoded form: text, file, output_format
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdiddy/apa-formatter/internal/convert"
	"github.com/pdiddy/apa-formatter/internal/format"
	"github.com/pdiddy/apa-formatter/internal/render"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Server routes HTTP requests to a Formatter.
type Server struct {
	formatter *format.Formatter
	cfg       types.ServerConfig
	logger    *slog.Logger
	router    *chi.Mux
	version   string
}

// New builds the router. A nil logger uses slog.Default.
func New(f *format.Formatter, cfg types.ServerConfig, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = types.DefaultConfig().Server.MaxUploadBytes
	}
	s := &Server{formatter: f, cfg: cfg, logger: logger, version: version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/format-apa", s.handleFormat)
	r.Post("/format-apa/", s.handleFormat)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":    "apa-formatter",
		"version":    s.version,
		"extensions": s.formatter.Extensions(),
		"outputs":    []format.Output{format.OutputHTML, format.OutputDOCX},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	in, err := readInput(r, s.cfg.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := format.ParseOutput(r.FormValue("output_format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.formatter.Format(r.Context(), in, out)
	if err != nil {
		s.formatError(w, r, err)
		return
	}

	if res.Output == format.OutputDOCX {
		w.Header().Set("Content-Type", res.Document.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Document.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Document.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Document.Data)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"formatted": string(res.Document.Data)})
}

func (s *Server) formatError(w http.ResponseWriter, r *http.Request, err error) {
	var renderErr *render.RenderError
	switch {
	case errors.Is(err, convert.ErrNoInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &renderErr):
		s.logger.Error("rendering failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "could not render document")
	default:
		s.logger.Error("formatting failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// readInput reads the text field and the optional file upload. ParseForm
// runs first so a url-encoded body over the cap reports its
// *http.MaxBytesError; ParseMultipartForm would drop it.
func readInput(r *http.Request, maxBytes int64) (format.Input, error) {
	if err := r.ParseForm(); err != nil {
		return format.Input{}, err
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return format.Input{}, err
	}
	in := format.Input{Text: r.FormValue("text")}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return format.Input{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return format.Input{}, err
	}
	in.Filename = header.Filename
	in.Data = data
	return in, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
