// Package httpapi exposes the pipeline over HTTP: uploads, job management,
// a live job stream, file downloads, and runtime settings.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/jmorelli/video-sub-pipeline/internal/config"
	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/library"
	"github.com/jmorelli/video-sub-pipeline/internal/provider"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
)

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

type Server struct {
	queue     *jobs.Queue
	store     *storage.Manager
	languages language.Set

	gateway  *provider.Gateway
	scanner  *library.Scanner
	settings runtimeSettingsStore
	apply    runtimeSettingsApplier

	defaultSourceLanguage string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithGateway(gateway *provider.Gateway) Option {
	return func(s *Server) {
		s.gateway = gateway
	}
}

func WithScanner(scanner *library.Scanner) Option {
	return func(s *Server) {
		s.scanner = scanner
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

func WithDefaultSourceLanguage(lang string) Option {
	return func(s *Server) {
		s.defaultSourceLanguage = lang
	}
}

func NewServer(queue *jobs.Queue, store *storage.Manager, languages language.Set, opts ...Option) *Server {
	s := &Server{
		queue:                 queue,
		store:                 store,
		languages:             languages,
		defaultSourceLanguage: "en",
		mux:                   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/stream", s.handleJobStream)
	s.mux.HandleFunc("/api/jobs/", s.handleJobByID)
	s.mux.HandleFunc("/api/files/", s.handleDownload)
	s.mux.HandleFunc("/api/languages", s.handleLanguages)
	s.mux.HandleFunc("/api/library", s.handleLibrary)
	s.mux.HandleFunc("/api/scan", s.handleScan)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}
