package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/config"
	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	"github.com/jmorelli/video-sub-pipeline/internal/media"
	"github.com/jmorelli/video-sub-pipeline/internal/provider"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
)

// handleUpload accepts a multipart video upload and enqueues a pipeline job
// for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	targetLanguage := r.FormValue("target_language")
	if err := s.languages.ValidateTarget(targetLanguage); err != nil {
		writeKindError(w, err)
		return
	}
	sourceLanguage := r.FormValue("source_language")
	if sourceLanguage == "" {
		sourceLanguage = s.defaultSourceLanguage
	}
	if err := s.languages.ValidateSource(sourceLanguage); err != nil {
		writeKindError(w, err)
		return
	}
	providerName := r.FormValue("provider")
	if providerName != "" {
		if _, err := provider.Parse(providerName); err != nil {
			writeKindError(w, err)
			return
		}
	}

	fileID, path, err := s.store.SaveUpload(file, header.Filename)
	if err != nil {
		writeKindError(w, err)
		return
	}

	job, created := s.queue.Enqueue(jobs.EnqueueRequest{
		Source:    "upload",
		DedupeKey: fileID + "|" + targetLanguage,
		Payload: jobs.JobPayload{
			VideoPath:      path,
			FileID:         fileID,
			SourceLanguage: sourceLanguage,
			TargetLanguage: targetLanguage,
			Provider:       providerName,
		},
	})
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{
		"file_id": fileID,
		"created": created,
		"job":     job,
	})
}

type enqueueJobRequest struct {
	Source         string `json:"source"`
	DedupeKey      string `json:"dedupe_key"`
	VideoPath      string `json:"video_path"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.List())
	case http.MethodPost:
		var req enqueueJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}
		if req.VideoPath == "" {
			writeError(w, http.StatusBadRequest, "video_path is required")
			return
		}
		if !storage.FileExists(req.VideoPath) {
			writeError(w, http.StatusNotFound, "video file not found")
			return
		}
		if err := s.languages.ValidateTarget(req.TargetLanguage); err != nil {
			writeKindError(w, err)
			return
		}
		if req.SourceLanguage == "" {
			req.SourceLanguage = s.defaultSourceLanguage
		}
		if err := s.languages.ValidateSource(req.SourceLanguage); err != nil {
			writeKindError(w, err)
			return
		}
		if req.Provider != "" {
			if _, err := provider.Parse(req.Provider); err != nil {
				writeKindError(w, err)
				return
			}
		}
		if req.DedupeKey == "" {
			req.DedupeKey = req.VideoPath + "|" + req.TargetLanguage
		}

		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    req.Source,
			DedupeKey: req.DedupeKey,
			Payload: jobs.JobPayload{
				VideoPath:      req.VideoPath,
				SourceLanguage: req.SourceLanguage,
				TargetLanguage: req.TargetLanguage,
				Provider:       req.Provider,
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id = strings.TrimSuffix(id, "/")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}

	job, ok := s.queue.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleDownload serves generated artifacts: /api/files/{id}/download?kind=output
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if !strings.HasSuffix(path, "/download") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	fileID := strings.TrimSuffix(path, "/download")
	fileID = strings.TrimSuffix(fileID, "/")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "missing file id")
		return
	}

	kind := storage.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = storage.KindOutput
	}

	filePath, err := s.store.Find(kind, fileID)
	if err != nil {
		writeKindError(w, err)
		return
	}
	http.ServeFile(w, r, filePath)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": s.languages.Describe(),
	})
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.scanner == nil {
		writeError(w, http.StatusNotImplemented, "library scan is not configured")
		return
	}
	lib, err := s.scanner.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.scanner == nil {
		writeError(w, http.StatusNotImplemented, "library scan is not configured")
		return
	}
	s.scanner.Invalidate()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok": true,
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(s.languages); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providers := make(map[string]bool)
	if s.gateway != nil {
		for _, p := range provider.Names() {
			providers[p] = s.gateway.Configured(provider.Provider(p))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"ffmpeg_installed": media.CheckFFmpegInstalled(),
		"providers":        providers,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// writeKindError maps typed pipeline errors onto HTTP status codes.
func writeKindError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindInvalidArgument:
		status = http.StatusBadRequest
	case errs.KindProviderUnavailable:
		status = http.StatusServiceUnavailable
	case errs.KindUpstreamFailure:
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}
