package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dasmlab/notetrans/pkg/service"
	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/dasmlab/notetrans/pkg/translate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies on the API endpoints.
const maxBodyBytes = 1 << 20

// HTTPServer exposes the translate pipeline and the settings panel over HTTP.
type HTTPServer struct {
	pipeline *service.Pipeline
	store    settings.Store
	logger   *logrus.Logger
	port     int

	srv *http.Server
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(pipeline *service.Pipeline, store settings.Store, logger *logrus.Logger, port int) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPServer{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
		port:     port,
	}
}

// Handler returns the routes served by Start.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/translate", s.handleTranslate)
	mux.HandleFunc("/api/v1/settings", s.handleSettings)

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *HTTPServer) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"port": s.port,
	}).Info("Starting HTTP server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type translateRequest struct {
	Selection string `json:"selection"`
	// Editor marks the selection as coming from an editable view.
	Editor bool `json:"editor"`
}

type translateResult struct {
	Provider  translate.Provider `json:"provider"`
	Text      string             `json:"text,omitempty"`
	SpeakURL  string             `json:"speak_url,omitempty"`
	TSpeakURL string             `json:"tspeak_url,omitempty"`
	Phonetic  string             `json:"phonetic,omitempty"`
	From      string             `json:"from,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type translateResponse struct {
	Query   string            `json:"query"`
	Results []translateResult `json:"results"`
}

// handleTranslate runs the pipeline for one selection.
func (s *HTTPServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req translateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	view, err := s.pipeline.Run(r.Context(), toEvent(req))
	if err != nil {
		var mce *translate.MissingCredentialsError
		switch {
		case errors.Is(err, translate.ErrNoProviderEnabled):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.As(err, &mce):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   mce.Error(),
				"missing": mce.Fields,
			})
		default:
			s.logger.WithError(err).Error("Translate request failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, toResponse(view))
}

func toEvent(req translateRequest) service.TranslateRequested {
	if req.Editor {
		return service.TranslateRequested{
			HasActiveEditor: true,
			EditorSelection: func() string { return req.Selection },
		}
	}
	return service.TranslateRequested{
		ViewSelection: func() (string, bool) { return req.Selection, req.Selection != "" },
	}
}

func toResponse(view *service.View) translateResponse {
	resp := translateResponse{
		Query:   view.Query,
		Results: make([]translateResult, 0, len(view.Outcomes)),
	}
	for _, o := range view.Outcomes {
		tr := translateResult{Provider: o.Provider}
		if o.Err != nil {
			tr.Error = o.Err.Error()
		} else if o.Result != nil {
			tr.Text = o.Result.TranslatedText
			tr.SpeakURL = o.Result.SpeakURL
			tr.TSpeakURL = o.Result.TSpeakURL
			tr.Phonetic = o.Result.Phonetic
			tr.From = o.Result.DetectedSource
		}
		resp.Results = append(resp.Results, tr)
	}
	return resp
}

// handleSettings returns the masked settings on GET and applies key/value
// edits on PUT. Every PUT is saved immediately.
func (s *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cur, err := s.store.Load()
		if err != nil {
			s.logger.WithError(err).Error("Failed to load settings")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, cur.Masked())

	case http.MethodPut:
		var edits map[string]string
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&edits); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
			return
		}

		cur, err := s.store.Load()
		if err != nil {
			s.logger.WithError(err).Error("Failed to load settings")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		for k, v := range edits {
			if err := cur.Set(k, v); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
		}
		if err := s.store.Save(cur); err != nil {
			s.logger.WithError(err).Error("Failed to save settings")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		keys := make([]string, 0, len(edits))
		for k := range edits {
			keys = append(keys, k)
		}
		s.logger.WithField("keys", keys).Info("Settings updated")
		writeJSON(w, http.StatusOK, cur.Masked())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleHealth provides a health check endpoint.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.pipeline.Runnable() {
		status = "not_runnable"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
