// Package server exposes the inspection pipeline over HTTP. It stays
// thin: multipart parsing, fault classification, and JSON rendering; all
// domain behavior lives in the inspection service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"bims-inspector/inspection"
)

const (
	maxUploadBytes    = 32 << 20
	readHeaderTimeout = 5 * time.Second
)

// InspectionService is the pipeline surface the transport needs.
type InspectionService interface {
	Evaluate(ctx context.Context, payloads [][]byte) (*inspection.Result, error)
	IndexReference(ctx context.Context, payload []byte, status inspection.Status, description string) (string, error)
}

// New builds the HTTP server for the given service.
func New(addr string, svc InspectionService) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svc),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// NewRouter builds the chi router with all routes mounted.
func NewRouter(svc InspectionService) *chi.Mux {
	h := &handlers{svc: svc, log: logrus.WithField("component", "http")}

	router := chi.NewRouter()
	router.Use(
		chiMiddleware.RequestID,
		requestLogger,
		chiMiddleware.Recoverer,
	)

	router.Get("/health", h.health)
	router.Post("/evaluate", h.evaluate)
	router.Post("/index", h.index)

	return router
}

// requestLogger logs one line per served request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logrus.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   resp.Status(),
				"duration": time.Since(start),
			}).Info("http request served")
		}()

		next.ServeHTTP(resp, r)
	})
}

type handlers struct {
	svc InspectionService
	log *logrus.Entry
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// evaluate accepts 1-4 images under the multipart field "files" and
// returns the inspection verdict.
func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		renderError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		renderError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	payloads := make([][]byte, 0, len(files))
	for _, header := range files {
		data, err := readUpload(header)
		if err != nil {
			renderError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload %s: %v", header.Filename, err))
			return
		}
		payloads = append(payloads, data)
	}

	result, err := h.svc.Evaluate(r.Context(), payloads)
	if err != nil {
		if errors.Is(err, inspection.ErrBadInput) {
			renderError(w, http.StatusBadRequest, fmt.Sprintf("Image processing failed: %v", err))
			return
		}
		h.log.WithError(err).Error("evaluation failed")
		renderError(w, http.StatusInternalServerError, fmt.Sprintf("AI Analysis failed: %v", err))
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// index accepts a single labeled reference image: multipart field "file"
// plus "status" and "description" form values.
func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		renderError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		renderError(w, http.StatusBadRequest, "file is required")
		return
	}

	payload, err := readUpload(files[0])
	if err != nil {
		renderError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	status := inspection.Status(r.FormValue("status"))
	description := r.FormValue("description")

	id, err := h.svc.IndexReference(r.Context(), payload, status, description)
	if err != nil {
		if errors.Is(err, inspection.ErrBadInput) {
			renderError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithError(err).Error("indexing failed")
		renderError(w, http.StatusInternalServerError, err.Error())
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"message": "Image indexed successfully",
		"id":      id,
	})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func renderJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func renderError(w http.ResponseWriter, code int, detail string) {
	renderJSON(w, code, map[string]string{"detail": detail})
}
