package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/pex/internal/loader"
	"github.com/JonMunkholm/pex/internal/web/templates"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// loadResponse is the body of a successful load.
type loadResponse struct {
	LoadID string           `json:"load_id"`
	File   string           `json:"file"`
	Sheets []loader.Summary `json:"sheets"`
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string        `json:"status"`
	Uptime string        `json:"uptime"`
	Loads  LimiterStatus `json:"loads"`
}

// handleHealth reports liveness and load slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Loads:  s.limiter.Status(),
	})
}

// handleFormats lists the supported extensions and their readers.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, loader.Formats())
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.Page("Preview a file", templates.UploadForm(loader.Formats(), s.cfg.Loader))).ServeHTTP(w, r)
}

// handleLoad loads an uploaded file and returns its summary as JSON.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	res, err := s.loadUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handlePreview loads an uploaded file and renders its preview tables.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	res, err := s.loadUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	templ.Handler(templates.Page(res.File, templates.Preview(res.File, res.LoadID, res.Sheets))).ServeHTTP(w, r)
}

// loadUpload stages the uploaded "file" field to disk and loads it with the
// options from the form. A load slot is taken only once the upload is on
// disk, so slow clients never hold one.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request) (res *loadResponse, err error) {
	ctx := r.Context()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "too large") {
			return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
		}
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !loader.Supported(ext) {
		return nil, &loader.UnsupportedFileTypeError{Ext: ext}
	}

	start := time.Now()
	defer func() {
		code, rows := "OK", 0
		if err != nil {
			code = loader.MapError(err).Code
		} else {
			for _, sum := range res.Sheets {
				rows += sum.Rows
			}
		}
		s.metrics.RecordLoad(ext, code, time.Since(start), rows)
	}()

	opts, err := optionsFromForm(r, s.cfg.Loader.Options())
	if err != nil {
		return nil, err
	}
	previewRows, err := previewRowsFromForm(r, s.cfg.Loader.PreviewRows)
	if err != nil {
		return nil, err
	}
	opts.Logger = loadLogger(r, name)

	// The readers work on paths, so the upload is staged under its own
	// extension for dispatch.
	tmp, err := os.CreateTemp(s.cfg.Upload.TempDir, "pex-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	l, err := loader.Load(ctx, tmp.Name(), loader.WithOptions(opts))
	if err != nil {
		return nil, err
	}

	return &loadResponse{
		LoadID: l.LoadID,
		File:   name,
		Sheets: l.Summaries(previewRows),
	}, nil
}
