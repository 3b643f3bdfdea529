package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/dgallion1/docfreeze/internal/export"
	"github.com/dgallion1/docfreeze/internal/freeze"
	"github.com/dgallion1/docfreeze/internal/parser"
	"github.com/dgallion1/docfreeze/internal/pipeline"
	"github.com/dgallion1/docfreeze/internal/render"
	"github.com/dgallion1/docfreeze/internal/vault"
	"github.com/go-chi/chi/v5"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type freezeRequest struct {
	Path   string `json:"path"`
	Mode   string `json:"mode"`
	Format string `json:"format"`
}

type batchRequest struct {
	Paths []string `json:"paths"`
	Mode  string   `json:"mode"`
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	var req freezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	docPath, err := cleanDocPath(req.Path)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := s.orchestrator.Submit(docPath, mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"path":     docPath,
		"mode":     mode,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/freeze/%s/status", job.ID),
	})
}

func (s *Server) handleBatchFreeze(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		jsonError(w, "at least one path is required", http.StatusBadRequest)
		return
	}
	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(req.Paths))
	for _, p := range req.Paths {
		docPath, err := cleanDocPath(p)
		if err != nil {
			results = append(results, map[string]any{"path": p, "error": err.Error()})
			continue
		}
		job, err := s.orchestrator.Submit(docPath, mode)
		if err != nil {
			results = append(results, map[string]any{"path": docPath, "error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"path":     docPath,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/freeze/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleFreezeStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// handlePreview freezes a document synchronously and returns the result
// without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req freezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	docPath, err := cleanDocPath(req.Path)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	f := s.orchestrator.Freezer()
	switch strings.ToLower(req.Format) {
	case "", "markdown", "md":
		text, err := f.Produce(ctx, docPath, mode)
		if err != nil {
			s.freezeError(w, docPath, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(text))

	case "html":
		tree, err := f.FreezeTree(ctx, docPath)
		if err != nil {
			s.freezeError(w, docPath, err)
			return
		}
		page, err := render.HTML(tree, f.Syntax())
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)

	case "docx":
		tree, err := f.FreezeTree(ctx, docPath)
		if err != nil {
			s.freezeError(w, docPath, err)
			return
		}
		var buf bytes.Buffer
		if err := export.DOCX(tree, &buf); err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		name := strings.TrimSuffix(path.Base(docPath), path.Ext(docPath)) + pipeline.SuffixFreeze + ".docx"
		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Write(buf.Bytes())

	default:
		jsonError(w, fmt.Sprintf("unsupported format: %s", req.Format), http.StatusBadRequest)
	}
}

// freezeError maps pipeline failures to status codes.
func (s *Server) freezeError(w http.ResponseWriter, docPath string, err error) {
	var (
		unresolved *freeze.UnresolvedEmbedError
		cyclic     *freeze.CyclicEmbedError
		readErr    *freeze.ReadError
	)
	switch {
	case errors.As(err, &unresolved), errors.As(err, &cyclic):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &readErr) && readErr.Path == docPath && errors.Is(err, vault.ErrNotFound):
		jsonError(w, "document not found: "+docPath, http.StatusNotFound)
	case errors.Is(err, freeze.ErrFreeze):
		s.log.Error("freeze failed", "path", docPath, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
	default:
		s.log.Error("freeze failed", "path", docPath, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// cleanDocPath normalizes a vault-relative markdown path from a request.
func cleanDocPath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if p == "" {
		return "", errors.New("path is required")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path escapes the vault: %s", p)
		}
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !parser.IsSupportedExtension(p) {
		return "", fmt.Errorf("unsupported file type: %s", path.Ext(p))
	}
	return p, nil
}
