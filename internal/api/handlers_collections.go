package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dghofer/docsight/internal/parser"
	"github.com/dghofer/docsight/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleCreateCollection accepts a multipart upload of one or more documents
// and queues them as a collection build.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var inputs []pipeline.InputFile
	var rejected []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		inputs = append(inputs, pipeline.InputFile{Name: filename, Data: data})
	}

	if len(inputs) == 0 {
		jsonError(w, "no acceptable files in upload", http.StatusBadRequest)
		return
	}

	c := pipeline.NewCollection(inputs)

	// Resubmitting the same corpus reuses the existing collection.
	if existing := s.orchestrator.GetCollection(c.ID); existing != nil {
		s.respondAccepted(w, existing, rejected)
		return
	}

	if err := s.orchestrator.Submit(c); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.respondAccepted(w, c, rejected)
}

func (s *Server) respondAccepted(w http.ResponseWriter, c *pipeline.Collection, rejected []map[string]any) {
	snap := c.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"collection_id": snap.ID,
		"status":        snap.Status,
		"doc_count":     snap.DocCount,
		"rejected":      rejected,
		"poll_url":      fmt.Sprintf("/api/collections/%s/status", snap.ID),
	})
}

func (s *Server) handleCollectionStatus(w http.ResponseWriter, r *http.Request) {
	c := s.orchestrator.GetCollection(chi.URLParam(r, "collectionID"))
	if c == nil {
		jsonError(w, "collection not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c.Snapshot())
}

func (s *Server) handleCollectionOutlines(w http.ResponseWriter, r *http.Request) {
	c := s.orchestrator.GetCollection(chi.URLParam(r, "collectionID"))
	if c == nil {
		jsonError(w, "collection not found", http.StatusNotFound)
		return
	}
	if c.Index() == nil {
		jsonError(w, fmt.Sprintf("collection is not ready (status %s)", c.Snapshot().Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"collection_id": c.ID,
		"documents":     c.Outlines(),
	})
}

type queryRequest struct {
	Persona     string `json:"persona"`
	JobToBeDone string `json:"jobToBeDone"`
	Question    string `json:"question,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.JobToBeDone) == "" {
		jsonError(w, "jobToBeDone is required", http.StatusBadRequest)
		return
	}

	result, err := s.orchestrator.Query(r.Context(), collectionID, pipeline.QueryParams{
		Persona:  req.Persona,
		Job:      req.JobToBeDone,
		Question: req.Question,
		Limit:    req.Limit,
	})
	if err != nil {
		code := http.StatusConflict
		if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
		}
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.DeleteCollection(chi.URLParam(r, "collectionID")) {
		jsonError(w, "collection not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
