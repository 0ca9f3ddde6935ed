package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dghofer/docsight/internal/config"
	"github.com/dghofer/docsight/internal/pipeline"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator, func()) {
	t.Helper()
	cfg := config.Load()
	cfg.DocsightAPIKey = testAPIKey
	cfg.WorkerCount = 2
	cfg.QueryDeadline = 5 * time.Second

	orch := pipeline.NewOrchestrator(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	orch.Start(context.Background())
	return NewServer(orch, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg), orch, orch.Stop
}

func multipartUpload(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthEndpointIsPublic(t *testing.T) {
	s, _, stop := newTestServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCollectionsRequireAuth(t *testing.T) {
	s, _, stop := newTestServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collections", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/collections", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestCreateStatusQueryLifecycle(t *testing.T) {
	s, _, stop := newTestServer(t)
	defer stop()

	body, contentType := multipartUpload(t, "report.txt", []byte(
		"REVENUE SUMMARY\nRevenue grew twelve percent on subscription renewals.\n\n"+
			"MARKET OUTLOOK\nTrends point to continued growth and investment.\n"))
	req := authed(httptest.NewRequest(http.MethodPost, "/api/collections", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		CollectionID string `json:"collection_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.CollectionID == "" {
		t.Fatal("expected collection_id in response")
	}

	// Poll status until ready.
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet,
			"/api/collections/"+created.CollectionID+"/status", nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint returned %d", rec.Code)
		}
		var snap pipeline.Snapshot
		json.Unmarshal(rec.Body.Bytes(), &snap)
		if snap.Status == pipeline.StatusReady {
			break
		}
		if snap.Status == pipeline.StatusFailed {
			t.Fatalf("collection failed: %v", snap.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatal("collection never became ready")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Outlines are available once ready.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet,
		"/api/collections/"+created.CollectionID+"/outlines", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("outlines returned %d: %s", rec.Code, rec.Body.String())
	}

	// Query the ready collection.
	qbody := bytes.NewBufferString(`{"persona":"Investment Analyst","jobToBeDone":"Analyze revenue trends"}`)
	req = authed(httptest.NewRequest(http.MethodPost,
		"/api/collections/"+created.CollectionID+"/query", qbody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query returned %d: %s", rec.Code, rec.Body.String())
	}

	var result pipeline.QueryResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode query result: %v", err)
	}
	if len(result.ExtractedSections) == 0 {
		t.Error("expected ranked sections in query result")
	}
	if result.Metadata.JobToBeDone != "Analyze revenue trends" {
		t.Errorf("unexpected metadata: %+v", result.Metadata)
	}

	// Delete and confirm gone.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodDelete,
		"/api/collections/"+created.CollectionID, nil)))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 on delete, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet,
		"/api/collections/"+created.CollectionID+"/status", nil)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestQueryValidation(t *testing.T) {
	s, _, stop := newTestServer(t)
	defer stop()

	// Missing job.
	req := authed(httptest.NewRequest(http.MethodPost, "/api/collections/abc/query",
		bytes.NewBufferString(`{"persona":"analyst"}`)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing jobToBeDone, got %d", rec.Code)
	}

	// Unknown collection.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/collections/missing/query",
		bytes.NewBufferString(`{"persona":"analyst","jobToBeDone":"job"}`)))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", rec.Code)
	}
}

func TestCreateCollectionRejectsUnsupportedFiles(t *testing.T) {
	s, _, stop := newTestServer(t)
	defer stop()

	body, contentType := multipartUpload(t, "archive.zip", []byte("binary"))
	req := authed(httptest.NewRequest(http.MethodPost, "/api/collections", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when no acceptable files, got %d", rec.Code)
	}
}
