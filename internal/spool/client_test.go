package spool_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spoolhq/spool-mcp/internal/spool"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *spool.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return spool.NewClient(ts.URL, "sk-test", 5*time.Second)
}

func TestListCollections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/collections" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"result": [
			{"id": "c1", "name": "docs", "created_at": "2024-05-01T10:00:00Z"},
			{"id": "c2", "name": "notes", "created_at": "2024-06-01T10:00:00Z"}
		]}`))
	})

	cols, err := client.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("got %d collections, want 2", len(cols))
	}
	if cols[0].ID != "c1" || cols[0].Name != "docs" {
		t.Errorf("first collection = %+v", cols[0])
	}
	if cols[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
}

func TestCreateCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/collections" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["name"] != "reports" {
			t.Errorf("name = %q, want reports", body["name"])
		}
		w.Write([]byte(`{"result": {"id": "c9", "name": "reports", "created_at": "2024-07-01T00:00:00Z"}}`))
	})

	col, err := client.CreateCollection(context.Background(), "reports")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if col.ID != "c9" {
		t.Errorf("ID = %q, want c9", col.ID)
	}
}

func TestAddFilesSendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/collections/c1/files" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Files []spool.FileToAdd `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Files) != 1 || body.Files[0].URL != "https://example.com/doc.pdf" {
			t.Errorf("files = %+v", body.Files)
		}
		w.Write([]byte(`{"result": [{"id": "f1", "name": "doc.pdf", "status": "pending"}]}`))
	})

	files, err := client.AddFiles(context.Background(), "c1", []spool.FileToAdd{
		{Name: "doc.pdf", URL: "https://example.com/doc.pdf"},
	})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if len(files) != 1 || files[0].ID != "f1" {
		t.Errorf("files = %+v", files)
	}
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/collections/c1/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "invoices" {
			t.Errorf("text = %q", body["text"])
		}
		w.Write([]byte(`{"result": [{"content": "hello", "score": 0.9}]}`))
	})

	matches, err := client.Search(context.Background(), "c1", "invoices")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Content != "hello" || matches[0].Score != 0.9 {
		t.Errorf("matches = %+v", matches)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "collection not found"}}`))
	})

	_, err := client.GetCollection(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *spool.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *spool.Error", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "collection not found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Error() != "collection not found" {
		t.Errorf("Error() = %q, want the message verbatim", apiErr.Error())
	}
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.ListCollections(context.Background())
	var apiErr *spool.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *spool.Error", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestMissingResultField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.ListCollections(context.Background())
	if err == nil {
		t.Fatal("expected error for missing result field")
	}
	var apiErr *spool.Error
	if errors.As(err, &apiErr) {
		t.Error("shape errors should not be *spool.Error")
	}
}

func TestStatsPassthrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/collections/c1/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"result": {"files": 3, "chunks": 120, "status_counts": {"indexed": 3}}}`))
	})

	stats, err := client.CollectionStats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("CollectionStats: %v", err)
	}
	if stats["files"] != float64(3) {
		t.Errorf("stats[files] = %v", stats["files"])
	}
	if _, ok := stats["status_counts"].(map[string]interface{}); !ok {
		t.Errorf("status_counts not passed through: %v", stats["status_counts"])
	}
}

func TestTestConnection(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": []}`))
	})
	if err := healthy.TestConnection(context.Background()); err != nil {
		t.Errorf("TestConnection on healthy server: %v", err)
	}

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "maintenance"}}`))
	})
	if err := down.TestConnection(context.Background()); err == nil {
		t.Error("TestConnection should fail against a 503")
	}
}
