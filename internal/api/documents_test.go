package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestListDocumentsQuery(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		page       int
		pageSize   int
		wantStatus string // empty means the parameter must be absent
	}{
		{name: "unfiltered", status: "", page: 1, pageSize: 20, wantStatus: ""},
		{name: "filtered", status: StatusCompleted, page: 3, pageSize: 50, wantStatus: "completed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/documents/" {
					t.Errorf("path = %q, want /api/v1/documents/", r.URL.Path)
				}
				query := r.URL.Query()
				if got := query.Get("page"); got != strconv.Itoa(tc.page) {
					t.Errorf("page = %q, want %d", got, tc.page)
				}
				if got := query.Get("page_size"); got != strconv.Itoa(tc.pageSize) {
					t.Errorf("page_size = %q, want %d", got, tc.pageSize)
				}
				if _, present := query["status"]; present != (tc.wantStatus != "") {
					t.Errorf("status parameter present = %v, want %v", present, tc.wantStatus != "")
				}
				if tc.wantStatus != "" && query.Get("status") != tc.wantStatus {
					t.Errorf("status = %q, want %q", query.Get("status"), tc.wantStatus)
				}
				w.Write([]byte(`{"items": [], "total": 0, "page": 1, "page_size": 20, "total_pages": 0}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, &memoryTokens{token: "tok"})
			if _, err := client.ListDocuments(context.Background(), tc.status, tc.page, tc.pageSize); err != nil {
				t.Fatalf("ListDocuments: %v", err)
			}
		})
	}
}

func TestUploadDocumentMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	content := []byte("%PDF-1.4 test payload")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/documents/upload" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "report.pdf" {
			t.Errorf("filename = %q, want report.pdf", header.Filename)
		}
		got, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("uploaded %d bytes, want %d", len(got), len(content))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42, "original_filename": "report.pdf", "file_size": 21, "status": "pending", "created_at": "2026-02-01T10:00:00", "updated_at": "2026-02-01T10:00:00"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &memoryTokens{token: "tok"})
	doc, err := client.UploadDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if doc.ID != 42 {
		t.Errorf("doc.ID = %d, want 42", doc.ID)
	}
	if doc.Status != StatusPending {
		t.Errorf("doc.Status = %q, want pending", doc.Status)
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	client := NewClient("http://unused.invalid", &memoryTokens{token: "tok"})
	_, err := client.UploadDocument(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	if err == nil {
		t.Fatal("upload of a missing file succeeded")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestDownloadDocumentStreams(t *testing.T) {
	payload := []byte("original bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/documents/9/download" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, download must carry the token", got)
		}
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(server.URL, &memoryTokens{token: "tok"})
	body, err := client.DownloadDocument(context.Background(), 9)
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	defer body.Close()
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded %q, want %q", got, payload)
	}
}

func TestExportDocumentsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "export backend unavailable"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &memoryTokens{token: "tok"})
	_, err := client.ExportDocuments(context.Background(), ExportCSV)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v (%T), want *APIError", err, err)
	}
	if apiErr.Detail != "export backend unavailable" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}
