package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/clock"
)

func uploadFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fixture"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestUploadSuccessNotice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 5, "original_filename": "invoice.pdf", "file_size": 16, "status": "pending", "created_at": "2026-02-01T10:00:00", "updated_at": "2026-02-01T10:00:00"}`))
	}))
	defer server.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	refreshed := 0
	uploader := NewUploader(api.NewClient(server.URL, nil), fake,
		func(context.Context) { refreshed++ }, nil)

	doc, err := uploader.Upload(context.Background(), uploadFixture(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != api.StatusPending {
		t.Errorf("doc.Status = %q, want pending", doc.Status)
	}
	if refreshed != 1 {
		t.Errorf("refresh ran %d times, want 1", refreshed)
	}

	notice, ok := uploader.Notice()
	if !ok {
		t.Fatal("no notice after successful upload")
	}
	if notice.IsError {
		t.Error("success notice flagged as error")
	}
	if notice.Document == nil || notice.Document.ID != 5 {
		t.Error("notice does not carry the created document")
	}

	// The notice clears on its own after the display window.
	fake.Advance(4 * time.Second)
	if _, ok := uploader.Notice(); !ok {
		t.Fatal("notice cleared before its deadline")
	}
	fake.Advance(time.Second)
	if _, ok := uploader.Notice(); ok {
		t.Error("notice still visible past its deadline")
	}
}

func TestUploadErrorNotice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Unsupported file type"}`))
	}))
	defer server.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	uploader := NewUploader(api.NewClient(server.URL, nil), fake, nil, nil)

	_, err := uploader.Upload(context.Background(), uploadFixture(t))
	var transferErr *api.TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("error = %v (%T), want *api.TransferError", err, err)
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("TransferError does not unwrap to the API error")
	}

	notice, ok := uploader.Notice()
	if !ok {
		t.Fatal("no notice after failed upload")
	}
	if !notice.IsError {
		t.Error("failure notice not flagged as error")
	}
	if notice.Message != "Unsupported file type" {
		t.Errorf("notice message = %q, want the server detail", notice.Message)
	}

	if uploader.Uploading() {
		t.Error("uploading flag stuck after failure")
	}
}

func TestUploadDismiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1, "original_filename": "invoice.pdf", "file_size": 16, "status": "pending", "created_at": "2026-02-01T10:00:00", "updated_at": "2026-02-01T10:00:00"}`))
	}))
	defer server.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	uploader := NewUploader(api.NewClient(server.URL, nil), fake, nil, nil)

	if _, err := uploader.Upload(context.Background(), uploadFixture(t)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	uploader.Dismiss()
	if _, ok := uploader.Notice(); ok {
		t.Error("notice survived Dismiss")
	}

	// The orphaned auto-clear deadline must be inert.
	fake.Advance(10 * time.Second)
	if _, ok := uploader.Notice(); ok {
		t.Error("dismissed notice came back")
	}
}

func TestUploadSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1, "original_filename": "invoice.pdf", "file_size": 16, "status": "pending", "created_at": "2026-02-01T10:00:00", "updated_at": "2026-02-01T10:00:00"}`))
	}))
	defer server.Close()

	uploader := NewUploader(api.NewClient(server.URL, nil), clock.NewFake(time.Unix(0, 0)), nil, nil)
	path := uploadFixture(t)

	firstDone := make(chan error, 1)
	go func() {
		_, err := uploader.Upload(context.Background(), path)
		firstDone <- err
	}()
	<-started

	if !uploader.Uploading() {
		t.Error("Uploading false while an upload is in flight")
	}
	if _, err := uploader.Upload(context.Background(), path); !errors.Is(err, ErrUploadInFlight) {
		t.Errorf("concurrent upload error = %v, want ErrUploadInFlight", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if uploader.Uploading() {
		t.Error("Uploading still true after completion")
	}
}

func TestUploadNewNoticeSupersedesOldClear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 2, "original_filename": "invoice.pdf", "file_size": 16, "status": "pending", "created_at": "2026-02-01T10:00:00", "updated_at": "2026-02-01T10:00:00"}`))
	}))
	defer server.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	uploader := NewUploader(api.NewClient(server.URL, nil), fake, nil, nil)
	path := uploadFixture(t)

	if _, err := uploader.Upload(context.Background(), path); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	fake.Advance(3 * time.Second)
	if _, err := uploader.Upload(context.Background(), path); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	// t=6s: past the first notice's deadline, before the second's.
	fake.Advance(3 * time.Second)
	if _, ok := uploader.Notice(); !ok {
		t.Fatal("second notice cleared by the first notice's timer")
	}
	fake.Advance(2 * time.Second)
	if _, ok := uploader.Notice(); ok {
		t.Error("second notice still visible past its own deadline")
	}
}
