package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// MaxPageSize is the largest page the list endpoint accepts. The
// aggregate sweep always fetches at this size.
const MaxPageSize = 100

// DefaultPageSize is the page size for the display view.
const DefaultPageSize = 20

// ListDocuments fetches one page of the collection. An empty status
// means no filter.
func (c *Client) ListDocuments(ctx context.Context, status Status, page, pageSize int) (*Page[Document], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if status != "" {
		query.Set("status", string(status))
	}

	var result Page[Document]
	if err := c.getJSON(ctx, "/api/v1/documents/?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocument fetches a single document by ID.
func (c *Client) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/documents/%d", id), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadDocument submits the file at path as a single-file multipart
// payload. The server answers with the created document, status
// pending; processing happens asynchronously.
func (c *Client) UploadDocument(ctx context.Context, path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	// The payload is buffered through a pipe so large files are
	// streamed rather than held in memory.
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(writer.Close())
	}()

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/documents/upload", writer.FormDataContentType(), pipeReader)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc Document
	if err := decodeJSON(resp, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DownloadDocument opens a stream over the original file content of
// the given document. The request carries the bearer token; a plain
// hyperlink cannot. The caller must close the returned reader.
func (c *Client) DownloadDocument(ctx context.Context, id int64) (io.ReadCloser, error) {
	return c.stream(ctx, fmt.Sprintf("/api/v1/documents/%d/download", id))
}

// ExportFormat selects the bulk export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportDocuments opens a stream over the bulk export payload in the
// given format. The caller must close the returned reader.
func (c *Client) ExportDocuments(ctx context.Context, format ExportFormat) (io.ReadCloser, error) {
	return c.stream(ctx, "/api/v1/documents/export/"+string(format))
}

// stream performs an authenticated GET and hands the body to the
// caller on 200.
func (c *Client) stream(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Detail: readErrorDetail(resp.Body)}
		resp.Body.Close()
		return nil, apiErr
	}
	return resp.Body, nil
}
