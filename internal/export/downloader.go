// Package export materializes server-side payloads as local files:
// bulk collection exports, single-document downloads, and a local
// parquet rendering of the export for offline analysis.
//
// Every path follows the same discipline: stream into a temporary
// file, promote it with a rename on success, and remove it on any
// failure so no partial file is ever left under the final name.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docpilot-cli/docpilot/internal/api"
)

// Fixed filenames for collection exports, one per format.
const (
	JSONExportFilename    = "documents_export.json"
	CSVExportFilename     = "documents_export.csv"
	ParquetExportFilename = "documents_export.parquet"
)

// Downloader retrieves binary payloads through the authenticated API
// client.
type Downloader struct {
	client *api.Client
}

// NewDownloader creates a downloader over the client.
func NewDownloader(client *api.Client) *Downloader {
	return &Downloader{client: client}
}

// ExportCollection fetches the bulk export in the given format and
// writes it under dir with the format's fixed filename. Returns the
// written path.
func (d *Downloader) ExportCollection(ctx context.Context, format api.ExportFormat, dir string) (string, error) {
	var filename string
	switch format {
	case api.ExportJSON:
		filename = JSONExportFilename
	case api.ExportCSV:
		filename = CSVExportFilename
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	body, err := d.client.ExportDocuments(ctx, format)
	if err != nil {
		return "", &api.TransferError{Op: "export " + string(format), Err: err}
	}
	defer body.Close()

	path := filepath.Join(dir, filename)
	if err := writeFile(path, body); err != nil {
		return "", &api.TransferError{Op: "export " + string(format), Err: err}
	}

	slog.Debug("export written", "format", format, "path", path)
	return path, nil
}

// DownloadDocument fetches a document's original content and writes
// it under dir, preserving the original filename. The request goes
// through the API client so it carries the bearer token; a bare
// hyperlink cannot. Returns the written path.
func (d *Downloader) DownloadDocument(ctx context.Context, id int64, filename, dir string) (string, error) {
	// Server-supplied names are reduced to a basename so a hostile
	// value cannot write outside dir.
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		filename = fmt.Sprintf("document_%d", id)
	}

	body, err := d.client.DownloadDocument(ctx, id)
	if err != nil {
		return "", &api.TransferError{Op: fmt.Sprintf("download document %d", id), Err: err}
	}
	defer body.Close()

	path := filepath.Join(dir, filename)
	if err := writeFile(path, body); err != nil {
		return "", &api.TransferError{Op: fmt.Sprintf("download document %d", id), Err: err}
	}

	slog.Debug("document downloaded", "id", id, "path", path)
	return path, nil
}

// writeFile streams src into path via a temporary neighbor file. The
// temporary file is released on every failure path.
func writeFile(path string, src io.Reader) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, src); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish write: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
