package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/docpilot-cli/docpilot/internal/api"
)

// exportedDocument mirrors one record of the server's JSON export.
type exportedDocument struct {
	ID                int64                  `json:"id"`
	Filename          string                 `json:"filename"`
	Status            string                 `json:"status"`
	FileSize          int64                  `json:"file_size"`
	MimeType          string                 `json:"mime_type"`
	CreatedAt         string                 `json:"created_at"`
	ProcessedAt       string                 `json:"processed_at"`
	ExtractedMetadata *api.ExtractedMetadata `json:"extracted_metadata"`
}

// ParquetRow is the flattened parquet schema for one exported
// document. Metadata columns are empty when extraction has not
// completed.
type ParquetRow struct {
	ID           int64  `parquet:"id"`
	Filename     string `parquet:"filename"`
	Status       string `parquet:"status"`
	FileSize     int64  `parquet:"file_size"`
	MimeType     string `parquet:"mime_type,optional"`
	CreatedAt    string `parquet:"created_at,optional"`
	ProcessedAt  string `parquet:"processed_at,optional"`
	DocumentType string `parquet:"document_type,optional"`
	PageCount    int32  `parquet:"page_count,optional"`
	WordCount    int32  `parquet:"word_count,optional"`
	Language     string `parquet:"language,optional"`
	Summary      string `parquet:"summary,optional"`
}

// MaterializeParquet fetches the JSON export and rewrites it as a
// parquet file under dir, for analysis with tooling that does not
// speak the platform's API. Returns the written path.
func (d *Downloader) MaterializeParquet(ctx context.Context, dir string) (string, error) {
	body, err := d.client.ExportDocuments(ctx, api.ExportJSON)
	if err != nil {
		return "", &api.TransferError{Op: "export parquet", Err: err}
	}
	defer body.Close()

	var records []exportedDocument
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return "", &api.TransferError{Op: "export parquet", Err: fmt.Errorf("failed to decode export: %w", err)}
	}

	rows := make([]ParquetRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, flattenRecord(record))
	}

	path := filepath.Join(dir, ParquetExportFilename)
	if err := writeParquet(path, rows); err != nil {
		return "", &api.TransferError{Op: "export parquet", Err: err}
	}

	slog.Debug("parquet export written", "path", path, "rows", len(rows))
	return path, nil
}

func flattenRecord(record exportedDocument) ParquetRow {
	row := ParquetRow{
		ID:          record.ID,
		Filename:    record.Filename,
		Status:      record.Status,
		FileSize:    record.FileSize,
		MimeType:    record.MimeType,
		CreatedAt:   record.CreatedAt,
		ProcessedAt: record.ProcessedAt,
	}
	if metadata := record.ExtractedMetadata; metadata != nil {
		row.DocumentType = metadata.DocumentType
		row.PageCount = int32(metadata.PageCount)
		row.WordCount = int32(metadata.WordCount)
		row.Language = metadata.Language
		row.Summary = metadata.Summary
	}
	return row
}

// writeParquet writes rows with the same temp-and-rename discipline
// as the raw exports.
func writeParquet(path string, rows []ParquetRow) (err error) {
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

	writer := parquet.NewGenericWriter[ParquetRow](tmp)
	if _, err = writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish write: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
