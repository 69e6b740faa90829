package api

import (
	"fmt"
	"strings"
	"time"
)

// Status is the processing state of a document. Transitions are
// monotonic on the server: pending -> processing -> completed or
// failed. A status never moves backward.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Statuses lists every document status in pipeline order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// ParseStatus validates a status string from user input. The empty
// string and "all" both mean "no filter" and return the empty Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "completed":
		return StatusCompleted, nil
	case "failed":
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown status %q (expected pending, processing, completed, or failed)", s)
	}
}

// Rank orders statuses along the processing pipeline. Terminal states
// share the highest rank. Useful for asserting that an observed
// status change never regressed.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Timestamp wraps time.Time to tolerate the backend's timestamp
// encodings. The platform emits ISO 8601 both with and without a
// timezone offset, and with varying sub-second precision.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// Profile is the authenticated user record returned by the auth
// endpoints.
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role,omitempty"`
	IsActive  bool      `json:"is_active"`
	TenantID  int64     `json:"tenant_id"`
	CreatedAt Timestamp `json:"created_at"`
}

// DisplayName returns the friendliest available identifier.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// Entities holds the named entities the backend extracted from a
// document. Every field may be absent.
type Entities struct {
	Dates        []string `json:"dates,omitempty"`
	Amounts      []string `json:"amounts,omitempty"`
	Companies    []string `json:"companies,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	PhoneNumbers []string `json:"phone_numbers,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// ExtractedMetadata is the backend's analysis of a completed document.
// All fields are optional; display code must tolerate absence.
type ExtractedMetadata struct {
	DocumentType         string    `json:"document_type,omitempty"`
	PageCount            int       `json:"page_count,omitempty"`
	WordCount            int       `json:"word_count,omitempty"`
	Language             string    `json:"language,omitempty"`
	Summary              string    `json:"summary,omitempty"`
	ContentCategories    []string  `json:"content_categories,omitempty"`
	Entities             *Entities `json:"entities,omitempty"`
	ExtractedTextPreview string    `json:"extracted_text_preview,omitempty"`
}

// Document is one uploaded document as reported by the platform.
// ExtractedMetadata appears only once Status reaches completed;
// ErrorMessage only when Status is failed.
type Document struct {
	ID                int64              `json:"id"`
	Filename          string             `json:"filename,omitempty"`
	OriginalFilename  string             `json:"original_filename"`
	FileSize          int64              `json:"file_size"`
	MimeType          string             `json:"mime_type,omitempty"`
	Status            Status             `json:"status"`
	ExtractedMetadata *ExtractedMetadata `json:"extracted_metadata,omitempty"`
	ErrorMessage      string             `json:"error_message,omitempty"`
	TenantID          int64              `json:"tenant_id,omitempty"`
	UploadedByUserID  int64              `json:"uploaded_by_user_id,omitempty"`
	CreatedAt         Timestamp          `json:"created_at"`
	UpdatedAt         Timestamp          `json:"updated_at"`
	ProcessedAt       *Timestamp         `json:"processed_at,omitempty"`
}

// Page is one page of a paginated collection listing. For a
// well-formed response TotalPages == ceil(Total/PageSize) and
// Page <= TotalPages.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// CollectionStats are per-status document counts derived from a full
// collection sweep. Total always equals the sum of the four buckets
// for a single consistent snapshot.
type CollectionStats struct {
	Total      int `json:"total" yaml:"total"`
	Pending    int `json:"pending" yaml:"pending"`
	Processing int `json:"processing" yaml:"processing"`
	Completed  int `json:"completed" yaml:"completed"`
	Failed     int `json:"failed" yaml:"failed"`
}

// Count returns the bucket for the given status.
func (s CollectionStats) Count(status Status) int {
	switch status {
	case StatusPending:
		return s.Pending
	case StatusProcessing:
		return s.Processing
	case StatusCompleted:
		return s.Completed
	case StatusFailed:
		return s.Failed
	default:
		return 0
	}
}

// TokenResponse is the login endpoint's payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RegisterRequest is the registration payload. TenantName identifies
// the organization the account belongs to; the backend creates the
// tenant on first use.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name,omitempty"`
	TenantName string `json:"tenant_name"`
}
