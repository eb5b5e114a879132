package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one document's extraction within a batch.
type ExtractJob struct {
	ID           uuid.UUID       `json:"id"`
	BatchID      uuid.UUID       `json:"batch_id"`
	Seq          int             `json:"seq"`
	FilePath     string          `json:"file_path"`
	ContentHash  string          `json:"content_hash,omitempty"`
	Status       string          `json:"status"`
	Method       *string         `json:"method,omitempty"`
	Record       json.RawMessage `json:"record,omitempty"`
	RawText      *string         `json:"raw_text,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
