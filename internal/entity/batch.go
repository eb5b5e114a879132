package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Batch represents a batch run for data transfer between layers.
type Batch struct {
	ID         uuid.UUID       `json:"id"`
	Mode       string          `json:"mode"`
	StartMonth int             `json:"start_month,omitempty"`
	Label      string          `json:"label,omitempty"`
	Status     string          `json:"status"`
	Documents  int             `json:"documents"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Record     json.RawMessage `json:"record,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
