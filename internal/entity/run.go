package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Run states.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run records one batch enrichment pass over the record store.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Selected   int        `json:"records_selected"`
	Patched    int        `json:"records_patched"`
	Failed     int        `json:"records_failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      *string    `json:"error,omitempty"`
}
