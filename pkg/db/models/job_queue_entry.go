package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/enums"
)

// JobQueueEntry is a unit of deferred work. The payload is immutable once enqueued;
// status, error and processed_at belong to the processor.
type JobQueueEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Type        string          `gorm:"column:type;not null"`
	Payload     json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	Status      enums.JobStatus `gorm:"column:status;type:text;not null"`
	Error       *string         `gorm:"column:error"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	ProcessedAt *time.Time      `gorm:"column:processed_at"`
}

func (JobQueueEntry) TableName() string { return "job_queue" }
