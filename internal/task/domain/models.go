// Package domain defines the async ingestion task contract.
package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Status is the lifecycle state of an ingestion task. SUCCESS and FAILURE
// are terminal; a task that reached one never changes again.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Task tracks one submitted ingestion batch. Result stays null until the
// task reaches SUCCESS; Error carries a user-facing message on FAILURE.
type Task struct {
	ID          string            `gorm:"primaryKey" json:"task_id"`
	Status      Status            `gorm:"type:varchar(16);not null" json:"status"`
	Result      datatypes.JSONMap `gorm:"type:jsonb" json:"result,omitempty"`
	Error       string            `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "ingest_tasks" }

// Runner executes ingestion batches out of band. Submitted tasks always run
// to a terminal state; there is no cancellation.
type Runner interface {
	Submit(ctx context.Context, payload []byte) (string, error)
	Poll(ctx context.Context, taskID string) (*Task, error)
}

var (
	ErrNotFound = errors.New("task_not_found")
	ErrClosed   = errors.New("task_runner_closed")
)
