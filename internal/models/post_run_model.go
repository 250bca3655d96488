package models

import "time"

// PostRun is one publish attempt. Rows are append-only: once FinishedAt is
// set the row is never touched again.
type PostRun struct {
	ID              int64      `db:"id" json:"id"`
	ScheduledPostID int64      `db:"scheduled_post_id" json:"scheduled_post_id"`
	Attempt         int        `db:"attempt" json:"attempt"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	FinishedAt      *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Status          string     `db:"status" json:"status"`
	Error           string     `db:"error" json:"error,omitempty"`
}

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)
