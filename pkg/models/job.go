package models

import "time"

const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Job tracks async dataset processing. POST /api/v1/jobs/dataset/{id}
// returns a PENDING job; clients poll GET /api/v1/jobs/{id} until the
// status is COMPLETED or FAILED. Terminal states are final.
//
// DatasetID is deliberately not a foreign key: a job referencing a
// dataset that was deleted (or never existed) is accepted and will
// simply fail or complete against whatever processing finds.
type Job struct {
	ID        int64     `db:"id"         json:"id"`
	DatasetID int64     `db:"dataset_id" json:"dataset_id"`
	Status    string    `db:"status"     json:"status"`
	Message   *string   `db:"message"    json:"message,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
