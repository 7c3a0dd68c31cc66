package domain

// JobRepository defines the interface for job-history persistence.
// The history is observability only: nothing is ever replayed from it.
type JobRepository interface {
	// Create records a new job
	Create(job *Job) error

	// Update records a job state transition
	Update(job *Job) error

	// FindByID finds a job by ID
	FindByID(id string) (*Job, error)

	// FindAll finds jobs with optional filters, newest first
	FindAll(filters map[string]interface{}) ([]*Job, error)

	// CountByStatus returns the number of jobs with the given status
	CountByStatus(status JobStatus) (int64, error)

	// GetStats returns job statistics
	GetStats() (*JobStats, error)
}

// JobStats represents job statistics
type JobStats struct {
	Total      int64 `json:"total"`
	Queued     int64 `json:"queued"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Partial    int64 `json:"partial"`
	Failed     int64 `json:"failed"`
}
