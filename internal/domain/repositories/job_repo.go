package repositories

import (
	"time"

	"media-stamp/internal/domain/dto"
)

// JobRepository tracks asynchronous pipeline jobs.
type JobRepository interface {
	Create(job *dto.JobStatus) error
	GetByID(id string) (*dto.JobStatus, error)
	List() ([]dto.JobStatus, error)
	UpdateStatus(id, status string) error
	Complete(id, status string, result dto.JobResult, errMsg string, finishedAt time.Time) error
}
