package repositories

import (
	"sort"
	"sync"
	"time"

	"media-stamp/internal/domain/dto"
	fe "media-stamp/pkg/errors"
)

type InMemoryJobRepository struct {
	mu   sync.RWMutex
	data map[string]*dto.JobStatus
}

func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		data: make(map[string]*dto.JobStatus),
	}
}

func (r *InMemoryJobRepository) Create(job *dto.JobStatus) error {
	if job == nil || job.ID == "" {
		return fe.ErrInvalidInput("job id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.data[job.ID] = &copied
	return nil
}

// GetByID returns a copy so callers cannot race with workers updating the job.
func (r *InMemoryJobRepository) GetByID(id string) (*dto.JobStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, exists := r.data[id]
	if !exists {
		return nil, fe.ErrNotFound("job "+id, nil)
	}
	copied := *job
	return &copied, nil
}

// List returns jobs ordered by creation time, oldest first.
func (r *InMemoryJobRepository) List() ([]dto.JobStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]dto.JobStatus, 0, len(r.data))
	for _, job := range r.data {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *InMemoryJobRepository) UpdateStatus(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[id]
	if !ok {
		return fe.ErrNotFound("job "+id, nil)
	}
	job.Status = status
	return nil
}

func (r *InMemoryJobRepository) Complete(id, status string, result dto.JobResult, errMsg string, finishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[id]
	if !ok {
		return fe.ErrNotFound("job "+id, nil)
	}
	job.Status = status
	job.Result = &result
	job.Error = errMsg
	job.FinishedAt = &finishedAt
	return nil
}
