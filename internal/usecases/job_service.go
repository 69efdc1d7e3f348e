package usecases

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/domain/repositories"
	"media-stamp/internal/infrastructure/queue"
	consts "media-stamp/pkg/constants"
	fe "media-stamp/pkg/errors"

	"go.uber.org/zap"
)

// Dispatcher hands a job to whatever runs it: the in-process worker pool or
// the redis queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

type DispatchFunc func(ctx context.Context, job queue.Job) error

func (f DispatchFunc) Dispatch(ctx context.Context, job queue.Job) error {
	return f(ctx, job)
}

type JobService interface {
	Submit(ctx context.Context, req dto.CreateJobRequest) (*dto.JobStatus, error)
	Get(id string) (*dto.JobStatus, error)
	List() ([]dto.JobStatus, error)
	// Handle runs a job in process and records its outcome.
	Handle(ctx context.Context, job queue.Job)
	// Apply records the outcome of a job that ran elsewhere.
	Apply(processed queue.ProcessedJob) error
}

type jobService struct {
	repo       repositories.JobRepository
	executor   JobExecutor
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewJobService(repo repositories.JobRepository, executor JobExecutor, dispatcher Dispatcher, log *zap.Logger) JobService {
	if log == nil {
		log = zap.NewNop()
	}
	return &jobService{
		repo:       repo,
		executor:   executor,
		dispatcher: dispatcher,
		log:        log,
	}
}

func (s *jobService) Submit(ctx context.Context, req dto.CreateJobRequest) (*dto.JobStatus, error) {
	jobType := queue.JobType(req.Type)
	if err := ValidateJob(jobType, req.JobPayload); err != nil {
		return nil, err
	}

	job := queue.NewJob(jobType, req.JobPayload)
	status := &dto.JobStatus{
		ID:        job.ID,
		Type:      string(job.Type),
		Status:    consts.StatusQueued,
		CreatedAt: job.CreatedAt,
	}
	if err := s.repo.Create(status); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		s.log.Warn("dispatch failed", zap.String("job_id", job.ID), zap.Error(err))
		_ = s.repo.Complete(job.ID, consts.StatusFailed, dto.JobResult{}, err.Error(), time.Now().UTC())
		if stderrors.Is(err, queue.ErrPoolFull) {
			return nil, fe.ErrInvalidInput("job queue is full, try again later")
		}
		return nil, fe.ErrInternal(err)
	}

	s.log.Info("job queued", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return s.repo.GetByID(job.ID)
}

func (s *jobService) Get(id string) (*dto.JobStatus, error) {
	return s.repo.GetByID(id)
}

func (s *jobService) List() ([]dto.JobStatus, error) {
	return s.repo.List()
}

func (s *jobService) Handle(ctx context.Context, job queue.Job) {
	if err := s.repo.UpdateStatus(job.ID, consts.StatusInProgress); err != nil {
		s.log.Warn("job status update failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	if err := s.Apply(s.executor.Execute(ctx, job)); err != nil {
		s.log.Error("job result not recorded", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (s *jobService) Apply(processed queue.ProcessedJob) error {
	s.log.Info("job finished",
		zap.String("job_id", processed.JobID),
		zap.String("status", processed.Status),
	)
	return s.repo.Complete(processed.JobID, processed.Status, processed.Result, processed.Error, processed.FinishedAt)
}

// ValidateJob rejects jobs that could never produce a result.
func ValidateJob(jobType queue.JobType, p dto.JobPayload) error {
	if !jobType.Valid() {
		return fe.ErrInvalidInput("unknown job type: " + string(jobType))
	}
	if jobType == queue.JobRewriteVideo {
		if strings.TrimSpace(p.Path) == "" {
			return fe.ErrInvalidInput("path is required")
		}
		return nil
	}
	if len(p.Paths) == 0 {
		return fe.ErrInvalidInput("paths must not be empty")
	}
	return nil
}
