package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"media-stamp/internal/domain/dto"
)

type JobType string

const (
	JobProcessImages    JobType = "process_images"
	JobInspectVideos    JobType = "inspect_videos"
	JobRewriteVideo     JobType = "rewrite_video"
	JobCamouflageVideos JobType = "camouflage_videos"
)

func (t JobType) Valid() bool {
	switch t {
	case JobProcessImages, JobInspectVideos, JobRewriteVideo, JobCamouflageVideos:
		return true
	}
	return false
}

type Job struct {
	ID        string         `json:"id"`
	Type      JobType        `json:"type"`
	Payload   dto.JobPayload `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewJob(jobType JobType, payload dto.JobPayload) Job {
	return Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// ProcessedJob is pushed back by the worker once a job has run.
type ProcessedJob struct {
	JobID      string        `json:"job_id"`
	Status     string        `json:"status"`
	Result     dto.JobResult `json:"result"`
	Error      string        `json:"error,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

func DeserializeJob(data string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to deserialize job: %w", err)
	}
	return &job, nil
}

func SerializeJob(job Job) (string, error) {
	bytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(bytes), nil
}

func DeserializeProcessedJob(data string) (*ProcessedJob, error) {
	var processed ProcessedJob
	if err := json.Unmarshal([]byte(data), &processed); err != nil {
		return nil, fmt.Errorf("failed to deserialize processed job: %w", err)
	}
	return &processed, nil
}

func SerializeProcessedJob(processed ProcessedJob) (string, error) {
	bytes, err := json.Marshal(processed)
	if err != nil {
		return "", fmt.Errorf("failed to serialize processed job: %w", err)
	}
	return string(bytes), nil
}
