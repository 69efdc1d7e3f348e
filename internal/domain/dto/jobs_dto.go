package dto

import "time"

// JobPayload carries the fields of any pipeline request; which ones matter
// depends on the job type.
type JobPayload struct {
	Paths       []string          `json:"paths,omitempty"`
	Watermark   string            `json:"watermark,omitempty"`
	Path        string            `json:"path,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	VideoFilter *string           `json:"video_filter,omitempty"`
	AudioFilter *string           `json:"audio_filter,omitempty"`
}

type CreateJobRequest struct {
	Type string `json:"type"`
	JobPayload
}

type JobResult struct {
	Images      []ImageResult   `json:"images,omitempty"`
	Videos      []VideoResult   `json:"videos,omitempty"`
	Inspections []InspectResult `json:"inspections,omitempty"`
}

type JobStatus struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Result     *JobResult `json:"result,omitempty"`
}
