package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
}

// JobPayload carries everything a worker needs to run the pipeline for one
// video. Provider may be empty, selecting the gateway default.
type JobPayload struct {
	VideoPath      string `json:"video_path"`
	FileID         string `json:"file_id"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider,omitempty"`
}

type PipelineJob struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	DedupeKey  string     `json:"dedupe_key"`
	Payload    JobPayload `json:"payload"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
