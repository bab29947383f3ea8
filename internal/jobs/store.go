package jobs

import "context"

// Store persists job states for queue restart recovery.
type Store interface {
	LoadJobs(ctx context.Context) ([]*PipelineJob, error)
	UpsertJob(ctx context.Context, job *PipelineJob) error
	DeleteJob(ctx context.Context, jobID string) error
	// DeleteJobData removes all auxiliary data (stage artifacts) for a job.
	DeleteJobData(ctx context.Context, jobID string) error
}
