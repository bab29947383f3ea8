package persistence

import "time"

// Stage names recorded per job as artifacts are produced. A completed stage's
// artifact lets a rerun skip straight past it.
const (
	StageAudio      = "audio"
	StageTranscript = "transcript"
	StageTranslated = "translated"
	StageSubtitle   = "subtitle"
)

// StageArtifact records the on-disk output of one completed pipeline stage.
type StageArtifact struct {
	JobID     string    `json:"job_id"`
	Stage     string    `json:"stage"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}
