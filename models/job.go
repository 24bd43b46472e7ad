package models

import (
	"encoding/json"
	"fmt"

	"github.com/camden-git/vimlbackend/detect"
)

// Job statuses. Transitions are monotonic forward: queued -> processing ->
// completed | failed. There is no re-queue transition at this layer.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Detection channel names accepted in JobConfig.Steps.
const (
	StepOCR   = "ocr"
	StepFace  = "face"
	StepAudio = "audio"
)

// JobConfig carries the per-run options supplied at submission time.
type JobConfig struct {
	AutoApprove bool                       `json:"auto_approve"`
	Crops       map[string]detect.CropArea `json:"crops,omitempty"`
	Steps       []string                   `json:"steps,omitempty"`
}

// StepEnabled reports whether the named detection channel should run. An
// absent steps list runs all three channels.
func (c JobConfig) StepEnabled(step string) bool {
	if len(c.Steps) == 0 {
		return true
	}
	for _, s := range c.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// CropFor returns the crop override for a channel, or nil when none was set.
func (c JobConfig) CropFor(step string) *detect.CropArea {
	if c.Crops == nil {
		return nil
	}
	crop, ok := c.Crops[step]
	if !ok {
		return nil
	}
	return &crop
}

// Job represents one correlation run over one video. It corresponds to the
// 'jobs' table. AutoApprove is denormalized out of the config column so the
// review queue can read it without parsing JSON.
type Job struct {
	ID          string  `gorm:"primaryKey;column:job_id" json:"job_id"`
	VideoPath   string  `gorm:"not null" json:"video_path"`
	Status      string  `gorm:"not null" json:"status"`
	CreatedAt   int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt   int64   `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
	Result      *string `json:"result,omitempty"`           // Error text on failure
	Config      string  `json:"-"`                          // JSON-encoded JobConfig
	AutoApprove bool    `gorm:"not null;default:false" json:"auto_approve"`
}

// TableName explicitly sets the table name for GORM.
func (Job) TableName() string {
	return "jobs"
}

// SetConfig serializes cfg into the config column and keeps the denormalized
// auto_approve flag in sync.
func (j *Job) SetConfig(cfg JobConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode job config: %w", err)
	}
	j.Config = string(data)
	j.AutoApprove = cfg.AutoApprove
	return nil
}

// GetConfig parses the stored config column. An empty column yields the zero
// config (all steps, no crops, no auto-approve).
func (j *Job) GetConfig() (JobConfig, error) {
	var cfg JobConfig
	if j.Config == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(j.Config), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config for job %s: %w", j.ID, err)
	}
	return cfg, nil
}

// InitialReviewStatus is the review state stamped onto every occurrence the
// job produces, decided once at correlation time.
func (j *Job) InitialReviewStatus() string {
	if j.AutoApprove {
		return ReviewApproved
	}
	return ReviewPending
}
