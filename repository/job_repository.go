package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/vimlbackend/models"
	"gorm.io/gorm"
)

// JobRepository handles database operations for Job entities
type JobRepository struct {
	DB *gorm.DB
}

// Ensure JobRepository implements JobRepositoryInterface
var _ JobRepositoryInterface = (*JobRepository)(nil)

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// Create creates a new job record in the database
func (r *JobRepository) Create(job *models.Job) error {
	now := time.Now().Unix()
	if job.CreatedAt == 0 {
		job.CreatedAt = now
	}
	if job.UpdatedAt == 0 {
		job.UpdatedAt = now
	}
	if job.Status == "" {
		job.Status = models.JobQueued
	}

	err := r.DB.Create(job).Error
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, err)
	}
	return nil
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.DB.First(&job, "job_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job by ID %s: %w", id, err)
	}
	return &job, nil
}

// List retrieves the most recently created jobs
func (r *JobRepository) List(limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []models.Job
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// SetStatus advances a job's status and records the run result (the error
// text on failure, nil otherwise).
func (r *JobRepository) SetStatus(id, status string, result *string) error {
	updates := map[string]interface{}{
		"status":     status,
		"result":     result,
		"updated_at": time.Now().Unix(),
	}
	res := r.DB.Model(&models.Job{}).Where("job_id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to set status %s on job %s: %w", status, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
