package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/vimlbackend/models"
	"gorm.io/gorm"
)

// OccurrenceRepository handles database operations for Occurrence entities
type OccurrenceRepository struct {
	DB *gorm.DB
}

// Ensure OccurrenceRepository implements OccurrenceRepositoryInterface
var _ OccurrenceRepositoryInterface = (*OccurrenceRepository)(nil)

// NewOccurrenceRepository creates a new instance of OccurrenceRepository
func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{DB: db}
}

// Create creates a new occurrence record in the database
func (r *OccurrenceRepository) Create(occurrence *models.Occurrence) error {
	if occurrence.ReviewStatus == "" {
		occurrence.ReviewStatus = models.ReviewPending
	}
	err := r.DB.Create(occurrence).Error
	if err != nil {
		return fmt.Errorf("failed to create %s occurrence at %.2fs in %s: %w",
			occurrence.Method, occurrence.TimestampSeconds, occurrence.VideoPath, err)
	}
	return nil
}

// GetByID retrieves an occurrence by its ID, preloading its person
func (r *OccurrenceRepository) GetByID(id uint) (*models.Occurrence, error) {
	var occurrence models.Occurrence
	err := r.DB.Preload("Person").First(&occurrence, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get occurrence by ID %d: %w", id, err)
	}
	return &occurrence, nil
}

// ListByVideo retrieves all occurrences for one video ordered by timestamp
func (r *OccurrenceRepository) ListByVideo(videoPath string) ([]models.Occurrence, error) {
	var occurrences []models.Occurrence
	err := r.DB.Where("video_path = ?", videoPath).Order("timestamp_seconds ASC").Find(&occurrences).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences for video %s: %w", videoPath, err)
	}
	return occurrences, nil
}

// UpdateReview rewrites an occurrence's review status, and its details when a
// corrected text is supplied. The caller decides whether details may change
// (only OCR occurrences accept hand corrections).
func (r *OccurrenceRepository) UpdateReview(id uint, reviewStatus string, details *string) error {
	updates := map[string]interface{}{"review_status": reviewStatus}
	if details != nil {
		updates["details"] = *details
	}
	result := r.DB.Model(&models.Occurrence{}).Where("occurrence_id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update review for occurrence ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReassignPerson repoints every occurrence owned by one person to another.
// Used by the merge manager; affecting zero rows is not an error.
func (r *OccurrenceRepository) ReassignPerson(fromPersonID, toPersonID uint) error {
	err := r.DB.Model(&models.Occurrence{}).
		Where("person_id = ?", fromPersonID).
		Update("person_id", toPersonID).Error
	if err != nil {
		return fmt.Errorf("failed to reassign occurrences from person %d to %d: %w", fromPersonID, toPersonID, err)
	}
	return nil
}
