package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/vimlbackend/models"
	"gorm.io/gorm"
)

// PersonRepository handles database operations for Person entities
type PersonRepository struct {
	DB *gorm.DB
}

// Ensure PersonRepository implements PersonRepositoryInterface
var _ PersonRepositoryInterface = (*PersonRepository)(nil)

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create creates a new person record in the database
func (r *PersonRepository) Create(person *models.Person) error {
	if person.Role == "" {
		person.Role = models.RoleUnknown
	}
	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.Name, err)
	}
	return nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// GetByVideoAndName retrieves the person holding the (video scope, name) key
func (r *PersonRepository) GetByVideoAndName(videoPath, name string) (*models.Person, error) {
	var person models.Person
	err := r.DB.Where("video_path = ? AND name = ?", videoPath, name).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person %q in video %s: %w", name, videoPath, err)
	}
	return &person, nil
}

// FindByName retrieves the first person whose name exactly matches, across
// all videos
func (r *PersonRepository) FindByName(name string) (*models.Person, error) {
	var person models.Person
	err := r.DB.Where("name = ?", name).Order("person_id ASC").First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find person by name %q: %w", name, err)
	}
	return &person, nil
}

// ListByVideo retrieves all people recorded for one video, ordered by name
func (r *PersonRepository) ListByVideo(videoPath string) ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Where("video_path = ?", videoPath).Order("name ASC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people for video %s: %w", videoPath, err)
	}
	return people, nil
}

// Update updates an existing person's details
func (r *PersonRepository) Update(person *models.Person) error {
	result := r.DB.Model(&models.Person{ID: person.ID}).Updates(map[string]interface{}{
		"name":         person.Name,
		"title":        person.Title,
		"organization": person.Organization,
		"role":         person.Role,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update person ID %d: %w", person.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a person by their ID. Only the merge manager calls this,
// after repointing the person's occurrences and identifiers.
func (r *PersonRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
