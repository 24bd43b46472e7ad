package repository

import (
	"github.com/camden-git/vimlbackend/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id uint) (*models.Person, error)
	// GetByVideoAndName resolves the (video scope, name) uniqueness key used
	// when seeding identities.
	GetByVideoAndName(videoPath, name string) (*models.Person, error)
	// FindByName looks a person up by exact name across all videos. The merge
	// manager depends on this being unscoped; see DESIGN.md.
	FindByName(name string) (*models.Person, error)
	ListByVideo(videoPath string) ([]models.Person, error)
	Update(person *models.Person) error
	Delete(id uint) error
}

// IdentifierRepositoryInterface defines the methods for biometric exemplar
// data operations. Identifiers are append-only; merge re-owns them.
type IdentifierRepositoryInterface interface {
	Create(identifier *models.Identifier) error
	ListByPersonID(personID uint) ([]models.Identifier, error)
	ReassignPerson(fromPersonID, toPersonID uint) error
}

// OccurrenceRepositoryInterface defines the methods for occurrence data
// operations. Occurrences are never deleted.
type OccurrenceRepositoryInterface interface {
	Create(occurrence *models.Occurrence) error
	GetByID(id uint) (*models.Occurrence, error)
	ListByVideo(videoPath string) ([]models.Occurrence, error)
	UpdateReview(id uint, reviewStatus string, details *string) error
	ReassignPerson(fromPersonID, toPersonID uint) error
}

// JobRepositoryInterface defines the methods for job data operations
type JobRepositoryInterface interface {
	Create(job *models.Job) error
	GetByID(id string) (*models.Job, error)
	List(limit int) ([]models.Job, error)
	SetStatus(id, status string, result *string) error
}
