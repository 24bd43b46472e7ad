package repository

import (
	"fmt"

	"github.com/camden-git/vimlbackend/models"
	"gorm.io/gorm"
)

// IdentifierRepository handles database operations for Identifier entities
type IdentifierRepository struct {
	DB *gorm.DB
}

// Ensure IdentifierRepository implements IdentifierRepositoryInterface
var _ IdentifierRepositoryInterface = (*IdentifierRepository)(nil)

// NewIdentifierRepository creates a new instance of IdentifierRepository
func NewIdentifierRepository(db *gorm.DB) *IdentifierRepository {
	return &IdentifierRepository{DB: db}
}

// Create appends a new biometric exemplar. Near-duplicate embeddings are not
// deduplicated.
func (r *IdentifierRepository) Create(identifier *models.Identifier) error {
	err := r.DB.Create(identifier).Error
	if err != nil {
		return fmt.Errorf("failed to create %s identifier for person ID %d: %w", identifier.Method, identifier.PersonID, err)
	}
	return nil
}

// ListByPersonID retrieves all identifiers owned by a person
func (r *IdentifierRepository) ListByPersonID(personID uint) ([]models.Identifier, error) {
	var identifiers []models.Identifier
	err := r.DB.Where("person_id = ?", personID).Find(&identifiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list identifiers for person ID %d: %w", personID, err)
	}
	return identifiers, nil
}

// ReassignPerson repoints every identifier owned by one person to another.
// Used by the merge manager; affecting zero rows is not an error.
func (r *IdentifierRepository) ReassignPerson(fromPersonID, toPersonID uint) error {
	err := r.DB.Model(&models.Identifier{}).
		Where("person_id = ?", fromPersonID).
		Update("person_id", toPersonID).Error
	if err != nil {
		return fmt.Errorf("failed to reassign identifiers from person %d to %d: %w", fromPersonID, toPersonID, err)
	}
	return nil
}
