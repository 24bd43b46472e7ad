// Package services holds the operator-facing workflows applied after
// correlation: review edits, identity merges and the grouped review queue.
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/camden-git/vimlbackend/models"
	"github.com/camden-git/vimlbackend/repository"
)

// ErrInvalidReviewStatus is returned when an edit carries a status outside
// pending/approved/rejected. The edit is rejected before any mutation.
var ErrInvalidReviewStatus = errors.New("invalid review status")

// ReviewEdit is one human review action against a single occurrence.
// ReviewStatus is required; the rest is optional. Details doubles as the
// corrected name: when it differs from the person's current name it triggers
// a rename, or a merge if another person already holds that name. A blank
// details value is ignored.
type ReviewEdit struct {
	ReviewStatus string
	Details      *string
	Title        *string
	Organization *string
	Role         *string
}

// ReviewService applies review edits: occurrence status changes, person field
// updates, and rename/merge of identities with full history retention.
type ReviewService struct {
	persons     repository.PersonRepositoryInterface
	identifiers repository.IdentifierRepositoryInterface
	occurrences repository.OccurrenceRepositoryInterface

	// merges are serialized globally: the merge lookup is not scoped to one
	// video, so two concurrent edits could otherwise race for the same
	// target name
	mu sync.Mutex
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	persons repository.PersonRepositoryInterface,
	identifiers repository.IdentifierRepositoryInterface,
	occurrences repository.OccurrenceRepositoryInterface,
) *ReviewService {
	return &ReviewService{
		persons:     persons,
		identifiers: identifiers,
		occurrences: occurrences,
	}
}

// ApplyEdit applies one review edit to the occurrence and its person. It
// returns the id of the person the occurrence belongs to afterwards, which
// differs from the original when the edit caused a merge.
//
// Semantics, in order:
//  1. the status value is validated before anything is touched
//  2. a changed name merges into any existing person with that exact name
//     (the lookup spans all videos) or renames in place; the absorbed
//     person's occurrences and identifiers are repointed, never deleted
//  3. title/organization/role apply to the surviving person unconditionally
//  4. the occurrence's review status is always rewritten; its details only
//     when the occurrence came from OCR
func (s *ReviewService) ApplyEdit(occurrenceID uint, edit ReviewEdit) (uint, error) {
	if !models.ValidReviewStatus(edit.ReviewStatus) {
		return 0, ErrInvalidReviewStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	occurrence, err := s.occurrences.GetByID(occurrenceID)
	if err != nil {
		return 0, err
	}
	if occurrence.PersonID == nil || occurrence.Person == nil {
		// unlinked occurrences have no person to edit
		return 0, gorm.ErrRecordNotFound
	}

	person := occurrence.Person
	personID := person.ID

	// a blank details string is treated as absent: it can neither rename a
	// person nor erase an occurrence's text
	details := edit.Details
	if details != nil && strings.TrimSpace(*details) == "" {
		details = nil
	}

	if details != nil && *details != person.Name {
		personID, err = s.renameOrMerge(person, strings.TrimSpace(*details))
		if err != nil {
			return 0, err
		}
	}

	if err := s.applyPersonFields(personID, edit); err != nil {
		return 0, err
	}

	// face and voice occurrence text cannot be hand-corrected through this
	// path; only OCR text is operator-editable
	if occurrence.Method != models.MethodOCR {
		details = nil
	}
	if err := s.occurrences.UpdateReview(occurrenceID, edit.ReviewStatus, details); err != nil {
		return 0, err
	}

	return personID, nil
}

// renameOrMerge points the person at newName. If another person already holds
// that exact name the source person is absorbed: all of its occurrences and
// identifiers are repointed to the target and the source row is deleted.
func (s *ReviewService) renameOrMerge(person *models.Person, newName string) (uint, error) {
	target, err := s.persons.FindByName(newName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("merge target lookup failed: %w", err)
		}
		person.Name = newName
		if err := s.persons.Update(person); err != nil {
			return 0, err
		}
		return person.ID, nil
	}

	if target.ID == person.ID {
		// the trimmed name resolves back to this person; nothing to merge
		return person.ID, nil
	}

	if err := s.occurrences.ReassignPerson(person.ID, target.ID); err != nil {
		return 0, err
	}
	if err := s.identifiers.ReassignPerson(person.ID, target.ID); err != nil {
		return 0, err
	}
	if err := s.persons.Delete(person.ID); err != nil {
		return 0, err
	}
	return target.ID, nil
}

func (s *ReviewService) applyPersonFields(personID uint, edit ReviewEdit) error {
	if edit.Title == nil && edit.Organization == nil && edit.Role == nil {
		return nil
	}
	person, err := s.persons.GetByID(personID)
	if err != nil {
		return err
	}
	if edit.Title != nil {
		person.Title = edit.Title
	}
	if edit.Organization != nil {
		person.Organization = edit.Organization
	}
	if edit.Role != nil {
		person.Role = *edit.Role
	}
	return s.persons.Update(person)
}
