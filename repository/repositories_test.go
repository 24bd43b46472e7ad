package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestPersonRepositoryVideoScopedLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)

	monday := &models.Person{VideoPath: "monday.mp4", Name: "Jane Doe"}
	friday := &models.Person{VideoPath: "friday.mp4", Name: "Jane Doe"}
	if err := repo.Create(monday); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	if err := repo.Create(friday); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}

	// the same name in different videos is two distinct persons
	got, err := repo.GetByVideoAndName("friday.mp4", "Jane Doe")
	if err != nil {
		t.Fatalf("GetByVideoAndName failed: %v", err)
	}
	if got.ID != friday.ID {
		t.Errorf("video-scoped lookup: got person %d, want %d", got.ID, friday.ID)
	}

	_, err = repo.GetByVideoAndName("sunday.mp4", "Jane Doe")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for unknown video, got %v", err)
	}
}

func TestPersonRepositoryFindByNameUnscoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)

	first := &models.Person{VideoPath: "monday.mp4", Name: "Jane Doe"}
	second := &models.Person{VideoPath: "friday.mp4", Name: "Jane Doe"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}

	got, err := repo.FindByName("Jane Doe")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("FindByName should return the oldest match, got %d want %d", got.ID, first.ID)
	}
}

func TestPersonRepositoryCreateDefaultsRole(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)

	p := &models.Person{VideoPath: "show.mp4", Name: "Jane Doe"}
	if err := repo.Create(p); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	if p.Role != models.RoleUnknown {
		t.Errorf("role: got %q, want unknown", p.Role)
	}
}

func TestPersonRepositoryUpdateAndDeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db)

	if err := repo.Update(&models.Person{ID: 42, Name: "Ghost"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Update missing person: got %v, want ErrRecordNotFound", err)
	}
	if err := repo.Delete(42); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Delete missing person: got %v, want ErrRecordNotFound", err)
	}
}

func TestOccurrenceRepositoryGetByIDPreloadsPerson(t *testing.T) {
	db := newTestDB(t)
	persons := NewPersonRepository(db)
	occurrences := NewOccurrenceRepository(db)

	person := &models.Person{VideoPath: "show.mp4", Name: "Jane Doe"}
	if err := persons.Create(person); err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	occ := &models.Occurrence{
		VideoPath: "show.mp4", PersonID: &person.ID, TimestampSeconds: 5,
		Method: models.MethodOCR, Confidence: 95, Details: "Jane Doe", JobID: "job-1",
	}
	if err := occurrences.Create(occ); err != nil {
		t.Fatalf("failed to create occurrence: %v", err)
	}
	if occ.ReviewStatus != models.ReviewPending {
		t.Errorf("review status should default to pending, got %q", occ.ReviewStatus)
	}

	got, err := occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Person == nil || got.Person.Name != "Jane Doe" {
		t.Errorf("expected preloaded person, got %+v", got.Person)
	}
}

func TestReassignPersonMovesOnlyTheSource(t *testing.T) {
	db := newTestDB(t)
	persons := NewPersonRepository(db)
	occurrences := NewOccurrenceRepository(db)
	identifiers := NewIdentifierRepository(db)

	source := &models.Person{VideoPath: "show.mp4", Name: "J. Doe"}
	target := &models.Person{VideoPath: "show.mp4", Name: "Jane Doe"}
	other := &models.Person{VideoPath: "show.mp4", Name: "Bob Smith"}
	for _, p := range []*models.Person{source, target, other} {
		if err := persons.Create(p); err != nil {
			t.Fatalf("failed to create person: %v", err)
		}
	}

	sourceOcc := &models.Occurrence{VideoPath: "show.mp4", PersonID: &source.ID, Method: models.MethodOCR, Confidence: 95, JobID: "job-1"}
	otherOcc := &models.Occurrence{VideoPath: "show.mp4", PersonID: &other.ID, Method: models.MethodOCR, Confidence: 95, JobID: "job-1"}
	for _, o := range []*models.Occurrence{sourceOcc, otherOcc} {
		if err := occurrences.Create(o); err != nil {
			t.Fatalf("failed to create occurrence: %v", err)
		}
	}
	ident := &models.Identifier{PersonID: source.ID, Method: models.IdentifierFace}
	ident.SetEmbedding([]float32{1, 0})
	if err := identifiers.Create(ident); err != nil {
		t.Fatalf("failed to create identifier: %v", err)
	}

	if err := occurrences.ReassignPerson(source.ID, target.ID); err != nil {
		t.Fatalf("occurrence reassign failed: %v", err)
	}
	if err := identifiers.ReassignPerson(source.ID, target.ID); err != nil {
		t.Fatalf("identifier reassign failed: %v", err)
	}

	var moved models.Occurrence
	if err := db.First(&moved, sourceOcc.ID).Error; err != nil {
		t.Fatalf("failed to reload occurrence: %v", err)
	}
	if moved.PersonID == nil || *moved.PersonID != target.ID {
		t.Errorf("source occurrence should point at target, got %v", moved.PersonID)
	}

	var untouched models.Occurrence
	if err := db.First(&untouched, otherOcc.ID).Error; err != nil {
		t.Fatalf("failed to reload occurrence: %v", err)
	}
	if untouched.PersonID == nil || *untouched.PersonID != other.ID {
		t.Errorf("unrelated occurrence must not move, got %v", untouched.PersonID)
	}

	moved2, err := identifiers.ListByPersonID(target.ID)
	if err != nil {
		t.Fatalf("ListByPersonID failed: %v", err)
	}
	if len(moved2) != 1 {
		t.Errorf("expected 1 identifier on target, got %d", len(moved2))
	}

	// reassigning a person with no rows is a no-op, not an error
	if err := occurrences.ReassignPerson(9999, target.ID); err != nil {
		t.Errorf("empty reassign should succeed, got %v", err)
	}
}

func TestJobRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)

	job := &models.Job{ID: "job-1", VideoPath: "show.mp4"}
	if err := repo.Create(job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	if job.Status != models.JobQueued {
		t.Errorf("new job status: got %q, want queued", job.Status)
	}
	if job.CreatedAt == 0 || job.UpdatedAt == 0 {
		t.Error("timestamps should be stamped on create")
	}

	if err := repo.SetStatus("job-1", models.JobProcessing, nil); err != nil {
		t.Fatalf("SetStatus processing failed: %v", err)
	}
	msg := "ocr adapter: exit status 1"
	if err := repo.SetStatus("job-1", models.JobFailed, &msg); err != nil {
		t.Fatalf("SetStatus failed failed: %v", err)
	}

	got, err := repo.GetByID("job-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.JobFailed {
		t.Errorf("status: got %q, want failed", got.Status)
	}
	if got.Result == nil || *got.Result != msg {
		t.Errorf("result: got %v, want %q", got.Result, msg)
	}

	if err := repo.SetStatus("nope", models.JobCompleted, nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("SetStatus on unknown job: got %v, want ErrRecordNotFound", err)
	}
}

func TestJobRepositoryListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)

	for i, created := range []int64{100, 300, 200} {
		job := &models.Job{ID: fmt.Sprintf("job-%d", i), VideoPath: "show.mp4", CreatedAt: created, UpdatedAt: created}
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}
	}

	jobs, err := repo.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != "job-1" || jobs[1].ID != "job-2" {
		t.Errorf("expected newest first, got %s then %s", jobs[0].ID, jobs[1].ID)
	}
}
