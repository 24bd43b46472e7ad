package models

// Detection methods recorded on occurrences.
const (
	MethodOCR   = "ocr"
	MethodFace  = "face"
	MethodVoice = "voice"
)

// Review states. These are labels, not an enforced lifecycle: any state may be
// set from any state through a review edit.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// ValidReviewStatus reports whether s is one of the three review states.
func ValidReviewStatus(s string) bool {
	return s == ReviewPending || s == ReviewApproved || s == ReviewRejected
}

// Occurrence represents one detection event attributed to a person at a point
// in time. It corresponds to the 'occurrences' table. Rows are created only by
// a correlation run; person_id is repointed by merges and review_status/details
// rewritten by review edits, but rows are never deleted.
type Occurrence struct {
	ID               uint    `gorm:"primaryKey;autoIncrement;column:occurrence_id" json:"occurrence_id"`
	VideoPath        string  `gorm:"not null;index" json:"video_path"`
	PersonID         *uint   `gorm:"index" json:"person_id,omitempty"` // Nullable: unlinked detections carry no person
	TimestampSeconds float64 `gorm:"not null" json:"timestamp_seconds"`
	Method           string  `gorm:"not null;column:method_used;check:method_used IN ('ocr','face','voice')" json:"method_used"`
	Confidence       float64 `json:"confidence"`
	Details          string  `json:"details"`
	ReviewStatus     string  `gorm:"not null;default:pending;check:review_status IN ('pending','approved','rejected')" json:"review_status"`
	JobID            string  `gorm:"index" json:"job_id"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"` // Belongs to Person
}

// TableName explicitly sets the table name for GORM.
func (Occurrence) TableName() string {
	return "occurrences"
}
