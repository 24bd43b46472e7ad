package models

// Person roles. Role is free text at the storage layer; these are the values
// the review UI writes.
const (
	RoleHost    = "host"
	RoleGuest   = "guest"
	RoleUnknown = "unknown"
)

// Person represents one distinct identity within a single video.
// It corresponds to the 'persons' table. Uniqueness is (video_path, name) at
// creation time; a merge can collapse two rows and repoint their history.
type Person struct {
	ID           uint    `gorm:"primaryKey;autoIncrement;column:person_id" json:"person_id"`
	VideoPath    string  `gorm:"not null;index:idx_persons_video_name" json:"video_path"`
	Name         string  `gorm:"not null;index:idx_persons_video_name" json:"name"`
	Title        *string `json:"title,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Role         string  `gorm:"not null;default:unknown" json:"role"`

	// Relationships
	// omitempty will hide these if they are not preloaded or are empty
	Identifiers []Identifier `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"identifiers,omitempty"`
	Occurrences []Occurrence `gorm:"foreignKey:PersonID" json:"occurrences,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "persons"
}
