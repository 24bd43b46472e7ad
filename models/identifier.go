package models

import "math"

// Identifier methods. An identifier stores one biometric exemplar; the same
// person may accumulate many of the same method.
const (
	IdentifierFace  = "face"
	IdentifierVoice = "voice"
)

// Identifier represents one stored biometric exemplar (embedding) tied to a
// person. It corresponds to the 'identifiers' table and is append-only:
// exemplars are re-owned on merge, never deleted.
type Identifier struct {
	ID            uint   `gorm:"primaryKey;autoIncrement;column:identifier_id" json:"identifier_id"`
	PersonID      uint   `gorm:"not null;index" json:"person_id"`
	Method        string `gorm:"not null;check:method IN ('face','voice')" json:"method"`
	BiometricData []byte `gorm:"not null;column:biometric_data" json:"-"` // fixed-length float32 vector as BLOB

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"` // Belongs to Person
}

// TableName explicitly sets the table name for GORM.
func (Identifier) TableName() string {
	return "identifiers"
}

// GetEmbedding converts the BLOB data to []float32
func (id *Identifier) GetEmbedding() []float32 {
	if len(id.BiometricData) == 0 {
		return nil
	}

	// Convert []byte to []float32
	embedding := make([]float32, len(id.BiometricData)/4) // 4 bytes per float32
	for i := 0; i < len(embedding); i++ {
		offset := i * 4
		bits := uint32(id.BiometricData[offset]) |
			uint32(id.BiometricData[offset+1])<<8 |
			uint32(id.BiometricData[offset+2])<<16 |
			uint32(id.BiometricData[offset+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

// SetEmbedding converts []float32 to BLOB data
func (id *Identifier) SetEmbedding(embedding []float32) {
	if len(embedding) == 0 {
		id.BiometricData = nil
		return
	}

	// Convert []float32 to []byte
	id.BiometricData = make([]byte, len(embedding)*4) // 4 bytes per float32
	for i, val := range embedding {
		offset := i * 4
		bits := math.Float32bits(val)
		id.BiometricData[offset] = byte(bits)
		id.BiometricData[offset+1] = byte(bits >> 8)
		id.BiometricData[offset+2] = byte(bits >> 16)
		id.BiometricData[offset+3] = byte(bits >> 24)
	}
}
