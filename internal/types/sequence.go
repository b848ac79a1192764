package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SequenceStatusDraft     = "draft"
	SequenceStatusActive    = "active"
	SequenceStatusPaused    = "paused"
	SequenceStatusCompleted = "completed"
)

// Sequence is an SDR-agent outbound message sequence targeting one contact.
type Sequence struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	ContactID   uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact     *Contact  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`

	Persona  string `gorm:"column:persona" json:"persona"`
	Goal     string `gorm:"column:goal" json:"goal"`
	Status   string `gorm:"not null;default:draft;index;column:status" json:"status"`
	Provider string `gorm:"column:provider" json:"provider"`
	Model    string `gorm:"column:model" json:"model"`

	Steps []*SequenceStep `gorm:"foreignKey:SequenceID;references:ID" json:"steps,omitempty"`

	ActivatedAt *time.Time     `gorm:"column:activated_at" json:"activated_at,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sequence) TableName() string { return "sequence" }
