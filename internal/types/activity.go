package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityTypeCall    = "call"
	ActivityTypeEmail   = "email"
	ActivityTypeSMS     = "sms"
	ActivityTypeMeeting = "meeting"
	ActivityTypeNote    = "note"
)

type Activity struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner       *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	ContactID   *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	Contact     *Contact   `gorm:"constraint:OnDelete:SET NULL;foreignKey:ContactID;references:ID" json:"contact,omitempty"`
	DealID      *uuid.UUID `gorm:"type:uuid;index" json:"deal_id,omitempty"`
	Deal        *Deal      `gorm:"constraint:OnDelete:SET NULL;foreignKey:DealID;references:ID" json:"deal,omitempty"`

	Type     string         `gorm:"not null;index;column:type" json:"type"`
	Body     string         `gorm:"column:body" json:"body"`
	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Activity) TableName() string { return "activity" }
