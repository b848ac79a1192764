package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// OutboundMessage is the audit row for every provider send (email or SMS).
// The SMS daily rate limit is a COUNT over this table.
type OutboundMessage struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	ContactID   *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	Contact     *Contact   `gorm:"constraint:OnDelete:SET NULL;foreignKey:ContactID;references:ID" json:"contact,omitempty"`

	Channel     string `gorm:"not null;index;column:channel" json:"channel"`
	ToAddress   string `gorm:"not null;index;column:to_address" json:"to_address"`
	Provider    string `gorm:"not null;column:provider" json:"provider"`
	ProviderSID string `gorm:"column:provider_sid" json:"provider_sid,omitempty"`
	Subject     string `gorm:"column:subject" json:"subject,omitempty"`
	Body        string `gorm:"column:body" json:"body"`
	Status      string `gorm:"not null;index;column:status" json:"status"`
	Error       string `gorm:"column:error" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (OutboundMessage) TableName() string { return "outbound_message" }
