package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	WebhookStatusProcessed = "processed"
	WebhookStatusRejected  = "rejected"
	WebhookStatusFailed    = "failed"
)

// WebhookEvent records every inbound delivery, including rejected and failed
// ones, with the raw payload for replay/debugging.
type WebhookEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Source string    `gorm:"not null;index;column:source" json:"source"`
	Action string    `gorm:"index;column:action" json:"action"`

	Payload datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload,omitempty"`
	Status  string         `gorm:"not null;index;column:status" json:"status"`
	Error   string         `gorm:"column:error" json:"error,omitempty"`

	ContactID *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (WebhookEvent) TableName() string { return "webhook_event" }
