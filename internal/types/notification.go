package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationContactUpdated    = "contact_updated"
	NotificationDealStageChanged  = "deal_stage_changed"
	NotificationSequenceCompleted = "sequence_completed"
	NotificationWebhookReceived   = "webhook_received"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Type  string         `gorm:"not null;index;column:type" json:"type"`
	Title string         `gorm:"not null;column:title" json:"title"`
	Body  string         `gorm:"column:body" json:"body"`
	Data  datatypes.JSON `gorm:"type:jsonb;column:data" json:"data,omitempty"`
	Read  bool           `gorm:"not null;default:false;index;column:read" json:"read"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Notification) TableName() string { return "notification" }
