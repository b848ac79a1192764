package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SendStatusQueued  = "queued"
	SendStatusRunning = "running"
	SendStatusSent    = "sent"
	SendStatusFailed  = "failed"
	SendStatusSkipped = "skipped"
)

// ScheduledSend is a queue row for one sequence step delivery. Workers claim
// rows with FOR UPDATE SKIP LOCKED, so a row is only ever run by one worker.
type ScheduledSend struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	SequenceID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"sequence_id"`
	Sequence    *Sequence     `gorm:"constraint:OnDelete:CASCADE;foreignKey:SequenceID;references:ID" json:"sequence,omitempty"`
	StepID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"step_id"`
	Step        *SequenceStep `gorm:"constraint:OnDelete:CASCADE;foreignKey:StepID;references:ID" json:"step,omitempty"`
	ContactID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"contact_id"`

	Channel string `gorm:"not null;column:channel" json:"channel"`
	Status  string `gorm:"not null;default:queued;index;column:status" json:"status"`

	Attempts    int        `gorm:"not null;default:0;column:attempts" json:"attempts"`
	RunAt       time.Time  `gorm:"not null;index;column:run_at" json:"run_at"`
	LockedAt    *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at" json:"heartbeat_at,omitempty"`
	SentAt      *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	LastError   string     `gorm:"column:last_error" json:"last_error,omitempty"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScheduledSend) TableName() string { return "scheduled_send" }
