package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type SequenceStep struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SequenceID uuid.UUID `gorm:"type:uuid;not null;index" json:"sequence_id"`
	Sequence   *Sequence `gorm:"constraint:OnDelete:CASCADE;foreignKey:SequenceID;references:ID" json:"sequence,omitempty"`

	Ordinal int    `gorm:"not null;column:ordinal" json:"ordinal"`
	Channel string `gorm:"not null;column:channel" json:"channel"`
	Subject string `gorm:"column:subject" json:"subject"`
	Body    string `gorm:"not null;column:body" json:"body"`
	// Days after activation this step goes out.
	DayOffset int `gorm:"not null;default:0;column:day_offset" json:"day_offset"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SequenceStep) TableName() string { return "sequence_step" }
