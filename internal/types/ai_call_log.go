package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AICallTypeEmailGenerate    = "email_generate"
	AICallTypeSequenceGenerate = "sequence_generate"
	AICallTypeEnrichment       = "enrichment"
)

// TokenUsage is the provider-neutral shape of the usage block stored on
// ai_call_log rows.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type AICallLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ContactID *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`

	Provider string `gorm:"not null;column:provider" json:"provider"`
	CallType string `gorm:"not null;index;column:call_type" json:"call_type"`
	Model    string `gorm:"not null;column:model" json:"model"`
	Prompt   string `gorm:"column:prompt" json:"prompt"`
	Response string `gorm:"column:response" json:"response"`
	Success  bool   `gorm:"not null;column:success" json:"success"`
	Error    string `gorm:"column:error" json:"error,omitempty"`

	Usage datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }
