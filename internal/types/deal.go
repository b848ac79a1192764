package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DealStageQualification = "qualification"
	DealStageProposal      = "proposal"
	DealStageNegotiation   = "negotiation"
	DealStageClosedWon     = "closed_won"
	DealStageClosedLost    = "closed_lost"
)

var DealStages = []string{
	DealStageQualification,
	DealStageProposal,
	DealStageNegotiation,
	DealStageClosedWon,
	DealStageClosedLost,
}

type Deal struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	ContactID   uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact     *Contact  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"contact,omitempty"`

	Title       string `gorm:"not null;column:title" json:"title"`
	AmountCents int64  `gorm:"not null;default:0;column:amount_cents" json:"amount_cents"`
	Stage       string `gorm:"not null;default:qualification;index;column:stage" json:"stage"`
	// 0..100; pinned to 100/0 when the deal closes.
	Probability int `gorm:"not null;default:0;column:probability" json:"probability"`

	ExpectedCloseAt *time.Time     `gorm:"column:expected_close_at" json:"expected_close_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Deal) TableName() string { return "deal" }

func ValidDealStage(stage string) bool {
	for _, s := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}
