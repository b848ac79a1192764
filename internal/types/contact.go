package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContactStatusLead     = "lead"
	ContactStatusProspect = "prospect"
	ContactStatusCustomer = "customer"
	ContactStatusChurned  = "churned"
)

const (
	ContactSourceManual  = "manual"
	ContactSourceWebhook = "webhook"
	ContactSourceImport  = "import"
)

type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`

	FirstName string `gorm:"column:first_name" json:"first_name"`
	LastName  string `gorm:"column:last_name" json:"last_name"`
	Email     string `gorm:"index;column:email" json:"email"`
	Phone     string `gorm:"column:phone" json:"phone"`
	Title     string `gorm:"column:title" json:"title"`
	Company   string `gorm:"column:company" json:"company"`
	ZipCode   string `gorm:"column:zip_code" json:"zip_code"`

	Status string `gorm:"not null;default:lead;index;column:status" json:"status"`
	Source string `gorm:"not null;default:manual;column:source" json:"source"`

	// Territory routing output (rule tables).
	State       string `gorm:"column:state" json:"state"`
	Region      string `gorm:"index;column:region" json:"region"`
	AssignedRep string `gorm:"column:assigned_rep" json:"assigned_rep"`

	Score        int  `gorm:"not null;default:0;column:score" json:"score"`
	IsVIP        bool `gorm:"not null;default:false;column:is_vip" json:"is_vip"`
	IsCompetitor bool `gorm:"not null;default:false;column:is_competitor" json:"is_competitor"`

	Enrichment datatypes.JSON `gorm:"type:jsonb;column:enrichment" json:"enrichment,omitempty"`

	LastContactedAt *time.Time     `gorm:"column:last_contacted_at" json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contact) TableName() string { return "contact" }

func (c *Contact) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}
