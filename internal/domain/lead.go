package domain

import (
	"time"
)

// LeadSource represents how a lead entered the system
type LeadSource string

const (
	LeadSourceManual LeadSource = "manual"
	LeadSourceImport LeadSource = "import"
	LeadSourcePlaces LeadSource = "places_search"
)

// Lead represents a sales lead that can be targeted by AI calls.
// Phone is the primary correlation key for calls and must be unique
// among current leads.
type Lead struct {
	ID            string      `json:"id" db:"id" gorm:"column:id;primaryKey"`
	Name          string      `json:"name" db:"name" gorm:"column:name"`
	BusinessName  string      `json:"business_name" db:"business_name" gorm:"column:business_name"`
	Phone         string      `json:"phone" db:"phone" gorm:"column:phone;uniqueIndex"`
	Email         string      `json:"email" db:"email" gorm:"column:email"`
	Address       string      `json:"address" db:"address" gorm:"column:address"`
	City          string      `json:"city" db:"city" gorm:"column:city"`
	State         string      `json:"state" db:"state" gorm:"column:state"`
	Country       string      `json:"country" db:"country" gorm:"column:country"`
	PostalCode    string      `json:"postal_code" db:"postal_code" gorm:"column:postal_code"`
	Rating        float64     `json:"rating" db:"rating" gorm:"column:rating"`
	GooglePlaceID string      `json:"google_place_id" db:"google_place_id" gorm:"column:google_place_id"`
	Source        string      `json:"source" db:"source" gorm:"column:source;index"`
	Metadata      JSONB       `json:"metadata" db:"metadata" gorm:"column:metadata;type:jsonb"`
	Tags          StringArray `json:"tags" db:"tags" gorm:"column:tags;type:jsonb"`
	Notes         string      `json:"notes" db:"notes" gorm:"column:notes"`
	Status        string      `json:"status" db:"status" gorm:"column:status;index"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}
