package domain

import (
	"time"
)

// Call represents a single AI call attempt against a lead.
//
// ProviderCallID is the provider-assigned identifier and the sole key used to
// route webhook updates back to this record. Transcript is append-only and
// RecordingURL, once set, is never cleared by webhook processing.
type Call struct {
	ID              string     `json:"id" db:"id" gorm:"column:id;primaryKey"`
	LeadID          string     `json:"lead_id" db:"lead_id" gorm:"column:lead_id;index"`
	Provider        string     `json:"provider" db:"provider" gorm:"column:provider"`
	ProviderCallID  string     `json:"provider_call_id" db:"provider_call_id" gorm:"column:provider_call_id;uniqueIndex"`
	Direction       string     `json:"direction" db:"direction" gorm:"column:direction"`
	Status          string     `json:"status" db:"status" gorm:"column:status;index"`
	Purpose         string     `json:"purpose" db:"purpose" gorm:"column:purpose"`
	StartTime       *time.Time `json:"start_time" db:"start_time" gorm:"column:start_time;index"`
	EndTime         *time.Time `json:"end_time" db:"end_time" gorm:"column:end_time"`
	DurationSeconds int        `json:"duration_seconds" db:"duration_seconds" gorm:"column:duration_seconds"`
	Transcript      JSONBArray `json:"transcript" db:"transcript" gorm:"column:transcript;type:jsonb"`
	RecordingURL    string     `json:"recording_url" db:"recording_url" gorm:"column:recording_url"`
	Summary         string     `json:"summary" db:"summary" gorm:"column:summary"`
	Metadata        JSONB      `json:"metadata" db:"metadata" gorm:"column:metadata;type:jsonb"`
	Cost            float64    `json:"cost" db:"cost" gorm:"column:cost"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Call) TableName() string {
	return "calls"
}
