package domain

import (
	"time"
)

// Agent represents a saved voice assistant configuration.
// The assistant itself lives on the provider side; this record keeps the
// prompt material and the provider assistant id for reuse across calls.
type Agent struct {
	ID              string    `json:"id" db:"id" gorm:"column:id;primaryKey"`
	VapiAssistantID string    `json:"vapi_assistant_id" db:"vapi_assistant_id" gorm:"column:vapi_assistant_id;index"`
	Name            string    `json:"name" db:"name" gorm:"column:name"`
	Category        string    `json:"category" db:"category" gorm:"column:category"`
	Language        string    `json:"language" db:"language" gorm:"column:language"`
	SystemPrompt    string    `json:"system_prompt" db:"system_prompt" gorm:"column:system_prompt"`
	FirstMessage    string    `json:"first_message" db:"first_message" gorm:"column:first_message"`
	Description     string    `json:"description" db:"description" gorm:"column:description"`
	CreatedAt       time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}
