package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB represents a PostgreSQL JSONB field
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}

	return json.Unmarshal(bytes, j)
}

// JSONBArray represents a PostgreSQL JSONB field holding an ordered array of objects
type JSONBArray []map[string]interface{}

// Value implements the driver.Valuer interface for JSONBArray
func (j JSONBArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONBArray.
// A malformed stored value degrades to an empty array rather than failing the read,
// so a corrupted transcript never blocks webhook processing.
func (j *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBArray", value)
	}

	if err := json.Unmarshal(bytes, j); err != nil {
		*j = nil
		return nil
	}
	return nil
}

// StringArray represents a PostgreSQL JSONB field holding a list of strings
type StringArray []string

// Value implements the driver.Valuer interface for StringArray
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for StringArray
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}

	return json.Unmarshal(bytes, s)
}

// Call lifecycle status constants
const (
	CallStatusInitiated  = "initiated"
	CallStatusInProgress = "in_progress"
	CallStatusCompleted  = "completed"
	CallStatusEnded      = "ended"
)

// Call direction constants
const (
	CallDirectionOutbound = "outbound"
	CallDirectionInbound  = "inbound"
)

// Lead lifecycle status constants
const (
	LeadStatusActive   = "active"
	LeadStatusInactive = "inactive"
)
