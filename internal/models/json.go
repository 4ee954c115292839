package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// JSONMap is a string key/value map stored in a jsonb column.
type JSONMap map[string]string

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	return json.Unmarshal(b, m)
}

// AttachmentList is a list of attachments stored in a jsonb column.
type AttachmentList []Attachment

// Value implements driver.Valuer
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *AttachmentList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into AttachmentList", src)
	}
	return json.Unmarshal(b, l)
}

// UUIDList is an ordered list of ids stored in a jsonb column.
type UUIDList []uuid.UUID

// Value implements driver.Valuer
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into UUIDList", src)
	}
	return json.Unmarshal(b, l)
}
