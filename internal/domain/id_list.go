package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList stores a slice of entity ids inside a JSON column. Referenced
// entities may no longer exist; callers resolve ids leniently.
type IDList []uint

// Value implements driver.Valuer so IDList can be stored as JSON.
func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}

	data, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Scan implements sql.Scanner to hydrate the IDList from the database.
func (l *IDList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return l.unmarshal(v)
	case string:
		return l.unmarshal([]byte(v))
	default:
		return fmt.Errorf("domain.IDList: unsupported type %T", value)
	}
}

func (l *IDList) unmarshal(data []byte) error {
	if len(data) == 0 {
		*l = nil
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("domain.IDList: decode JSON: %w", err)
	}
	*l = ids
	return nil
}

// Contains reports whether id is present in the list.
func (l IDList) Contains(id uint) bool {
	for _, candidate := range l {
		if candidate == id {
			return true
		}
	}
	return false
}
