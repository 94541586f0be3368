package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Snapshots are persisted as jsonb columns.

func (s DoctorSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *DoctorSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func (s PatientSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *PatientSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported snapshot column type %T", src)
	}
}
