package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FeatureMatrix maps feature keys to explicit allow/deny decisions for a plan.
// A missing key means the plan has no opinion and resolution falls through to
// the trial/default tiers.
type FeatureMatrix map[string]bool

func (m FeatureMatrix) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *FeatureMatrix) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported feature matrix type %T", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Lookup returns the explicit decision for a feature and whether one exists.
func (m FeatureMatrix) Lookup(feature string) (bool, bool) {
	if m == nil {
		return false, false
	}
	allowed, ok := m[feature]
	return allowed, ok
}
