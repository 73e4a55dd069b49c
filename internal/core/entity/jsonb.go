package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScanJSON decodes a JSONB column into dst. Nested value types implement
// sql.Scanner by delegating here.
func ScanJSON(src any, dst any) error {
	var source []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
	if len(bytes.TrimSpace(source)) == 0 {
		return nil
	}
	if err := json.Unmarshal(source, dst); err != nil {
		return fmt.Errorf("decode JSONB into %T: %w", dst, err)
	}
	return nil
}

// JSONValue encodes v for a JSONB column.
func JSONValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
