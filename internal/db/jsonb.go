/*-------------------------------------------------------------------------
 *
 * jsonb.go
 *    JSONB column mapping
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/jsonb.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

/* JSONBMap maps a jsonb column to a Go map */
type JSONBMap map[string]interface{}

/* Value implements driver.Valuer */
func (m JSONBMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

/* Scan implements sql.Scanner */
func (m *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*m = make(JSONBMap)
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}

	if len(data) == 0 {
		*m = make(JSONBMap)
		return nil
	}

	return json.Unmarshal(data, m)
}

/* ToMap returns the map, never nil */
func (m JSONBMap) ToMap() map[string]interface{} {
	if m == nil {
		return make(map[string]interface{})
	}
	return m
}

/* FromMap converts a plain map to JSONBMap */
func FromMap(m map[string]interface{}) JSONBMap {
	if m == nil {
		return make(JSONBMap)
	}
	return JSONBMap(m)
}
