// Copyright 2025 AgentDash
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Row value coercion helpers. Backend handles return rows as loosely typed
// maps; the shapes differ per driver (strings from lib/pq byte slices,
// time.Time from mongo, numbers as int64 or float64), so normalization
// tolerates all of them.

func rowString(row map[string]interface{}, key string) string {
	val, ok := row[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

func rowStringPtr(row map[string]interface{}, key string) *string {
	s := rowString(row, key)
	if s == "" {
		return nil
	}
	return &s
}

func rowTime(row map[string]interface{}, key string) time.Time {
	val, ok := row[key]
	if !ok || val == nil {
		return time.Time{}
	}

	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func rowTimePtr(row map[string]interface{}, key string) *time.Time {
	t := rowTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// rowBool coerces per-tenant truthiness vocabulary: booleans, numeric flags,
// and string forms including Portuguese "sim".
func rowBool(row map[string]interface{}, key string) bool {
	val, ok := row[key]
	if !ok || val == nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1", "yes", "sim":
			return true
		}
	}
	return false
}

// rowMap coerces a nested document: native maps from mongo, JSON text from
// SQL and Redis backends.
func rowMap(row map[string]interface{}, key string) map[string]interface{} {
	val, ok := row[key]
	if !ok || val == nil {
		return nil
	}

	switch v := val.(type) {
	case map[string]interface{}:
		return v
	case string:
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			return m
		}
	case []byte:
		var m map[string]interface{}
		if err := json.Unmarshal(v, &m); err == nil {
			return m
		}
	}
	return nil
}
