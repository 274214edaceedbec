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
	"testing"
	"time"
)

func TestRowBool(t *testing.T) {
	tests := []struct {
		name string
		val  interface{}
		want bool
	}{
		{"native true", true, true},
		{"native false", false, false},
		{"portuguese sim", "sim", true},
		{"string true", "true", true},
		{"string with whitespace", " SIM ", true},
		{"numeric one", int64(1), true},
		{"numeric zero", float64(0), false},
		{"string nao", "nao", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := map[string]interface{}{"flag": tt.val}
			if got := rowBool(row, "flag"); got != tt.want {
				t.Errorf("rowBool(%v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}

	if rowBool(map[string]interface{}{}, "missing") {
		t.Error("missing key should be false")
	}
}

func TestRowTime(t *testing.T) {
	native := time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		val  interface{}
		want time.Time
	}{
		{"native time", native, native},
		{"rfc3339 string", "2025-08-20T10:30:00Z", native},
		{"sql timestamp string", "2025-08-20 10:30:00", native},
		{"date only", "2025-08-20", time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"garbage", "not-a-time", time.Time{}},
		{"nil", nil, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := map[string]interface{}{"at": tt.val}
			if got := rowTime(row, "at"); !got.Equal(tt.want) {
				t.Errorf("rowTime(%v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}

func TestRowStringPtr(t *testing.T) {
	row := map[string]interface{}{"present": "value", "empty": ""}

	if p := rowStringPtr(row, "present"); p == nil || *p != "value" {
		t.Errorf("expected pointer to value, got %v", p)
	}
	if p := rowStringPtr(row, "empty"); p != nil {
		t.Error("empty string should yield nil pointer")
	}
	if p := rowStringPtr(row, "missing"); p != nil {
		t.Error("missing key should yield nil pointer")
	}
}

func TestRowMap(t *testing.T) {
	native := map[string]interface{}{"k": "v"}

	tests := []struct {
		name string
		val  interface{}
		want interface{}
	}{
		{"native map", native, "v"},
		{"json string", `{"k": "v"}`, "v"},
		{"json bytes", []byte(`{"k": "v"}`), "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := map[string]interface{}{"data": tt.val}
			m := rowMap(row, "data")
			if m == nil || m["k"] != tt.want {
				t.Errorf("rowMap(%v) = %v", tt.val, m)
			}
		})
	}

	if m := rowMap(map[string]interface{}{"data": "not json"}, "data"); m != nil {
		t.Errorf("expected nil for undecodable value, got %v", m)
	}
	if m := rowMap(map[string]interface{}{}, "missing"); m != nil {
		t.Error("missing key should yield nil map")
	}
}
