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

package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedComp   string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "dashboard",
			instanceID:     "instance-123",
			expectedComp:   "dashboard",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "backends",
			instanceID:     "",
			expectedComp:   "backends",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				t.Setenv("INSTANCE_ID", tt.instanceID)
			} else {
				if err := os.Unsetenv("INSTANCE_ID"); err != nil {
					t.Fatalf("Failed to unset INSTANCE_ID: %v", err)
				}
			}

			logger := New(tt.component)

			if logger.Component != tt.expectedComp {
				t.Errorf("Expected component %s, got %s", tt.expectedComp, logger.Component)
			}

			if logger.InstanceID != tt.expectedInstID {
				t.Errorf("Expected instance ID %s, got %s", tt.expectedInstID, logger.InstanceID)
			}

			if logger.Container == "" {
				t.Error("Expected container to be set from hostname")
			}
		})
	}
}

// captureOutput captures log package output during fn
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	fn()
	return buf.String()
}

// TestLogEntryFormat verifies log entries are valid single-line JSON with tenant context
func TestLogEntryFormat(t *testing.T) {
	logger := &Logger{Component: "dashboard", InstanceID: "i-1", Container: "c-1"}

	out := captureOutput(func() {
		logger.Info("agent-luis", "req-1", "Resolving tenant", map[string]interface{}{
			"path": "/api/agents/agent-luis",
		})
	})

	// Strip the log package's own prefix up to the JSON payload
	idx := strings.Index(out, "{")
	if idx < 0 {
		t.Fatalf("No JSON payload in log output: %q", out)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out[idx:])), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}

	if entry.Level != INFO {
		t.Errorf("Expected level INFO, got %s", entry.Level)
	}
	if entry.AgentID != "agent-luis" {
		t.Errorf("Expected agent_id agent-luis, got %s", entry.AgentID)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("Expected request_id req-1, got %s", entry.RequestID)
	}
	if entry.Fields["path"] != "/api/agents/agent-luis" {
		t.Errorf("Expected path field, got %v", entry.Fields)
	}
}

// TestErrorWithCode verifies error details and status codes land in fields
func TestErrorWithCode(t *testing.T) {
	logger := &Logger{Component: "dashboard", InstanceID: "i-1", Container: "c-1"}

	out := captureOutput(func() {
		logger.ErrorWithCode("agent-alice", "req-2", "Brain data fetch failed", 502, os.ErrDeadlineExceeded, nil)
	})

	idx := strings.Index(out, "{")
	if idx < 0 {
		t.Fatalf("No JSON payload in log output: %q", out)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out[idx:])), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}

	if entry.Level != ERROR {
		t.Errorf("Expected level ERROR, got %s", entry.Level)
	}
	if entry.Fields["status_code"] != float64(502) {
		t.Errorf("Expected status_code 502, got %v", entry.Fields["status_code"])
	}
	if entry.Fields["error"] == "" {
		t.Error("Expected error field to be populated")
	}
}
