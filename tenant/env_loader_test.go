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

package tenant

import (
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TENANT_AGENT_LUIS_URL", "postgres://db.example.com:5432/crm")
	t.Setenv("TENANT_AGENT_LUIS_KIND", "postgres")
	t.Setenv("TENANT_AGENT_LUIS_SCHEMA", "crm")
	t.Setenv("TENANT_AGENT_LUIS_SERVICE_CREDENTIAL", "s3cret")
	t.Setenv("TENANT_AGENT_LUIS_ANON_CREDENTIAL", "anon-token")
	t.Setenv("TENANT_AGENT_LUIS_DATABASE", "crm")
	t.Setenv("TENANT_AGENT_LUIS_TIMEOUT", "10s")
	t.Setenv("TENANT_AGENT_LUIS_USERNAME", "dashboard_ro")

	cfg, err := LoadFromEnv("agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AgentID != "agent-luis" {
		t.Errorf("expected agent-luis, got %s", cfg.AgentID)
	}
	if cfg.BackendKind != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.BackendKind)
	}
	if cfg.SchemaFamily != FamilyCRM {
		t.Errorf("expected crm family, got %s", cfg.SchemaFamily)
	}
	if cfg.ServiceCredential != "s3cret" {
		t.Errorf("service credential not loaded")
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout)
	}
	if cfg.Options["username"] != "dashboard_ro" {
		t.Errorf("expected username option, got %v", cfg.Options["username"])
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("TENANT_AGENT_ANA_URL", "redis://cache.example.com:6379")
	t.Setenv("TENANT_AGENT_ANA_KIND", "redis")
	t.Setenv("TENANT_AGENT_ANA_SCHEMA", "collections")

	cfg, err := LoadFromEnv("agent-ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected default 5s timeout, got %v", cfg.Timeout)
	}
	// Missing credentials load fine; Validate flags them on first use
	if err := Validate(cfg); err == nil {
		t.Error("expected Validate to reject config without service credential")
	}
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing URL", "TENANT_AGENT_BOB_URL"},
		{"missing KIND", "TENANT_AGENT_BOB_KIND"},
		{"missing SCHEMA", "TENANT_AGENT_BOB_SCHEMA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TENANT_AGENT_BOB_URL", "postgres://localhost:5432/dash")
			t.Setenv("TENANT_AGENT_BOB_KIND", "postgres")
			t.Setenv("TENANT_AGENT_BOB_SCHEMA", "crm")
			t.Setenv(tt.unset, "")

			if _, err := LoadFromEnv("agent-bob"); err == nil {
				t.Error("expected error for missing required variable")
			}
		})
	}
}

func TestLoadFromEnvRejectsUnknownFamily(t *testing.T) {
	t.Setenv("TENANT_AGENT_BOB_URL", "postgres://localhost:5432/dash")
	t.Setenv("TENANT_AGENT_BOB_KIND", "postgres")
	t.Setenv("TENANT_AGENT_BOB_SCHEMA", "warehouse")

	if _, err := LoadFromEnv("agent-bob"); err == nil {
		t.Error("expected error for unsupported schema family")
	}
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("TENANT_AGENT_BOB_URL", "postgres://localhost:5432/dash")
	t.Setenv("TENANT_AGENT_BOB_KIND", "postgres")
	t.Setenv("TENANT_AGENT_BOB_SCHEMA", "crm")
	t.Setenv("TENANT_AGENT_BOB_TIMEOUT", "ten-seconds")

	if _, err := LoadFromEnv("agent-bob"); err == nil {
		t.Error("expected error for malformed timeout")
	}
}

func TestLoadAllFromEnvCollectsErrors(t *testing.T) {
	t.Setenv("TENANT_AGENT_IDS", "agent-good, agent-broken,")
	t.Setenv("TENANT_AGENT_GOOD_URL", "postgres://localhost:5432/dash")
	t.Setenv("TENANT_AGENT_GOOD_KIND", "postgres")
	t.Setenv("TENANT_AGENT_GOOD_SCHEMA", "crm")
	// agent-broken has no vars at all

	configs, errs := LoadAllFromEnv()
	if len(configs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(configs))
	}
	if configs[0].AgentID != "agent-good" {
		t.Errorf("expected agent-good, got %s", configs[0].AgentID)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 collected error, got %d", len(errs))
	}
}

func TestLoadAllFromEnvEmpty(t *testing.T) {
	t.Setenv("TENANT_AGENT_IDS", "")

	configs, errs := LoadAllFromEnv()
	if configs != nil || errs != nil {
		t.Error("expected nil results when TENANT_AGENT_IDS unset")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		agentID string
		want    string
	}{
		{"agent-luis", "AGENT_LUIS"},
		{"agent.v2", "AGENT_V2"},
		{"Agent01", "AGENT01"},
	}

	for _, tt := range tests {
		if got := envKey(tt.agentID); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.agentID, got, tt.want)
		}
	}
}
