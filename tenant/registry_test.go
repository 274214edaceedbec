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
	"errors"
	"testing"
)

func validConfig(agentID string) *Config {
	return &Config{
		AgentID:           agentID,
		BackendKind:       "postgres",
		EndpointURL:       "postgres://localhost:5432/dash",
		ServiceCredential: "service-secret",
		AnonCredential:    "anon-token",
		SchemaFamily:      FamilyCRM,
	}
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry(validConfig("agent-luis"), validConfig("agent-ana"))

	cfg, err := registry.Resolve("agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AgentID != "agent-luis" {
		t.Errorf("expected agent-luis, got %s", cfg.AgentID)
	}
}

func TestRegistryResolveUnknownTenant(t *testing.T) {
	registry := NewRegistry(validConfig("agent-luis"))

	_, err := registry.Resolve("agent-ghost")
	if err == nil {
		t.Fatal("expected error for unknown agent id")
	}
	if !errors.Is(err, ErrUnknownTenant) {
		t.Errorf("expected ErrUnknownTenant, got %v", err)
	}
}

func TestRegistryLaterConfigWins(t *testing.T) {
	first := validConfig("agent-luis")
	first.EndpointURL = "postgres://old-host:5432/dash"
	second := validConfig("agent-luis")
	second.EndpointURL = "postgres://new-host:5432/dash"

	registry := NewRegistry(first, second)

	cfg, err := registry.Resolve("agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EndpointURL != "postgres://new-host:5432/dash" {
		t.Errorf("expected later config to win, got %s", cfg.EndpointURL)
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 tenant, got %d", registry.Count())
	}
}

func TestRegistrySkipsNilAndAnonymous(t *testing.T) {
	registry := NewRegistry(nil, &Config{}, validConfig("agent-luis"))

	if registry.Count() != 1 {
		t.Errorf("expected 1 tenant, got %d", registry.Count())
	}
}

func TestRegistryAgentIDsSorted(t *testing.T) {
	registry := NewRegistry(
		validConfig("agent-zeta"),
		validConfig("agent-ana"),
		validConfig("agent-luis"),
	)

	ids := registry.AgentIDs()
	expected := []string{"agent-ana", "agent-luis", "agent-zeta"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d ids, got %d", len(expected), len(ids))
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		nilCfg  bool
		wantErr bool
	}{
		{
			name:    "complete config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "nil config",
			nilCfg:  true,
			wantErr: true,
		},
		{
			name:    "missing endpoint URL",
			mutate:  func(c *Config) { c.EndpointURL = "" },
			wantErr: true,
		},
		{
			name:    "missing service credential",
			mutate:  func(c *Config) { c.ServiceCredential = "" },
			wantErr: true,
		},
		{
			name:    "missing anon credential is acceptable",
			mutate:  func(c *Config) { c.AnonCredential = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *Config
			if !tt.nilCfg {
				cfg = validConfig("agent-luis")
				tt.mutate(cfg)
			}

			err := Validate(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrMissingCredential) {
					t.Errorf("expected ErrMissingCredential, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestIsValidFamily(t *testing.T) {
	if !IsValidFamily(FamilyCRM) {
		t.Error("crm should be valid")
	}
	if !IsValidFamily(FamilyCollections) {
		t.Error("collections should be valid")
	}
	if IsValidFamily("warehouse") {
		t.Error("warehouse should not be valid")
	}
	if IsValidFamily("") {
		t.Error("empty family should not be valid")
	}
}
