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
	"fmt"
	"sort"
	"time"
)

// Schema family constants. Each family names one closed vocabulary of tables
// and fields that a tenant's backend follows; the service layer selects its
// implementation variant from this value.
const (
	FamilyCRM         = "crm"         // Portuguese-vocabulary CRM schema (agentes, mensagens, respondeu...)
	FamilyCollections = "collections" // English debtor-collections schema (agents, chat_messages, contacted...)
)

// ValidFamilies is the closed set of supported schema families.
var ValidFamilies = []string{FamilyCRM, FamilyCollections}

// IsValidFamily checks if the given schema family is supported.
func IsValidFamily(family string) bool {
	for _, f := range ValidFamilies {
		if f == family {
			return true
		}
	}
	return false
}

// Sentinel errors for tenant resolution. Callers classify failures with
// errors.Is; the wrapped message carries the diagnostic detail.
var (
	// ErrUnknownTenant means the agent id has no registry entry. A client
	// error: never retried, never defaulted.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrMissingCredential means a registry entry exists but is incomplete.
	// A deployment defect: surfaced as a server error and logged loudly.
	ErrMissingCredential = errors.New("missing tenant credential")
)

// Config is the immutable per-tenant connection configuration. One entry per
// agent id, populated once at process start. Callers must not mutate it.
type Config struct {
	AgentID           string                 `json:"agent_id"`
	BackendKind       string                 `json:"backend_kind"`  // postgres, mysql, mongodb, redis, cassandra
	EndpointURL       string                 `json:"endpoint_url"`  // Where to connect
	ServiceCredential string                 `json:"-"`             // Long-lived server-side secret, never serialized
	AnonCredential    string                 `json:"-"`             // Short-lived, scope-limited browser credential
	SchemaFamily      string                 `json:"schema_family"` // Selects the service variant
	ContextLabel      string                 `json:"context_label"` // Optional diagnostic tag
	Database          string                 `json:"database"`      // Database / keyspace where applicable
	Options           map[string]interface{} `json:"options"`
	Timeout           time.Duration          `json:"timeout"`
}

// Validate checks a config for completeness. Endpoint URL and the service
// credential are non-negotiable; their absence is a configuration error, not
// a soft failure.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrMissingCredential)
	}
	if cfg.EndpointURL == "" {
		return fmt.Errorf("%w: agent '%s' has no endpoint URL", ErrMissingCredential, cfg.AgentID)
	}
	if cfg.ServiceCredential == "" {
		return fmt.Errorf("%w: agent '%s' has no service credential", ErrMissingCredential, cfg.AgentID)
	}
	return nil
}

// Registry is the static mapping from agent id to tenant configuration.
// It is populated once at construction and read-only thereafter, so no lock
// is needed for concurrent Resolve calls.
type Registry struct {
	configs map[string]*Config
}

// NewRegistry builds a registry from the given configs. Later configs with
// the same agent id override earlier ones, which is how the env loader wins
// over the file loader.
func NewRegistry(configs ...*Config) *Registry {
	m := make(map[string]*Config, len(configs))
	for _, cfg := range configs {
		if cfg == nil || cfg.AgentID == "" {
			continue
		}
		m[cfg.AgentID] = cfg
	}
	return &Registry{configs: m}
}

// Resolve returns the configuration for an agent id. Fails with
// ErrUnknownTenant when the id has no entry; there is no silent defaulting.
func (r *Registry) Resolve(agentID string) (*Config, error) {
	cfg, ok := r.configs[agentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTenant, agentID)
	}
	return cfg, nil
}

// AgentIDs returns the known agent ids in sorted order.
func (r *Registry) AgentIDs() []string {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered tenants.
func (r *Registry) Count() int {
	return len(r.configs)
}
