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
	"context"
	"fmt"

	"agentdash/platform/backends"
	"agentdash/platform/backends/base"
	"agentdash/platform/shared/logger"
	"agentdash/platform/tenant"
)

// schemaVariant is the per-family query vocabulary: which entities to read
// and how to normalize their rows into the common shapes. Variants carry no
// state and no I/O; the surrounding tenantService does the querying.
type schemaVariant interface {
	family() string

	agentQuery(agentID string) *base.RowQuery
	leadQuery(leadID string) *base.RowQuery
	messagesQuery(leadID string) *base.RowQuery
	sessionsQuery(leadID string) *base.RowQuery
	notesQuery(leadID string) *base.RowQuery
	memoryQuery(leadID string) *base.RowQuery

	mapAgent(agentID string, row map[string]interface{}) *AgentSummary
	mapMessage(row map[string]interface{}) ChatMessage
	mapSession(row map[string]interface{}) ChatSession
	applyNotes(row map[string]interface{}, out *BrainData)
	mapMemory(row map[string]interface{}) *MemorySnapshot
}

// Factory resolves agent ids into tenant-specific Service implementations.
// Its only job is variant selection plus wiring a cached handle into the
// chosen variant; it performs no business logic itself.
type Factory struct {
	registry *tenant.Registry
	cache    *backends.Cache
	log      *logger.Logger
}

// NewFactory creates a service factory over an explicit registry and cache.
func NewFactory(registry *tenant.Registry, cache *backends.Cache, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.New("service")
	}
	return &Factory{
		registry: registry,
		cache:    cache,
		log:      log,
	}
}

// Build resolves the Service for an agent id. The registry lookup happens
// first, so an unknown tenant fast-fails before any I/O; only then is the
// server-context handle fetched (or created) from the cache.
func (f *Factory) Build(ctx context.Context, agentID string) (Service, error) {
	cfg, err := f.registry.Resolve(agentID)
	if err != nil {
		return nil, err
	}

	// Closed set of schema families: adding a tenant family means adding
	// one variant and one case here.
	var variant schemaVariant
	switch cfg.SchemaFamily {
	case tenant.FamilyCRM:
		variant = crmVariant{}
	case tenant.FamilyCollections:
		variant = collectionsVariant{}
	default:
		return nil, fmt.Errorf("unsupported schema family %q for agent '%s'", cfg.SchemaFamily, agentID)
	}

	handle, err := f.cache.GetOrCreate(ctx, agentID, backends.ContextServer)
	if err != nil {
		return nil, err
	}

	return &tenantService{
		agentID: agentID,
		handle:  handle,
		variant: variant,
		log:     f.log,
	}, nil
}
