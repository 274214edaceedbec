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
	"errors"
	"testing"
	"time"

	"agentdash/platform/backends"
	"agentdash/platform/backends/base"
	"agentdash/platform/tenant"
)

func factoryFixture() (*Factory, *fakeHandle) {
	handle := newFakeHandle()

	registry := tenant.NewRegistry(
		&tenant.Config{
			AgentID:           "agent-luis",
			BackendKind:       base.KindPostgres,
			EndpointURL:       "postgres://localhost:5432/crm",
			ServiceCredential: "service-secret",
			SchemaFamily:      tenant.FamilyCRM,
			Timeout:           time.Second,
		},
		&tenant.Config{
			AgentID:           "agent-ana",
			BackendKind:       base.KindMySQL,
			EndpointURL:       "dashboard@tcp(localhost:3306)/collections",
			ServiceCredential: "service-secret",
			SchemaFamily:      tenant.FamilyCollections,
			Timeout:           time.Second,
		},
	)

	cache := backends.NewCache(backends.CacheOptions{
		Registry: registry,
		Factory: func(kind string) (base.Handle, error) {
			return handle, nil
		},
	})

	return NewFactory(registry, cache, nil), handle
}

func TestBuildSelectsCRMVariant(t *testing.T) {
	factory, handle := factoryFixture()

	svc, err := factory.Build(context.Background(), "agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The variant shows itself through the entities it queries
	handle.rows["agentes"] = []map[string]interface{}{{"agente_id": "agent-luis", "nome": "Luis"}}
	if _, err := svc.GetAgent(context.Background(), "agent-luis"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	queried := handle.queriedEntities()
	if len(queried) != 1 || queried[0] != "agentes" {
		t.Errorf("expected a crm-family query against 'agentes', got %v", queried)
	}
}

func TestBuildSelectsCollectionsVariant(t *testing.T) {
	factory, handle := factoryFixture()

	svc, err := factory.Build(context.Background(), "agent-ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handle.rows["agents"] = []map[string]interface{}{{"agent_id": "agent-ana", "name": "Ana"}}
	if _, err := svc.GetAgent(context.Background(), "agent-ana"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	queried := handle.queriedEntities()
	if len(queried) != 1 || queried[0] != "agents" {
		t.Errorf("expected a collections-family query against 'agents', got %v", queried)
	}
}

func TestBuildUnknownTenant(t *testing.T) {
	factory, handle := factoryFixture()

	_, err := factory.Build(context.Background(), "agent-ghost")
	if !errors.Is(err, tenant.ErrUnknownTenant) {
		t.Errorf("expected ErrUnknownTenant, got %v", err)
	}
	if len(handle.queriedEntities()) != 0 {
		t.Error("unknown tenant must fail before any backend work")
	}
}

func TestBuildReusesCachedHandle(t *testing.T) {
	factory, _ := factoryFixture()

	first, err := factory.Build(context.Background(), "agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := factory.Build(context.Background(), "agent-luis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Services are per-request, the handle behind them is cache-shared
	if first.(*tenantService).handle != second.(*tenantService).handle {
		t.Error("expected both services to borrow the same cached handle")
	}
}
