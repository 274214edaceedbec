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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTenantsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTenantsFile(t, `
version: "1"
tenants:
  agent-luis:
    kind: postgres
    endpoint_url: postgres://db.example.com:5432/crm
    service_credential: s3cret
    anon_credential: anon-token
    schema_family: crm
    database: crm
    timeout_ms: 8000
    options:
      username: dashboard_ro
  agent-ana:
    kind: mongodb
    endpoint_url: mongodb://db.example.com:27017
    service_credential: other-secret
    schema_family: collections
    database: collections
`)

	configs, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	byID := make(map[string]*Config)
	for _, cfg := range configs {
		byID[cfg.AgentID] = cfg
	}

	luis := byID["agent-luis"]
	require.NotNil(t, luis)
	assert.Equal(t, "postgres", luis.BackendKind)
	assert.Equal(t, "s3cret", luis.ServiceCredential)
	assert.Equal(t, "anon-token", luis.AnonCredential)
	assert.Equal(t, FamilyCRM, luis.SchemaFamily)
	assert.Equal(t, 8*time.Second, luis.Timeout)
	assert.Equal(t, "dashboard_ro", luis.Options["username"])

	ana := byID["agent-ana"]
	require.NotNil(t, ana)
	assert.Equal(t, FamilyCollections, ana.SchemaFamily)
	assert.Equal(t, 5*time.Second, ana.Timeout, "missing timeout_ms falls back to the default")
	assert.Empty(t, ana.AnonCredential)
}

func TestLoadFromFileRejectsUnknownFamily(t *testing.T) {
	path := writeTenantsFile(t, `
tenants:
  agent-bad:
    kind: postgres
    endpoint_url: postgres://localhost:5432/dash
    schema_family: warehouse
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema family")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/tenants.yaml")
	require.Error(t, err)
}

func TestLoadFromFileMalformedYAML(t *testing.T) {
	path := writeTenantsFile(t, "tenants: [not: a: map")

	_, err := LoadFromFile(path)
	require.Error(t, err)
}
