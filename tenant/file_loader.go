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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the root structure of a tenants configuration file.
type ConfigFile struct {
	Version string                      `yaml:"version"`
	Tenants map[string]TenantFileEntry  `yaml:"tenants"`
}

// TenantFileEntry represents one tenant in the config file.
type TenantFileEntry struct {
	Kind              string                 `yaml:"kind"`
	EndpointURL       string                 `yaml:"endpoint_url"`
	ServiceCredential string                 `yaml:"service_credential,omitempty"`
	AnonCredential    string                 `yaml:"anon_credential,omitempty"`
	SchemaFamily      string                 `yaml:"schema_family"`
	Label             string                 `yaml:"label,omitempty"`
	Database          string                 `yaml:"database,omitempty"`
	Options           map[string]interface{} `yaml:"options,omitempty"`
	TimeoutMs         int                    `yaml:"timeout_ms,omitempty"`
}

// LoadFromFile loads tenant configurations from a YAML file. Entries with an
// unsupported schema family are rejected; incomplete credentials are kept and
// caught by Validate on first use.
func LoadFromFile(filePath string) ([]*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenants file: %w", err)
	}

	var file ConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tenants file: %w", err)
	}

	configs := make([]*Config, 0, len(file.Tenants))
	for agentID, entry := range file.Tenants {
		if entry.SchemaFamily != "" && !IsValidFamily(entry.SchemaFamily) {
			return nil, fmt.Errorf("tenant %s: unsupported schema family %q", agentID, entry.SchemaFamily)
		}

		timeout := 5 * time.Second
		if entry.TimeoutMs > 0 {
			timeout = time.Duration(entry.TimeoutMs) * time.Millisecond
		}

		options := entry.Options
		if options == nil {
			options = make(map[string]interface{})
		}

		configs = append(configs, &Config{
			AgentID:           agentID,
			BackendKind:       entry.Kind,
			EndpointURL:       entry.EndpointURL,
			ServiceCredential: entry.ServiceCredential,
			AnonCredential:    entry.AnonCredential,
			SchemaFamily:      entry.SchemaFamily,
			ContextLabel:      entry.Label,
			Database:          entry.Database,
			Options:           options,
			Timeout:           timeout,
		})
	}

	return configs, nil
}
