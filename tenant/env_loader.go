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
	"strings"
	"time"
)

// LoadFromEnv loads one tenant configuration from environment variables.
// Variables are prefixed with TENANT_<AGENT_ID>_ where the agent id is
// uppercased and non-alphanumerics become underscores.
// Example: TENANT_AGENT_LUIS_URL, TENANT_AGENT_LUIS_SERVICE_CREDENTIAL.
func LoadFromEnv(agentID string) (*Config, error) {
	prefix := "TENANT_" + envKey(agentID) + "_"

	cfg := &Config{
		AgentID: agentID,
		Options: make(map[string]interface{}),
	}

	// Endpoint URL (required)
	endpointURL := os.Getenv(prefix + "URL")
	if endpointURL == "" {
		return nil, fmt.Errorf("missing required environment variable: %sURL", prefix)
	}
	cfg.EndpointURL = endpointURL

	// Backend kind (required)
	kind := os.Getenv(prefix + "KIND")
	if kind == "" {
		return nil, fmt.Errorf("missing required environment variable: %sKIND", prefix)
	}
	cfg.BackendKind = kind

	// Schema family (required for service variant selection)
	family := os.Getenv(prefix + "SCHEMA")
	if family == "" {
		return nil, fmt.Errorf("missing required environment variable: %sSCHEMA", prefix)
	}
	if !IsValidFamily(family) {
		return nil, fmt.Errorf("unsupported schema family for %s: %s", agentID, family)
	}
	cfg.SchemaFamily = family

	// Credentials: absence is not fatal at load time, Validate catches it
	// loudly on first use so a fixed deployment can recover without restart
	// of the loader logic.
	cfg.ServiceCredential = os.Getenv(prefix + "SERVICE_CREDENTIAL")
	cfg.AnonCredential = os.Getenv(prefix + "ANON_CREDENTIAL")

	cfg.ContextLabel = os.Getenv(prefix + "LABEL")
	cfg.Database = os.Getenv(prefix + "DATABASE")

	// Timeout (optional, defaults to 5s)
	timeoutStr := os.Getenv(prefix + "TIMEOUT")
	if timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format for %s: %s", agentID, timeoutStr)
		}
		cfg.Timeout = timeout
	} else {
		cfg.Timeout = 5 * time.Second
	}

	// Backend username rides in options; it is not secret material
	if username := os.Getenv(prefix + "USERNAME"); username != "" {
		cfg.Options["username"] = username
	}

	return cfg, nil
}

// LoadAllFromEnv loads every tenant named in TENANT_AGENT_IDS (comma
// separated). A tenant that fails to load is skipped with its error
// collected, so one broken entry does not take down the rest.
func LoadAllFromEnv() ([]*Config, []error) {
	idsVar := os.Getenv("TENANT_AGENT_IDS")
	if idsVar == "" {
		return nil, nil
	}

	var configs []*Config
	var errs []error

	for _, id := range strings.Split(idsVar, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		cfg, err := LoadFromEnv(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		configs = append(configs, cfg)
	}

	return configs, errs
}

// envKey converts an agent id into its environment variable fragment.
func envKey(agentID string) string {
	key := strings.ToUpper(agentID)
	var sb strings.Builder
	for _, r := range key {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
