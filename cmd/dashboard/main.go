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

// Package main is the entry point for the AgentDash dashboard service.
//
// The dashboard serves multi-tenant agent analytics:
// - Resolves agentIds to per-tenant backend configuration
// - Caches one live backend handle per (agent, execution context)
// - Aggregates chat, reasoning, and memory reads into brain data
//
// Usage:
//
//	./dashboard
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	TENANT_AGENT_IDS - comma-separated agentIds to load from env
//	TENANTS_FILE - optional YAML tenant registry file
//	TENANT_SECRETS_ENABLED - resolve secretsmanager: credential refs
//	JWT_SECRET - secret for login tokens (empty disables auth)
package main

import (
	"agentdash/platform/dashboard"
)

func main() {
	dashboard.Run()
}
