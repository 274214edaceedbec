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

/*
Package logger provides structured JSON logging with per-tenant context
for AgentDash components.

# Overview

The logger outputs single-line JSON to stdout, making logs easily consumable
by CloudWatch, ELK, or other aggregation systems.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (dashboard, backends, etc.)
  - Instance ID and container name (for distributed tracing)
  - Agent ID (for tenant isolation)
  - Request ID (for request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("dashboard")

Log messages with agent and request context:

	log.Info("agent-luis", "req-456", "Resolving tenant", map[string]interface{}{
	    "method": "GET",
	    "path":   "/api/agents/agent-luis",
	})

Log errors with status codes:

	log.ErrorWithCode("agent-luis", "req-456", "Brain data fetch failed", 502, err, nil)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
