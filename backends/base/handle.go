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

package base

import (
	"context"
	"time"
)

// Backend kind constants. Use these instead of magic strings when
// referencing handle kinds.
const (
	KindPostgres  = "postgres"
	KindMySQL     = "mysql"
	KindMongoDB   = "mongodb"
	KindRedis     = "redis"
	KindCassandra = "cassandra"
)

// ValidKinds is the closed set of supported backend kinds.
var ValidKinds = []string{
	KindPostgres,
	KindMySQL,
	KindMongoDB,
	KindRedis,
	KindCassandra,
}

// IsValidKind checks if the given backend kind is supported.
func IsValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Handle is the reusable, authenticated connection to one tenant's backend.
// A Handle is owned by the client cache; callers borrow it and must not
// retain it across requests. Implementations must be safe for concurrent use
// once connected.
type Handle interface {
	// Lifecycle
	Connect(ctx context.Context, config *Config) error
	Disconnect(ctx context.Context) error
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// QueryRows runs a read against the tenant's backend. Row ordering is
	// whatever the backend returned; callers must not assume re-sorting.
	QueryRows(ctx context.Context, query *RowQuery) (*RowSet, error)

	// Metadata
	Name() string // Unique handle instance name, e.g. "agent-luis/server"
	Kind() string // Backend kind (postgres, mysql, mongodb, redis, cassandra)
}

// Config holds everything a Handle needs to open a connection to one
// tenant's backend for one execution context. The credential is the only
// secret material a handle ever sees; which credential lands here is decided
// by the cache based on the execution context.
type Config struct {
	AgentID     string                 `json:"agent_id"`     // Tenant this handle serves
	Name        string                 `json:"name"`         // Unique handle name
	Kind        string                 `json:"kind"`         // Backend kind
	EndpointURL string                 `json:"endpoint_url"` // Connection string / URL
	Credential  string                 `json:"-"`            // Context-scoped credential, never serialized
	StorageKey  string                 `json:"storage_key"`  // Context-specific identity, derived from the agent id
	Database    string                 `json:"database"`     // Database / keyspace name where applicable
	Options     map[string]interface{} `json:"options"`      // Kind-specific options
	Timeout     time.Duration          `json:"timeout"`      // Default operation timeout
}

// RowQuery represents one read against a tenant backend. It is deliberately
// structured rather than a raw statement so that each Handle kind can compile
// it to its native wire form (SQL, CQL, a Mongo find, a Redis range read).
type RowQuery struct {
	Entity     string                 `json:"entity"`     // Table / collection / key-prefix
	Filter     map[string]interface{} `json:"filter"`     // Equality filters, ANDed
	OrderBy    string                 `json:"order_by"`   // Field to order by (optional)
	Descending bool                   `json:"descending"` // Reverse the ordering
	Limit      int                    `json:"limit"`      // Result limit (0 = no limit)
	Timeout    time.Duration          `json:"timeout"`    // Override default timeout
}

// RowSet contains the results of a RowQuery.
type RowSet struct {
	Rows     []map[string]interface{} `json:"rows"`      // Result rows (key-value maps), backend order preserved
	RowCount int                      `json:"row_count"` // Number of rows returned
	Duration time.Duration            `json:"duration"`  // Query execution time
	Source   string                   `json:"source"`    // Handle name that executed the query
}

// HealthStatus represents the health of a handle's backend connection.
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Latency   time.Duration     `json:"latency"`
	Details   map[string]string `json:"details"`
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error"`
}

// HandleError represents errors specific to handle operations.
type HandleError struct {
	HandleName string
	Operation  string
	Message    string
	Cause      error
}

func (e *HandleError) Error() string {
	if e.Cause != nil {
		return e.HandleName + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.HandleName + "." + e.Operation + ": " + e.Message
}

func (e *HandleError) Unwrap() error {
	return e.Cause
}

// NewHandleError creates a new HandleError.
func NewHandleError(handleName, operation, message string, cause error) *HandleError {
	return &HandleError{
		HandleName: handleName,
		Operation:  operation,
		Message:    message,
		Cause:      cause,
	}
}
