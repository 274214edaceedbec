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

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"agentdash/platform/backends/base"
)

// Client implements the base.Handle interface for PostgreSQL tenant backends.
type Client struct {
	config *base.Config
	db     *sql.DB
	logger *log.Logger
}

// NewClient creates a new PostgreSQL client handle.
func NewClient() *Client {
	return &Client{
		logger: log.New(os.Stdout, "[BACKEND_POSTGRES] ", log.LstdFlags),
	}
}

// Connect opens the connection pool for the tenant's database.
func (c *Client) Connect(ctx context.Context, config *base.Config) error {
	c.config = config

	dsn, err := injectCredential(config.EndpointURL, config.Credential)
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "invalid endpoint URL", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "failed to open connection", err)
	}

	// Pool defaults, overridable per tenant
	maxOpenConns := 25
	maxIdleConns := 5
	connMaxLifetime := 5 * time.Minute

	if val, ok := config.Options["max_open_conns"].(int); ok {
		maxOpenConns = val
	}
	if val, ok := config.Options["max_idle_conns"].(int); ok {
		maxIdleConns = val
	}
	if val, ok := config.Options["conn_max_lifetime"].(string); ok {
		if duration, err := time.ParseDuration(val); err == nil {
			connMaxLifetime = duration
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return base.NewHandleError(config.Name, "Connect", "failed to ping database", err)
	}

	c.db = db
	c.logger.Printf("Connected to PostgreSQL: %s (agent=%s, max_conns=%d)", config.Name, config.AgentID, maxOpenConns)

	return nil
}

// injectCredential places the context-scoped credential into the DSN as the
// password, so tenant registry entries never need to embed secrets in URLs.
func injectCredential(endpointURL, credential string) (string, error) {
	if credential == "" {
		return endpointURL, nil
	}

	u, err := url.Parse(endpointURL)
	if err != nil {
		return "", err
	}

	username := "postgres"
	if u.User != nil {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, credential)

	return u.String(), nil
}

// Disconnect closes the connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.db == nil {
		return nil
	}

	if err := c.db.Close(); err != nil {
		return base.NewHandleError(c.config.Name, "Disconnect", "failed to close connection", err)
	}

	c.logger.Printf("Disconnected from PostgreSQL: %s", c.config.Name)
	return nil
}

// HealthCheck verifies the database connection is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if c.db == nil {
		return &base.HealthStatus{
			Healthy: false,
			Error:   "database not connected",
		}, nil
	}

	start := time.Now()
	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	stats := c.db.Stats()
	details := map[string]string{
		"open_connections": fmt.Sprintf("%d", stats.OpenConnections),
		"in_use":           fmt.Sprintf("%d", stats.InUse),
		"idle":             fmt.Sprintf("%d", stats.Idle),
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Details:   details,
		Timestamp: time.Now(),
	}, nil
}

// QueryRows compiles the row query to SQL and executes it.
func (c *Client) QueryRows(ctx context.Context, query *base.RowQuery) (*base.RowSet, error) {
	if c.db == nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "database not connected", nil)
	}

	timeout := query.Timeout
	if timeout == 0 && c.config != nil {
		timeout = c.config.Timeout
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stmt, args := CompileSelect(query)

	start := time.Now()
	rows, err := c.db.QueryContext(queryCtx, stmt, args...)
	if err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "query execution failed", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			c.logger.Printf("Warning: failed to close rows: %v", cerr)
		}
	}()

	results, err := rowsToMaps(rows)
	if err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "failed to scan rows", err)
	}

	duration := time.Since(start)
	c.logger.Printf("Query executed (%s): %d rows in %v", query.Entity, len(results), duration)

	return &base.RowSet{
		Rows:     results,
		RowCount: len(results),
		Duration: duration,
		Source:   c.handleName(),
	}, nil
}

// CompileSelect builds a parameterized SELECT for a row query. Entity and
// field names come from the closed set of service variants, but they are
// still quoted as identifiers rather than interpolated raw.
func CompileSelect(query *base.RowQuery) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pq.QuoteIdentifier(query.Entity))

	args := make([]interface{}, 0, len(query.Filter))
	if len(query.Filter) > 0 {
		// Deterministic placeholder order
		keys := make([]string, 0, len(query.Filter))
		for k := range query.Filter {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" WHERE ")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(pq.QuoteIdentifier(k))
			sb.WriteString(fmt.Sprintf(" = $%d", i+1))
			args = append(args, query.Filter[k])
		}
	}

	if query.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(pq.QuoteIdentifier(query.OrderBy))
		if query.Descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if query.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", query.Limit))
	}

	return sb.String(), args
}

// rowsToMaps converts sql.Rows into key-value maps, preserving row order.
func rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// Name returns the unique handle instance name.
func (c *Client) Name() string {
	return c.handleName()
}

func (c *Client) handleName() string {
	if c.config != nil {
		return c.config.Name
	}
	return "postgres"
}

// Kind returns the backend kind.
func (c *Client) Kind() string {
	return base.KindPostgres
}
