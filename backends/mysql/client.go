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

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"agentdash/platform/backends/base"
)

// Client implements the base.Handle interface for MySQL tenant backends.
type Client struct {
	config *base.Config
	db     *sql.DB
	logger *log.Logger
}

// NewClient creates a new MySQL client handle.
func NewClient() *Client {
	return &Client{
		logger: log.New(os.Stdout, "[BACKEND_MYSQL] ", log.LstdFlags),
	}
}

// Connect opens the connection pool for the tenant's database.
func (c *Client) Connect(ctx context.Context, config *base.Config) error {
	c.config = config

	dsnCfg, err := mysql.ParseDSN(config.EndpointURL)
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "invalid DSN", err)
	}

	// The context-scoped credential is the password; registry entries never
	// embed it in the DSN.
	if config.Credential != "" {
		dsnCfg.Passwd = config.Credential
	}
	if config.Database != "" {
		dsnCfg.DBName = config.Database
	}
	dsnCfg.ParseTime = true

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "failed to open connection", err)
	}

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
	c.logger.Printf("Connected to MySQL: %s (agent=%s, max_conns=%d)", config.Name, config.AgentID, maxOpenConns)

	return nil
}

// Disconnect closes the connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.db == nil {
		return nil
	}

	if err := c.db.Close(); err != nil {
		return base.NewHandleError(c.config.Name, "Disconnect", "failed to close connection", err)
	}

	c.logger.Printf("Disconnected from MySQL: %s", c.config.Name)
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

// CompileSelect builds a parameterized SELECT with backtick-quoted identifiers.
func CompileSelect(query *base.RowQuery) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(quoteIdentifier(query.Entity))

	args := make([]interface{}, 0, len(query.Filter))
	if len(query.Filter) > 0 {
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
			sb.WriteString(quoteIdentifier(k))
			sb.WriteString(" = ?")
			args = append(args, query.Filter[k])
		}
	}

	if query.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(quoteIdentifier(query.OrderBy))
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

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
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
	return "mysql"
}

// Kind returns the backend kind.
func (c *Client) Kind() string {
	return base.KindMySQL
}
