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

package cassandra

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"agentdash/platform/backends/base"
)

// Client implements the base.Handle interface for Cassandra/Scylla tenant backends.
type Client struct {
	config  *base.Config
	cluster *gocql.ClusterConfig
	session *gocql.Session
	logger  *log.Logger
}

// NewClient creates a new Cassandra client handle.
func NewClient() *Client {
	return &Client{
		logger: log.New(os.Stdout, "[BACKEND_CASSANDRA] ", log.LstdFlags),
	}
}

// Connect establishes a session to the tenant's Cassandra cluster.
func (c *Client) Connect(ctx context.Context, config *base.Config) error {
	c.config = config

	hosts := strings.Split(config.EndpointURL, ",")
	for i := range hosts {
		hosts[i] = strings.TrimSpace(hosts[i])
	}

	cluster := gocql.NewCluster(hosts...)
	if config.Database == "" {
		return base.NewHandleError(config.Name, "Connect", "keyspace is required", nil)
	}
	cluster.Keyspace = config.Database
	cluster.Consistency = gocql.Quorum

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	cluster.Timeout = timeout
	cluster.ConnectTimeout = timeout

	// Context-scoped credential; username rides in options
	if config.Credential != "" {
		username := "cassandra"
		if u, ok := config.Options["username"].(string); ok {
			username = u
		}
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: username,
			Password: config.Credential,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "failed to create session", err)
	}

	c.cluster = cluster
	c.session = session
	c.logger.Printf("Connected to Cassandra: %s (agent=%s, keyspace=%s, hosts=%d)",
		config.Name, config.AgentID, config.Database, len(hosts))

	return nil
}

// Disconnect closes the session.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.session == nil {
		return nil
	}

	c.session.Close()
	c.logger.Printf("Disconnected from Cassandra: %s", c.config.Name)
	return nil
}

// HealthCheck runs a lightweight system query to verify the session is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if c.session == nil {
		return &base.HealthStatus{
			Healthy: false,
			Error:   "session not connected",
		}, nil
	}

	start := time.Now()
	err := c.session.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec()
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Details:   map[string]string{"keyspace": c.cluster.Keyspace},
		Timestamp: time.Now(),
	}, nil
}

// QueryRows compiles the row query to CQL and executes it.
func (c *Client) QueryRows(ctx context.Context, query *base.RowQuery) (*base.RowSet, error) {
	if c.session == nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "session not connected", nil)
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
	iter := c.session.Query(stmt, args...).WithContext(queryCtx).Iter()

	results := make([]map[string]interface{}, 0)
	row := map[string]interface{}{}
	for iter.MapScan(row) {
		results = append(results, row)
		row = map[string]interface{}{}
	}

	if err := iter.Close(); err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "query execution failed", err)
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

// CompileSelect builds a parameterized CQL SELECT. Filtering on non-key
// columns needs ALLOW FILTERING for the analytics tables involved here.
func CompileSelect(query *base.RowQuery) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(query.Entity)

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
			sb.WriteString(k)
			sb.WriteString(" = ?")
			args = append(args, query.Filter[k])
		}
	}

	if query.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(query.OrderBy)
		if query.Descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if query.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", query.Limit))
	}

	if len(query.Filter) > 0 {
		sb.WriteString(" ALLOW FILTERING")
	}

	return sb.String(), args
}

// Name returns the unique handle instance name.
func (c *Client) Name() string {
	return c.handleName()
}

func (c *Client) handleName() string {
	if c.config != nil {
		return c.config.Name
	}
	return "cassandra"
}

// Kind returns the backend kind.
func (c *Client) Kind() string {
	return base.KindCassandra
}
