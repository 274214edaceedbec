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

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"agentdash/platform/backends/base"
)

// Client implements the base.Handle interface for Redis tenant backends.
//
// Data layout: each entity is a Redis list of JSON documents, keyed
// "<storage_key>:<entity>[:<filter values>]". Lists preserve insertion
// order, which is how chronological ordering passes through unchanged.
type Client struct {
	config *base.Config
	client *redis.Client
	logger *log.Logger
}

// NewClient creates a new Redis client handle.
func NewClient() *Client {
	return &Client{
		logger: log.New(os.Stdout, "[BACKEND_REDIS] ", log.LstdFlags),
	}
}

// Connect establishes a connection to Redis.
func (c *Client) Connect(ctx context.Context, config *base.Config) error {
	c.config = config

	addr := config.EndpointURL
	addr = strings.TrimPrefix(addr, "redis://")

	db := 0
	if val, ok := config.Options["db"].(int); ok {
		db = val
	} else if val, ok := config.Options["db"].(float64); ok {
		db = int(val)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Credential,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return base.NewHandleError(config.Name, "Connect", "failed to ping Redis", err)
	}

	c.client = client
	c.logger.Printf("Connected to Redis: %s (agent=%s, db=%d)", config.Name, config.AgentID, db)

	return nil
}

// Disconnect closes the client connection.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Close(); err != nil {
		return base.NewHandleError(c.config.Name, "Disconnect", "failed to close connection", err)
	}

	c.logger.Printf("Disconnected from Redis: %s", c.config.Name)
	return nil
}

// HealthCheck pings Redis to verify the connection is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if c.client == nil {
		return &base.HealthStatus{
			Healthy: false,
			Error:   "client not connected",
		}, nil
	}

	start := time.Now()
	err := c.client.Ping(ctx).Err()
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
		Timestamp: time.Now(),
	}, nil
}

// QueryRows reads and decodes the entity's list, preserving insertion order.
func (c *Client) QueryRows(ctx context.Context, query *base.RowQuery) (*base.RowSet, error) {
	if c.client == nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "client not connected", nil)
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

	key := c.entityKey(query)

	start := time.Now()
	items, err := c.client.LRange(queryCtx, key, 0, -1).Result()
	if err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "list read failed", err)
	}

	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(item), &doc); err != nil {
			return nil, base.NewHandleError(c.handleName(), "QueryRows", "failed to decode document", err)
		}
		if matchesFilter(doc, query.Filter) {
			rows = append(rows, doc)
		}
	}

	if query.Descending {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	if query.Limit > 0 && len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}

	duration := time.Since(start)
	c.logger.Printf("Query executed (%s): %d results in %v", key, len(rows), duration)

	return &base.RowSet{
		Rows:     rows,
		RowCount: len(rows),
		Duration: duration,
		Source:   c.handleName(),
	}, nil
}

// entityKey derives the list key for an entity. The storage key prefix keeps
// concurrent tenants from colliding in a shared Redis instance.
func (c *Client) entityKey(query *base.RowQuery) string {
	parts := []string{query.Entity}
	if c.config != nil && c.config.StorageKey != "" {
		parts = []string{c.config.StorageKey, query.Entity}
	}
	return strings.Join(parts, ":")
}

// matchesFilter applies equality filters client-side after decoding.
func matchesFilter(doc map[string]interface{}, filter map[string]interface{}) bool {
	if len(filter) == 0 {
		return true
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(filter[k]) {
			return false
		}
	}
	return true
}

// Name returns the unique handle instance name.
func (c *Client) Name() string {
	return c.handleName()
}

func (c *Client) handleName() string {
	if c.config != nil {
		return c.config.Name
	}
	return "redis"
}

// Kind returns the backend kind.
func (c *Client) Kind() string {
	return base.KindRedis
}
