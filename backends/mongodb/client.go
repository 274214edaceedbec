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

package mongodb

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"agentdash/platform/backends/base"
)

const (
	// DefaultTimeout is the default operation timeout
	DefaultTimeout = 30 * time.Second
	// DefaultConnectTimeout is the default connection timeout
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxPoolSize is the default maximum connection pool size
	DefaultMaxPoolSize = 100
	// DefaultMinPoolSize is the default minimum connection pool size
	DefaultMinPoolSize = 10
)

// Client implements the base.Handle interface for MongoDB tenant backends.
type Client struct {
	config   *base.Config
	client   *mongo.Client
	database *mongo.Database
	logger   *log.Logger
	dbName   string
}

// NewClient creates a new MongoDB client handle.
func NewClient() *Client {
	return &Client{
		logger: log.New(os.Stdout, "[BACKEND_MONGODB] ", log.LstdFlags),
	}
}

// Connect establishes a connection to MongoDB with connection pooling.
func (c *Client) Connect(ctx context.Context, config *base.Config) error {
	c.config = config

	clientOpts := options.Client().ApplyURI(config.EndpointURL)

	// Pool settings
	maxPoolSize := uint64(DefaultMaxPoolSize)
	minPoolSize := uint64(DefaultMinPoolSize)
	if val, ok := config.Options["max_pool_size"].(float64); ok {
		maxPoolSize = uint64(val)
	}
	if val, ok := config.Options["min_pool_size"].(float64); ok {
		minPoolSize = uint64(val)
	}
	clientOpts.SetMaxPoolSize(maxPoolSize)
	clientOpts.SetMinPoolSize(minPoolSize)

	connectTimeout := DefaultConnectTimeout
	if val, ok := config.Options["connect_timeout"].(string); ok {
		if duration, err := time.ParseDuration(val); err == nil {
			connectTimeout = duration
		}
	}
	clientOpts.SetConnectTimeout(connectTimeout)

	// Context-scoped credential; the endpoint URL never carries the secret
	if config.Credential != "" {
		username := "dashboard"
		if u, ok := config.Options["username"].(string); ok {
			username = u
		}
		clientOpts.SetAuth(options.Credential{
			Username: username,
			Password: config.Credential,
		})
	}

	appName := "AgentDash-" + config.StorageKey
	clientOpts.SetAppName(appName)
	clientOpts.SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return base.NewHandleError(config.Name, "Connect", "failed to connect to MongoDB", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return base.NewHandleError(config.Name, "Connect", "failed to ping MongoDB", err)
	}

	c.client = client

	if config.Database == "" {
		_ = client.Disconnect(ctx)
		return base.NewHandleError(config.Name, "Connect", "database name is required", nil)
	}
	c.dbName = config.Database
	c.database = client.Database(c.dbName)

	c.logger.Printf("Connected to MongoDB: %s (agent=%s, database=%s, max_pool=%d)",
		config.Name, config.AgentID, c.dbName, maxPoolSize)

	return nil
}

// Disconnect closes the client connection.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Disconnect(ctx); err != nil {
		return base.NewHandleError(c.config.Name, "Disconnect", "failed to disconnect", err)
	}

	c.logger.Printf("Disconnected from MongoDB: %s", c.config.Name)
	return nil
}

// HealthCheck pings the primary to verify the connection is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if c.client == nil {
		return &base.HealthStatus{
			Healthy: false,
			Error:   "client not connected",
		}, nil
	}

	start := time.Now()
	err := c.client.Ping(ctx, readpref.Primary())
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
		Details:   map[string]string{"database": c.dbName},
		Timestamp: time.Now(),
	}, nil
}

// QueryRows compiles the row query to a find against the entity's collection.
func (c *Client) QueryRows(ctx context.Context, query *base.RowQuery) (*base.RowSet, error) {
	if c.client == nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "client not connected", nil)
	}

	timeout := query.Timeout
	if timeout == 0 && c.config != nil {
		timeout = c.config.Timeout
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	collection := c.database.Collection(query.Entity)

	filter := bson.M{}
	for k, v := range query.Filter {
		filter[k] = v
	}

	findOpts := options.Find()
	if query.OrderBy != "" {
		direction := 1
		if query.Descending {
			direction = -1
		}
		findOpts.SetSort(bson.D{{Key: query.OrderBy, Value: direction}})
	}
	if query.Limit > 0 {
		findOpts.SetLimit(int64(query.Limit))
	}

	start := time.Now()
	cursor, err := collection.Find(queryCtx, filter, findOpts)
	if err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "query execution failed", err)
	}
	defer func() {
		if cerr := cursor.Close(queryCtx); cerr != nil {
			c.logger.Printf("Warning: failed to close cursor: %v", cerr)
		}
	}()

	results := make([]map[string]interface{}, 0)
	for cursor.Next(queryCtx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, base.NewHandleError(c.handleName(), "QueryRows", "failed to decode document", err)
		}
		results = append(results, map[string]interface{}(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, base.NewHandleError(c.handleName(), "QueryRows", "cursor iteration failed", err)
	}

	duration := time.Since(start)
	c.logger.Printf("Query executed (%s.%s): %d results in %v", c.dbName, query.Entity, len(results), duration)

	return &base.RowSet{
		Rows:     results,
		RowCount: len(results),
		Duration: duration,
		Source:   c.handleName(),
	}, nil
}

// Name returns the unique handle instance name.
func (c *Client) Name() string {
	return c.handleName()
}

func (c *Client) handleName() string {
	if c.config != nil {
		return c.config.Name
	}
	return "mongodb"
}

// Kind returns the backend kind.
func (c *Client) Kind() string {
	return base.KindMongoDB
}
