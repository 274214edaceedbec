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

package backends

import (
	"fmt"

	"agentdash/platform/backends/base"
	"agentdash/platform/backends/cassandra"
	"agentdash/platform/backends/mongodb"
	"agentdash/platform/backends/mysql"
	"agentdash/platform/backends/postgres"
	"agentdash/platform/backends/redis"
)

// HandleFactory creates an unconnected handle instance for a backend kind.
type HandleFactory func(kind string) (base.Handle, error)

// NewHandle is the default factory: one exhaustive switch over the closed
// set of backend kinds. Adding a backend kind means adding one case here.
func NewHandle(kind string) (base.Handle, error) {
	switch kind {
	case base.KindPostgres:
		return postgres.NewClient(), nil
	case base.KindMySQL:
		return mysql.NewClient(), nil
	case base.KindMongoDB:
		return mongodb.NewClient(), nil
	case base.KindRedis:
		return redis.NewClient(), nil
	case base.KindCassandra:
		return cassandra.NewClient(), nil
	default:
		return nil, fmt.Errorf("unsupported backend kind: %s", kind)
	}
}
