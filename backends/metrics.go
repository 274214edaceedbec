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

import "github.com/prometheus/client_golang/prometheus"

// Cache counters, exported at /metrics by the gateway. Process-wide on
// purpose: every Cache instance feeds the same series.
var (
	promCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agentdash_handle_cache_hits_total",
		Help: "Backend handle cache hits",
	})
	promCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agentdash_handle_cache_misses_total",
		Help: "Backend handle cache misses",
	})
	promCacheCreations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agentdash_handle_creations_total",
		Help: "Backend handles constructed and connected",
	})
	promCacheCreationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agentdash_handle_creation_failures_total",
		Help: "Backend handle constructions that failed",
	})
	promCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agentdash_handle_evictions_total",
		Help: "Backend handles evicted from the cache",
	})
)

func init() {
	prometheus.MustRegister(
		promCacheHits,
		promCacheMisses,
		promCacheCreations,
		promCacheCreationFailures,
		promCacheEvictions,
	)
}
