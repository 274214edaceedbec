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

package service

import (
	"context"
	"errors"
	"fmt"

	"agentdash/platform/backends/base"
	"agentdash/platform/shared/logger"
)

// tenantService implements the uniform Service contract for one tenant by
// combining a borrowed backend handle with a schema-family variant. It is
// cheap to construct and not retained across requests; the expensive state
// lives in the handle, which the cache owns.
type tenantService struct {
	agentID string
	handle  base.Handle
	variant schemaVariant
	log     *logger.Logger
}

// GetAgent returns the tenant's agent metadata record.
func (s *tenantService) GetAgent(ctx context.Context, agentID string) (*AgentSummary, error) {
	if agentID == "" {
		return nil, fmt.Errorf("%w: empty agent id", ErrInvalidInput)
	}

	rs, err := s.handle.QueryRows(ctx, s.variant.agentQuery(agentID))
	if err != nil {
		return nil, s.classifyQueryError("agent metadata", agentID, "", err)
	}

	if rs.RowCount == 0 {
		return nil, fmt.Errorf("%w: no agent metadata record for '%s'", ErrNotFound, agentID)
	}

	return s.variant.mapAgent(agentID, rs.Rows[0]), nil
}

// classifyQueryError wraps a backend failure with enough context to diagnose
// without retrying blindly. Context cancellation and deadline errors pass
// through so the boundary can report a timeout rather than an upstream fault.
func (s *tenantService) classifyQueryError(subQuery, agentID, leadID string, err error) error {
	where := fmt.Sprintf("agent '%s'", agentID)
	if leadID != "" {
		where = fmt.Sprintf("agent '%s', lead '%s'", agentID, leadID)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s query for %s: %w", subQuery, where, err)
	}

	s.log.Error(agentID, "", "Backend query failed", map[string]interface{}{
		"sub_query": subQuery,
		"lead_id":   leadID,
		"error":     err.Error(),
	})

	return fmt.Errorf("%w: %s query for %s: %w", ErrUpstreamUnavailable, subQuery, where, err)
}
