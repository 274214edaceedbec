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
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// GetBrainData assembles the consolidated view of one lead's conversational
// history and derived state. The four constituent reads are logically
// independent, so they fan out concurrently; the first failure cancels the
// remaining reads and fails the whole call. A partial aggregate silently
// missing a section would be indistinguishable from "no data" to the UI, so
// it is never returned.
func (s *tenantService) GetBrainData(ctx context.Context, agentID, leadID string) (*BrainData, error) {
	if leadID == "" {
		return nil, fmt.Errorf("%w: empty lead id for agent '%s'", ErrInvalidInput, agentID)
	}

	start := time.Now()

	// Lead existence is checked up front: "unknown lead" must be a NotFound,
	// distinct from a lead with no history yet.
	leadRows, err := s.handle.QueryRows(ctx, s.variant.leadQuery(leadID))
	if err != nil {
		return nil, s.classifyQueryError("lead lookup", agentID, leadID, err)
	}
	if leadRows.RowCount == 0 {
		return nil, fmt.Errorf("%w: lead '%s' is unknown to agent '%s'", ErrNotFound, leadID, agentID)
	}

	out := &BrainData{
		ChatMessages: []ChatMessage{},
		ChatSessions: []ChatSession{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rs, err := s.handle.QueryRows(gctx, s.variant.messagesQuery(leadID))
		if err != nil {
			return s.classifyQueryError("chat messages", agentID, leadID, err)
		}
		messages := make([]ChatMessage, 0, rs.RowCount)
		for _, row := range rs.Rows {
			messages = append(messages, s.variant.mapMessage(row))
		}
		out.ChatMessages = messages
		return nil
	})

	g.Go(func() error {
		rs, err := s.handle.QueryRows(gctx, s.variant.sessionsQuery(leadID))
		if err != nil {
			return s.classifyQueryError("chat sessions", agentID, leadID, err)
		}
		sessions := make([]ChatSession, 0, rs.RowCount)
		for _, row := range rs.Rows {
			sessions = append(sessions, s.variant.mapSession(row))
		}
		out.ChatSessions = sessions
		return nil
	})

	g.Go(func() error {
		rs, err := s.handle.QueryRows(gctx, s.variant.notesQuery(leadID))
		if err != nil {
			return s.classifyQueryError("reasoning notes", agentID, leadID, err)
		}
		// No notes yet is a valid state, not an error
		if rs.RowCount > 0 {
			s.variant.applyNotes(rs.Rows[0], out)
		}
		return nil
	})

	g.Go(func() error {
		rs, err := s.handle.QueryRows(gctx, s.variant.memoryQuery(leadID))
		if err != nil {
			return s.classifyQueryError("memory snapshot", agentID, leadID, err)
		}
		if rs.RowCount > 0 {
			out.MemorySnapshot = s.variant.mapMemory(rs.Rows[0])
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.InfoWithDuration(agentID, "", "Assembled brain data",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"lead_id":  leadID,
			"messages": len(out.ChatMessages),
			"sessions": len(out.ChatSessions),
		})

	return out, nil
}
