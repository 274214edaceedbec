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
	"agentdash/platform/backends/base"
	"agentdash/platform/tenant"
)

// collectionsVariant maps the English debtor-collections schema family onto
// the uniform contract. Tenants in this family track debtors rather than
// leads, but the identifiers flow through the same lead_id position.
type collectionsVariant struct{}

func (collectionsVariant) family() string {
	return tenant.FamilyCollections
}

func (collectionsVariant) agentQuery(agentID string) *base.RowQuery {
	return &base.RowQuery{
		Entity: "agents",
		Filter: map[string]interface{}{"agent_id": agentID},
		Limit:  1,
	}
}

func (collectionsVariant) leadQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity: "debtors",
		Filter: map[string]interface{}{"id": leadID},
		Limit:  1,
	}
}

func (collectionsVariant) messagesQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:  "chat_messages",
		Filter:  map[string]interface{}{"debtor_id": leadID},
		OrderBy: "sent_at",
	}
}

func (collectionsVariant) sessionsQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:  "chat_sessions",
		Filter:  map[string]interface{}{"debtor_id": leadID},
		OrderBy: "started_at",
	}
}

func (collectionsVariant) notesQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:     "agent_notes",
		Filter:     map[string]interface{}{"debtor_id": leadID},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      1,
	}
}

func (collectionsVariant) memoryQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:     "memory_snapshots",
		Filter:     map[string]interface{}{"debtor_id": leadID},
		OrderBy:    "taken_at",
		Descending: true,
		Limit:      1,
	}
}

func (collectionsVariant) mapAgent(agentID string, row map[string]interface{}) *AgentSummary {
	return &AgentSummary{
		AgentID:    agentID,
		Name:       rowString(row, "name"),
		Role:       rowString(row, "role"),
		Status:     rowString(row, "status"),
		LastActive: rowTimePtr(row, "last_active_at"),
	}
}

func (collectionsVariant) mapMessage(row map[string]interface{}) ChatMessage {
	return ChatMessage{
		ID:      rowString(row, "id"),
		LeadID:  rowString(row, "debtor_id"),
		Sender:  rowString(row, "sender"),
		Content: rowString(row, "body"),
		SentAt:  rowTime(row, "sent_at"),
	}
}

func (collectionsVariant) mapSession(row map[string]interface{}) ChatSession {
	return ChatSession{
		ID:        rowString(row, "id"),
		LeadID:    rowString(row, "debtor_id"),
		Channel:   rowString(row, "channel"),
		Engaged:   rowBool(row, "contacted"), // normalized to Engaged at this boundary
		StartedAt: rowTime(row, "started_at"),
		EndedAt:   rowTimePtr(row, "ended_at"),
	}
}

func (collectionsVariant) applyNotes(row map[string]interface{}, out *BrainData) {
	out.Reasoning = rowStringPtr(row, "reasoning")
	out.Sentiment = rowStringPtr(row, "sentiment")
	out.NegotiationState = rowStringPtr(row, "negotiation_state")
}

func (collectionsVariant) mapMemory(row map[string]interface{}) *MemorySnapshot {
	return &MemorySnapshot{
		TakenAt: rowTime(row, "taken_at"),
		Data:    rowMap(row, "data"),
	}
}
