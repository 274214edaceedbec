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
	"time"
)

// Sentinel errors for the uniform service contract. Callers classify with
// errors.Is; the wrapped message carries agent id, lead id, and sub-query.
var (
	// ErrNotFound means a well-formed query matched no record.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable means the tenant's backend could not be
	// reached or errored. The core never retries internally.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput means a malformed identifier was supplied by the
	// caller. Raised before any I/O is attempted.
	ErrInvalidInput = errors.New("invalid input")
)

// Service is the uniform per-tenant data-access contract. Each schema
// family has its own implementation variant; field-name differences between
// tenant schemas are normalized here and never leak to callers.
type Service interface {
	// GetAgent returns the tenant's agent metadata record.
	// Fails with ErrNotFound if the tenant has no such record.
	GetAgent(ctx context.Context, agentID string) (*AgentSummary, error)

	// GetBrainData assembles the consolidated per-lead view from the
	// tenant's backend. Fails with ErrInvalidInput on an empty lead id,
	// ErrNotFound if the lead is unknown to the tenant, and
	// ErrUpstreamUnavailable if any constituent query fails. No partial
	// aggregate is ever returned.
	GetBrainData(ctx context.Context, agentID, leadID string) (*BrainData, error)
}

// AgentSummary is the normalized agent metadata shape.
type AgentSummary struct {
	AgentID    string     `json:"agent_id"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// ChatMessage is one normalized message in a lead's conversation history.
type ChatMessage struct {
	ID      string    `json:"id"`
	LeadID  string    `json:"lead_id"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// ChatSession is one normalized conversation session. Engaged is the
// normalized form of per-tenant vocabulary like "respondeu" or "contacted".
type ChatSession struct {
	ID        string     `json:"id"`
	LeadID    string     `json:"lead_id"`
	Channel   string     `json:"channel"`
	Engaged   bool       `json:"engaged"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// MemorySnapshot is the agent's most recent memory state for a lead.
type MemorySnapshot struct {
	TakenAt time.Time              `json:"taken_at"`
	Data    map[string]interface{} `json:"data"`
}

// BrainData is the per-lead aggregate assembled by GetBrainData. It is
// built fresh on every request and never cached: lead conversation state
// changes too frequently for staleness to be acceptable. Message and
// session ordering is whatever the backend returned (chronological).
type BrainData struct {
	ChatMessages     []ChatMessage   `json:"chat_messages"`
	ChatSessions     []ChatSession   `json:"chat_sessions"`
	Reasoning        *string         `json:"reasoning,omitempty"`
	Sentiment        *string         `json:"sentiment,omitempty"`
	NegotiationState *string         `json:"negotiation_state,omitempty"`
	MemorySnapshot   *MemorySnapshot `json:"memory_snapshot,omitempty"`
}
