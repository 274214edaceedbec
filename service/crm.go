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

// crmVariant maps the Portuguese-vocabulary CRM schema family onto the
// uniform contract. Tenants in this family keep agents in "agentes", lead
// conversations in "mensagens"/"sessoes", derived notes in "raciocinios",
// and memory state in "memorias".
type crmVariant struct{}

func (crmVariant) family() string {
	return tenant.FamilyCRM
}

func (crmVariant) agentQuery(agentID string) *base.RowQuery {
	return &base.RowQuery{
		Entity: "agentes",
		Filter: map[string]interface{}{"agente_id": agentID},
		Limit:  1,
	}
}

func (crmVariant) leadQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity: "leads",
		Filter: map[string]interface{}{"id": leadID},
		Limit:  1,
	}
}

func (crmVariant) messagesQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:  "mensagens",
		Filter:  map[string]interface{}{"lead_id": leadID},
		OrderBy: "enviada_em",
	}
}

func (crmVariant) sessionsQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:  "sessoes",
		Filter:  map[string]interface{}{"lead_id": leadID},
		OrderBy: "iniciada_em",
	}
}

func (crmVariant) notesQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:     "raciocinios",
		Filter:     map[string]interface{}{"lead_id": leadID},
		OrderBy:    "criado_em",
		Descending: true,
		Limit:      1,
	}
}

func (crmVariant) memoryQuery(leadID string) *base.RowQuery {
	return &base.RowQuery{
		Entity:     "memorias",
		Filter:     map[string]interface{}{"lead_id": leadID},
		OrderBy:    "capturada_em",
		Descending: true,
		Limit:      1,
	}
}

func (crmVariant) mapAgent(agentID string, row map[string]interface{}) *AgentSummary {
	return &AgentSummary{
		AgentID:    agentID,
		Name:       rowString(row, "nome"),
		Role:       rowString(row, "funcao"),
		Status:     rowString(row, "situacao"),
		LastActive: rowTimePtr(row, "ultima_atividade"),
	}
}

func (crmVariant) mapMessage(row map[string]interface{}) ChatMessage {
	return ChatMessage{
		ID:      rowString(row, "id"),
		LeadID:  rowString(row, "lead_id"),
		Sender:  rowString(row, "remetente"),
		Content: rowString(row, "conteudo"),
		SentAt:  rowTime(row, "enviada_em"),
	}
}

func (crmVariant) mapSession(row map[string]interface{}) ChatSession {
	return ChatSession{
		ID:        rowString(row, "id"),
		LeadID:    rowString(row, "lead_id"),
		Channel:   rowString(row, "canal"),
		Engaged:   rowBool(row, "respondeu"), // normalized to Engaged at this boundary
		StartedAt: rowTime(row, "iniciada_em"),
		EndedAt:   rowTimePtr(row, "encerrada_em"),
	}
}

func (crmVariant) applyNotes(row map[string]interface{}, out *BrainData) {
	out.Reasoning = rowStringPtr(row, "raciocinio")
	out.Sentiment = rowStringPtr(row, "sentimento")
	out.NegotiationState = rowStringPtr(row, "negociacao")
}

func (crmVariant) mapMemory(row map[string]interface{}) *MemorySnapshot {
	return &MemorySnapshot{
		TakenAt: rowTime(row, "capturada_em"),
		Data:    rowMap(row, "dados"),
	}
}
