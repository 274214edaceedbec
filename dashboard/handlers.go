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

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"agentdash/platform/backends"
	"agentdash/platform/backends/base"
	"agentdash/platform/service"
	"agentdash/platform/tenant"
)

// defaultBrainTimeout bounds the brain-data fan-out when the caller does not
// specify one.
const defaultBrainTimeout = 10 * time.Second

// Envelope is the uniform JSON response shape. The identifier that failed is
// echoed back for diagnosability.
type Envelope struct {
	OK        bool                   `json:"ok"`
	Agent     *service.AgentSummary  `json:"agent,omitempty"`
	BrainData *service.BrainData     `json:"brainData,omitempty"`
	Health    *base.HealthStatus     `json:"health,omitempty"`
	AgentID   string                 `json:"agentId,omitempty"`
	LeadID    string                 `json:"leadId,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// getAgentHandler serves GET /api/agents/{agentId}.
func (a *App) getAgentHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	agentID := mux.Vars(r)["agentId"]
	start := time.Now()

	if agentID == "" {
		a.writeError(w, "get_agent", requestID, agentID, "",
			fmt.Errorf("%w: empty agent id", service.ErrInvalidInput))
		return
	}

	svc, err := a.Factory.Build(r.Context(), agentID)
	if err != nil {
		a.writeError(w, "get_agent", requestID, agentID, "", err)
		return
	}

	agent, err := svc.GetAgent(r.Context(), agentID)
	if err != nil {
		a.writeError(w, "get_agent", requestID, agentID, "", err)
		return
	}

	a.log.InfoWithDuration(agentID, requestID, "Served agent summary",
		float64(time.Since(start).Milliseconds()), nil)

	a.writeJSON(w, "get_agent", http.StatusOK, &Envelope{
		OK:      true,
		Agent:   agent,
		AgentID: agentID,
	})
}

// getBrainDataHandler serves GET /api/agents/{agentId}/leads/{leadId}/brain.
// An optional ?timeout= duration bounds the whole fan-out; on expiry all
// outstanding sub-queries are aborted and a single timeout error is returned.
func (a *App) getBrainDataHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	vars := mux.Vars(r)
	agentID := vars["agentId"]
	leadID := vars["leadId"]
	start := time.Now()

	timeout := defaultBrainTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			a.writeError(w, "get_brain_data", requestID, agentID, leadID,
				fmt.Errorf("%w: invalid timeout %q", service.ErrInvalidInput, raw))
			return
		}
		timeout = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	svc, err := a.Factory.Build(ctx, agentID)
	if err != nil {
		a.writeError(w, "get_brain_data", requestID, agentID, leadID, err)
		return
	}

	brain, err := svc.GetBrainData(ctx, agentID, leadID)
	if err != nil {
		a.writeError(w, "get_brain_data", requestID, agentID, leadID, err)
		return
	}

	a.log.InfoWithDuration(agentID, requestID, "Served brain data",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"lead_id": leadID,
		})

	a.writeJSON(w, "get_brain_data", http.StatusOK, &Envelope{
		OK:        true,
		BrainData: brain,
		AgentID:   agentID,
		LeadID:    leadID,
	})
}

// agentHealthHandler serves GET /api/agents/{agentId}/health by running a
// health check against the tenant's server-context handle.
func (a *App) agentHealthHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	agentID := mux.Vars(r)["agentId"]

	handle, err := a.Cache.GetOrCreate(r.Context(), agentID, backends.ContextServer)
	if err != nil {
		a.writeError(w, "agent_health", requestID, agentID, "", err)
		return
	}

	status, err := handle.HealthCheck(r.Context())
	if err != nil {
		a.writeError(w, "agent_health", requestID, agentID, "",
			fmt.Errorf("%w: health check for agent '%s': %w", service.ErrUpstreamUnavailable, agentID, err))
		return
	}

	a.writeJSON(w, "agent_health", http.StatusOK, &Envelope{
		OK:      true,
		Health:  status,
		AgentID: agentID,
	})
}

// statusForError maps the error taxonomy onto HTTP status codes. Unknown
// tenants and missing records are the caller's 404s; configuration defects
// stay 500; an unreachable backend is a 502; an expired request deadline is
// a 504.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, tenant.ErrUnknownTenant):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, tenant.ErrMissingCredential):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// messageForError produces the client-facing message. Unknown tenants get
// the canonical "Unknown agentId" form; everything else reports the wrapped
// detail, which never contains credential material.
func messageForError(err error, agentID string) string {
	if errors.Is(err, tenant.ErrUnknownTenant) {
		return fmt.Sprintf("Unknown agentId: %s", agentID)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Request timed out for agentId: %s", agentID)
	}
	return err.Error()
}

func (a *App) writeError(w http.ResponseWriter, handler, requestID, agentID, leadID string, err error) {
	status := statusForError(err)

	a.log.ErrorWithCode(agentID, requestID, "Request failed", status, err, map[string]interface{}{
		"handler": handler,
		"lead_id": leadID,
	})

	a.writeJSON(w, handler, status, &Envelope{
		OK:      false,
		AgentID: agentID,
		LeadID:  leadID,
		Error:   messageForError(err, agentID),
	})
}

func (a *App) writeJSON(w http.ResponseWriter, handler string, status int, payload interface{}) {
	promRequestsTotal.WithLabelValues(handler, fmt.Sprintf("%d", status)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("", "", "Failed to encode response", map[string]interface{}{
			"handler": handler,
			"error":   err.Error(),
		})
	}
}
