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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doLogin(app *App, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesToken(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	rec := doLogin(app, "demo@agentdash.io", "demo1234")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK || resp.Token == "" {
		t.Errorf("expected token, got %+v", resp)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	rec := doLogin(app, "demo@agentdash.io", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDataRoutesRequireToken(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	rec := doRequest(app, "GET", "/api/agents/agent-luis", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(app, "GET", "/api/agents/agent-luis", map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with forged token, got %d", rec.Code)
	}
}

func TestIssuedTokenGrantsAccess(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	loginRec := doLogin(app, "demo@agentdash.io", "demo1234")
	var resp LoginResponse
	if err := json.Unmarshal(loginRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	rec := doRequest(app, "GET", "/api/agents/agent-luis", map[string]string{
		"Authorization": "Bearer " + resp.Token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with issued token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNoSecretRunsOpen(t *testing.T) {
	app, _ := testApp(t, nil)

	rec := doRequest(app, "GET", "/api/agents/agent-luis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open access without configured secret, got %d", rec.Code)
	}
}

func TestLoginRouteBypassesAuthMiddleware(t *testing.T) {
	app, _ := testApp(t, []byte("test-secret"))

	// Login itself must be reachable without a token
	rec := doLogin(app, "demo@agentdash.io", "demo1234")
	if rec.Code == http.StatusUnauthorized {
		t.Fatal("login route must not require a session token")
	}
}
