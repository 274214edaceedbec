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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Demo login: a deliberately simple state container with a hardcoded demo
// credential check. Real identity lives outside this service.

// LoginRequest is the demo login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token on success.
type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// loginHandler serves POST /api/auth/login.
func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLoginResponse(w, http.StatusBadRequest, &LoginResponse{OK: false, Error: "invalid request body"})
		return
	}

	if req.Email != a.demoEmail || req.Password != a.demoPassword {
		a.log.Warn("", "", "Demo login rejected", map[string]interface{}{"email": req.Email})
		writeLoginResponse(w, http.StatusUnauthorized, &LoginResponse{OK: false, Error: "invalid credentials"})
		return
	}

	claims := jwt.MapClaims{
		"sub": req.Email,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		a.log.Error("", "", "Failed to sign session token", map[string]interface{}{"error": err.Error()})
		writeLoginResponse(w, http.StatusInternalServerError, &LoginResponse{OK: false, Error: "failed to issue token"})
		return
	}

	writeLoginResponse(w, http.StatusOK, &LoginResponse{OK: true, Token: signed})
}

func writeLoginResponse(w http.ResponseWriter, status int, resp *LoginResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// authMiddleware requires a valid bearer token on data routes. With no JWT
// secret configured the service runs open, which is the local-development
// posture.
func (a *App) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.jwtSecret) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, `{"ok":false,"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"ok":false,"error":"invalid session token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
