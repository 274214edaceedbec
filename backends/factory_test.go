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
	"testing"

	"agentdash/platform/backends/base"
)

func TestNewHandleCoversAllKinds(t *testing.T) {
	for _, kind := range base.ValidKinds {
		t.Run(kind, func(t *testing.T) {
			handle, err := NewHandle(kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if handle == nil {
				t.Fatal("expected non-nil handle")
			}
			if handle.Kind() != kind {
				t.Errorf("expected kind %s, got %s", kind, handle.Kind())
			}
		})
	}
}

func TestNewHandleRejectsUnknownKind(t *testing.T) {
	for _, kind := range []string{"sqlite", "dynamodb", ""} {
		if _, err := NewHandle(kind); err == nil {
			t.Errorf("expected error for kind %q", kind)
		}
	}
}
