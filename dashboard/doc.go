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

// Package dashboard implements the HTTP surface of the AgentDash service.
//
// It exposes agent summaries, per-lead brain data, and per-agent backend
// health behind a JSON envelope, maps service errors to HTTP status codes,
// and guards the data routes with a demo JWT login. The App struct holds
// the tenant registry, handle cache, and service factory so the whole
// stack can be exercised in-process by tests.
package dashboard
