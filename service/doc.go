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

/*
Package service exposes the uniform per-tenant data-access contract and the
factory that selects the right implementation variant for an agent id.

Every tenant's backend schema differs in table shapes and vocabulary, so a
Service is a polymorphic capability rather than a generic client: the
factory picks one of a closed set of schema-family variants (crm,
collections) and wires the tenant's cached backend handle into it. All
field-name normalization happens at this boundary — callers only ever see
the common AgentSummary and BrainData shapes.

The brain-data aggregator is the heaviest per-request orchestration in the
system: four independent reads fanned out concurrently, merged into one
aggregate, failed as a whole on the first error, and never cached.
*/
package service
