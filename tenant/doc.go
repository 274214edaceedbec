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
Package tenant holds the static registry that maps an opaque agent id to one
tenant's backend connection configuration.

The registry is populated once at process start, from environment variables
(TENANT_<ID>_* scheme), from an optional tenants.yaml file, or both — env
entries win. Credential values may be literal or secret-store references
("secretsmanager:<arn>#<key>") resolved at load time. After construction the
registry is immutable and lock-free.

Resolution failures are classified with two sentinel errors: ErrUnknownTenant
(no entry for the id; a client error) and ErrMissingCredential (entry exists
but is incomplete; a deployment defect).
*/
package tenant
