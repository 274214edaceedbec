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
Package backends owns the lifecycle of tenant backend connections.

It provides two things: the closed handle factory (one constructor case per
backend kind) and the Cache, the process-wide keyed cache of live handles.
The cache guarantees at most one live handle per (agent id, execution
context) pair; all mutation goes through GetOrCreate, Remove, and
DisconnectAll, which together form the sole mutation boundary of the
process.

The execution context split is a security property, not an optimization:
server-context handles carry the tenant's long-lived service credential,
browser-context handles only ever carry the short-lived anon credential.
*/
package backends
