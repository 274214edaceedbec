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
Package base defines the Handle interface that every tenant backend client
implements, plus the shared query, result, and error types.

A Handle wraps one authenticated connection to one tenant's backend. The
core never assumes the wire protocol behind a Handle; it only relies on the
contract "open once, reuse many, identify yourself per-tenant". Concrete
implementations live in the sibling kind packages (postgres, mysql, mongodb,
redis, cassandra).

Queries are structured (entity + equality filters + ordering + limit) rather
than raw statements, so each kind compiles them to its native form. This is
what lets one schema-family service run unchanged against any backend kind.
*/
package base
