// Package store provides durable key-value storage for the session marker.
//
// Three backends share the same small contract (Get, Set, Delete):
//
//   - SQLite (Open): the default. A single kv table in a WAL-mode database.
//   - Redis (NewRedis): SET/GET/DEL under an optional key prefix.
//   - Memory (NewMemory): process-local, for tests and --backend=memory.
//
// The session package only ever reads and writes one key, "isLoggedIn", but
// the stores are generic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Schema migrations are tracked with PRAGMA user_version.
package store
