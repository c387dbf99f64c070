// Package cache provides the response cache used by the HTTP pipeline.
//
// A Store holds opaque response bodies under keys of the form
// "<METHOD>:<request URI>" (see KeyFor). Entries expire after their TTL or
// when a write to the same resource family removes them with
// DeleteMatching. Two implementations exist:
//
//   - RedisStore, backed by github.com/redis/go-redis/v9. This is the
//     production store; state is shared by every API instance.
//   - MemoryStore, a process-local store with lazy expiry, used in tests
//     and local development.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Get reports a missing or expired key as a miss, never as an error.
//     Errors are reserved for backend failures.
//   - DeleteMatching removes every matching key as one atomic step, so no
//     reader sees a partially invalidated family.
package cache
