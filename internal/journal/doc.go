// Package journal provides SQLite-backed durable storage for coordinator
// events.
//
// The journal is an append-only log with:
//   - Sessions: one row per map lifetime, keyed by session id
//   - Events: coordinator bookkeeping steps (transitions, queued and replayed
//     camera commands, overlay attachments, faults)
//
// # Ordering
//
// Events are ordered by their coordinator sequence number, never by wall
// time. Every query includes ORDER BY seq ASC so a trace reads back in the
// order it was produced.
//
// # Idempotency
//
// (session, seq) is unique. Writing the same event twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
