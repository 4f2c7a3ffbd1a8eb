// Package storage persists parsed conference items to a SQL store.
//
// The store is append-only and idempotent: every item carries a content hash
// with a unique index, and inserts use ON CONFLICT DO NOTHING so that
// re-encountering an already stored announcement is a silent no-op. The
// uniqueness constraint is the sole deduplication mechanism, which keeps
// dedup correct across process restarts and concurrent writers.
package storage
