// Package scheduler decides when passes run.
//
// Backfill mode runs exactly one pass for an explicit day window and
// returns. Perpetual mode runs one pass immediately and then repeats on a
// fixed cadence until the context is cancelled. A failed pass never stops
// the loop; the next pass fires on the original cadence.
package scheduler
