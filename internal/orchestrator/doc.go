// Package orchestrator runs one full pass across all registered source
// parsers and writes the results to the store.
//
// Sources run concurrently and independently; the store's uniqueness
// constraint is the only shared serialization point. A failing source is
// isolated and reported in the pass summary, while a storage failure aborts
// the pass, since nothing further can be persisted.
package orchestrator
