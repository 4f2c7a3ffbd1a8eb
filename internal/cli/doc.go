// Package cli defines the confwatch command.
//
// One root command, two modes: --backfill-days N runs a single deep pass
// and exits; without it the process runs passes on a fixed cadence until
// interrupted. Flags override the config file, which overrides the
// environment defaults.
package cli
