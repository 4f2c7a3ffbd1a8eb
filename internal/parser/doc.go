// Package parser contains the source-specific extraction routines.
//
// Each source implements the Parser interface: given a fetch window it
// returns the announcements it could extract. Parsers tolerate partially
// malformed markup by skipping the broken entry and continuing; only a
// source that cannot be reached at all surfaces an error, which the
// orchestrator records as a failed source without aborting the pass.
package parser
