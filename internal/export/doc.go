// Package export writes stored listings to tabular files.
//
// The output format follows the file extension: .xlsx produces a
// spreadsheet, everything else a CSV. Multi-valued columns are joined
// with "; " so a row stays one line.
package export
