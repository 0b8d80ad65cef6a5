// Package cdc provides the public types for decoding Change Data Capture (CDC) records.
//
// Upstream change-stream readers deliver rows whose column values are text. The types here
// describe those rows together with the declared column types needed to turn them back into
// native Go values.
//
// Key Components:
//   - Column: declared name and database type of one field
//   - Record: a row of raw (string or nil) column values keyed by column name
//   - ChangeEvent: a single insert, update or delete on a table
//   - ChangePublisher: interface for publishing batches of change events
//   - ColumnSource: interface for looking up the declared columns of a table
package cdc
