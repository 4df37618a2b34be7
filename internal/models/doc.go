// Package models defines the transport types passed between the query engine,
// its callers and the export pipeline.
//
//   - [Song] : one selected track, normalized from a library row
//   - [QueryOptions] : conjunctive filter and ranking options for a selection
//   - [Order] : ordering mode (added, last played, random)
//   - [ExportRequest] : songs plus destination and per-file behavior flags
//   - [Destination] : folder, archive or sync mirror
//   - [Identity] : optional owner/group applied to exported paths
//
// None of these are persisted; they are built fresh per call.
package models
