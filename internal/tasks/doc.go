// Package tasks materializes song selections onto the filesystem with
// real-time progress reporting.
//
// # Destinations
//
// [ExportEngine.Export] writes one batch to one of three destinations:
//
//  1. [models.DestinationArchive] : a new zip at <root>/music_export_<timestamp>.zip
//  2. [models.DestinationFolder] : a new directory <root>/music_export_<timestamp>/
//  3. [models.DestinationSync] : the long-lived mirror directory, reused across batches
//
// Folder and mirror exports copy each file under its target name (see
// [naming.Builder]), optionally embed a sidecar cover and normalize ownership
// and mode bits when an identity is configured.
//
// # Failure semantics
//
// Songs whose source file is gone are skipped. A failed copy, embed or
// permission change is logged and recorded in the [ExportResult]; it never
// aborts the batch. Only failing to create the export root or the destination
// itself is returned as an error ([shared.ErrDestinationCreate]).
//
// Songs are processed sequentially. Concurrent batches into the mirror are not
// coordinated here; callers serialize them.
//
// # Progress Reporting
//
// Progress is sent as [ProgressUpdate] values on an optional channel. Sends
// use select with default so a slow reader never blocks the export.
package tasks
