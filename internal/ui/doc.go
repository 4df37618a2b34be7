// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a mixtape:
//  1. [SongListView] : Browse the selected songs and mark the ones to export
//  2. [DestinationView] : Pick folder, zip or sync mirror and toggle cover embedding and renaming
//  3. [ExportView] : Monitor progress updates from the export pipeline
//  4. [ResultView] : Display the batch summary with skipped and failed files
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ExportEngine; sends are non-blocking so a slow terminal never stalls an export.
//
// Keyboard navigation uses vim-style bindings (j/k, space, a, x, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
