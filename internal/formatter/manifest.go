package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
)

// ExportManifest is the JSON summary of one export batch.
type ExportManifest struct {
	BatchID     string            `json:"batch_id"`
	Destination string            `json:"destination"`
	Path        string            `json:"path"`
	Requested   int               `json:"requested"`
	Files       []ManifestFile    `json:"files"`
	Skipped     []string          `json:"skipped,omitempty"`
	Failed      []ManifestFailure `json:"failed,omitempty"`
	Covers      int               `json:"covers_embedded"`
	Bytes       int64             `json:"bytes"`
	Size        string            `json:"size"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
}

type ManifestFile struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Bytes  int64  `json:"bytes"`
	Cover  string `json:"cover,omitempty"`
}

type ManifestFailure struct {
	Source string `json:"source"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error"`
}

// ToManifest converts an export result into its manifest form.
func ToManifest(result *tasks.ExportResult) ExportManifest {
	m := ExportManifest{
		BatchID:     result.BatchID,
		Destination: result.Destination.String(),
		Path:        result.Path,
		Requested:   result.Requested,
		Files:       make([]ManifestFile, 0, len(result.Files)),
		Covers:      result.Covers,
		Bytes:       result.Bytes,
		Size:        humanize.Bytes(uint64(result.Bytes)),
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}

	for _, f := range result.Files {
		mf := ManifestFile{Source: f.Source, Target: f.Target, Bytes: f.Bytes}
		if f.Cover == artwork.Embedded {
			mf.Cover = f.Cover.String()
		}
		m.Files = append(m.Files, mf)
	}
	for _, f := range result.Skipped {
		m.Skipped = append(m.Skipped, f.Source)
	}
	for _, f := range result.Failed {
		msg := ""
		if f.Error != nil {
			msg = f.Error.Error()
		}
		m.Failed = append(m.Failed, ManifestFailure{Source: f.Source, Target: f.Target, Error: msg})
	}

	return m
}

// WriteExportManifest writes the manifest for result to path as indented JSON.
//
// Defaults to export_manifest_{batch id}.json in the working directory.
func WriteExportManifest(result *tasks.ExportResult, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("export_manifest_%s.json", result.BatchID)
	}

	data, err := shared.MarshalJSON(ToManifest(result), true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return path, nil
}
