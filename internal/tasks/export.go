package tasks

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/naming"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/klauspost/compress/zip"
)

// BatchTimeFormat is the timestamp embedded in export folder and archive names.
const BatchTimeFormat = "20060102_150405"

// FileStatus is the outcome for one song of a batch.
type FileStatus int

const (
	FileCopied FileStatus = iota
	FileSkipped
	FileFailed
)

func (s FileStatus) String() string {
	switch s {
	case FileCopied:
		return "copied"
	case FileSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// FileResult records what happened to one song.
type FileResult struct {
	Source string
	Target string // name inside the destination
	Status FileStatus
	Bytes  int64
	Cover  artwork.EmbedOutcome
	Error  error
}

// ExportResult summarizes a batch.
type ExportResult struct {
	BatchID     string
	Destination models.Destination
	Path        string // folder, mirror directory or archive file
	Requested   int
	Files       []FileResult // copied or archived
	Skipped     []FileResult // source missing
	Failed      []FileResult // copy or archive failed
	Covers      int          // covers embedded
	Bytes       int64
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Summary is a one-line human readable description of the batch.
func (r *ExportResult) Summary() string {
	return fmt.Sprintf("%d/%d files, %s, %d skipped, %d failed, %d covers embedded → %s",
		len(r.Files), r.Requested, humanize.Bytes(uint64(r.Bytes)),
		len(r.Skipped), len(r.Failed), r.Covers, r.Path)
}

// ExportEngineOpts configures an [ExportEngine].
type ExportEngineOpts struct {
	Root    string // export root; folders and archives are created here
	SyncDir string // long-lived mirror directory
	Logger  *log.Logger
	Names   naming.Builder
	Now     func() time.Time
}

// ExportEngine materializes song selections.
type ExportEngine struct {
	root    string
	syncDir string
	names   naming.Builder
	covers  *artwork.Embedder
	logger  *log.Logger
	now     func() time.Time
}

// NewExportEngine creates an ExportEngine from opts.
func NewExportEngine(opts ExportEngineOpts) *ExportEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ExportEngine{
		root:    opts.Root,
		syncDir: opts.SyncDir,
		names:   opts.Names,
		covers:  artwork.NewEmbedder(logger),
		logger:  logger,
		now:     now,
	}
}

// Export writes req.Songs to the requested destination and returns where they went.
//
// Missing sources are skipped and per-file failures are recorded in the
// result; the error is only set when the batch could not start
// ([shared.ErrNoSongs], [shared.ErrDestinationCreate]).
func (e *ExportEngine) Export(progress chan<- ProgressUpdate, req models.ExportRequest) (*ExportResult, error) {
	if len(req.Songs) == 0 {
		return nil, shared.ErrNoSongs
	}

	if err := os.MkdirAll(e.root, 0755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrDestinationCreate, e.root, err)
	}

	started := e.now()
	result := &ExportResult{
		BatchID:     shared.GenerateID(),
		Destination: req.Destination,
		Requested:   len(req.Songs),
		StartedAt:   started,
	}
	logger := shared.WithLogger(e.logger, "batch", result.BatchID, "destination", req.Destination)

	base := "music_export_" + started.Format(BatchTimeFormat)

	var err error
	switch req.Destination {
	case models.DestinationArchive:
		f, path, cerr := createBatchArchive(e.root, base)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDestinationCreate, cerr)
		}
		result.Path = path
		sendProgress(progress, prepareUpdate(len(req.Songs), req.Destination, result.Path))
		err = e.exportArchive(progress, logger, f, req, result)
	case models.DestinationSync:
		if e.syncDir == "" {
			return nil, fmt.Errorf("%w: sync directory not configured", shared.ErrDestinationCreate)
		}
		if err := os.MkdirAll(e.syncDir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrDestinationCreate, e.syncDir, err)
		}
		result.Path = e.syncDir
		sendProgress(progress, prepareUpdate(len(req.Songs), req.Destination, result.Path))
		err = e.exportFolder(progress, logger, req, result)
	default:
		path, cerr := createBatchDir(e.root, base)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDestinationCreate, cerr)
		}
		result.Path = path
		sendProgress(progress, prepareUpdate(len(req.Songs), req.Destination, result.Path))
		err = e.exportFolder(progress, logger, req, result)
	}
	if err != nil {
		return nil, err
	}

	result.FinishedAt = e.now()
	logger.Info("export finished",
		"path", result.Path,
		"files", len(result.Files),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"bytes", humanize.Bytes(uint64(result.Bytes)),
	)
	sendProgress(progress, completeUpdate(result))

	return result, nil
}

// exportFolder copies songs into the existing directory result.Path.
func (e *ExportEngine) exportFolder(progress chan<- ProgressUpdate, logger *log.Logger, req models.ExportRequest, result *ExportResult) error {
	if err := normalize(result.Path, req.Identity); err != nil {
		logger.Warn("failed to apply permissions", "path", result.Path, "error", err)
	}

	total := len(req.Songs)
	for i, song := range req.Songs {
		step := i + 1
		if !sourceExists(song.URL) {
			result.Skipped = append(result.Skipped, FileResult{Source: song.URL, Status: FileSkipped, Error: shared.ErrSourceMissing})
			logger.Debug("source missing, skipping", "song", song.URL)
			sendProgress(progress, skippedUpdate(Copy, step, total, song))
			continue
		}

		name := e.names.TargetName(song.URL, filenameOf(song), req.RenameFiles)
		target := filepath.Join(result.Path, name)
		sendProgress(progress, fileUpdate(Copy, step, total, song))

		n, err := copyFile(song.URL, target)
		if err != nil {
			result.Failed = append(result.Failed, FileResult{Source: song.URL, Target: name, Status: FileFailed, Error: err})
			logger.Error("copy failed", "song", song.URL, "target", target, "error", err)
			sendProgress(progress, failedUpdate(Copy, step, total, song, err))
			continue
		}

		file := FileResult{Source: song.URL, Target: name, Status: FileCopied, Bytes: n}
		if req.EmbedCovers {
			sendProgress(progress, embedUpdate(step, total, target))
			file.Cover, file.Error = e.covers.EmbedCoverIfAbsent(song.URL, target)
			if file.Cover == artwork.Embedded {
				result.Covers++
				if info, err := os.Stat(target); err == nil {
					file.Bytes = info.Size()
				}
			}
		}

		if err := normalize(target, req.Identity); err != nil {
			logger.Warn("failed to apply permissions", "target", target, "error", err)
		}

		result.Files = append(result.Files, file)
		result.Bytes += file.Bytes
	}

	return nil
}

// exportArchive writes songs into f, the new zip at result.Path, and closes it.
func (e *ExportEngine) exportArchive(progress chan<- ProgressUpdate, logger *log.Logger, f *os.File, req models.ExportRequest, result *ExportResult) error {
	defer f.Close()

	zw := zip.NewWriter(f)
	seen := make(map[string]bool, len(req.Songs))

	total := len(req.Songs)
	for i, song := range req.Songs {
		step := i + 1
		if !sourceExists(song.URL) {
			result.Skipped = append(result.Skipped, FileResult{Source: song.URL, Status: FileSkipped, Error: shared.ErrSourceMissing})
			sendProgress(progress, skippedUpdate(Archive, step, total, song))
			continue
		}

		name := e.names.TargetName(song.URL, filenameOf(song), req.RenameFiles)
		if seen[name] {
			err := fmt.Errorf("duplicate archive entry %q", name)
			result.Failed = append(result.Failed, FileResult{Source: song.URL, Target: name, Status: FileFailed, Error: err})
			logger.Warn("skipping duplicate", "song", song.URL, "target", name)
			sendProgress(progress, failedUpdate(Archive, step, total, song, err))
			continue
		}
		sendProgress(progress, fileUpdate(Archive, step, total, song))

		n, err := addToArchive(zw, song.URL, name)
		if err != nil {
			result.Failed = append(result.Failed, FileResult{Source: song.URL, Target: name, Status: FileFailed, Error: err})
			logger.Error("archive write failed", "song", song.URL, "target", name, "error", err)
			sendProgress(progress, failedUpdate(Archive, step, total, song, err))
			if errors.Is(err, errArchiveBroken) {
				break
			}
			continue
		}

		seen[name] = true
		result.Files = append(result.Files, FileResult{Source: song.URL, Target: name, Status: FileCopied, Bytes: n})
		result.Bytes += n
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize archive: %v", shared.ErrDestinationCreate, err)
	}
	if err := normalize(result.Path, req.Identity); err != nil {
		logger.Warn("failed to apply permissions", "path", result.Path, "error", err)
	}
	return nil
}

func filenameOf(song models.Song) string {
	if song.Filename != "" {
		return song.Filename
	}
	return filepath.Base(song.URL)
}
