package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/mirror"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
)

// QueryFunc runs one song selection against the library.
type QueryFunc func(ctx context.Context, opts models.QueryOptions) ([]models.Song, error)

// Exporter materializes an export batch.
type Exporter interface {
	Export(progress chan<- tasks.ProgressUpdate, req models.ExportRequest) (*tasks.ExportResult, error)
}

// CoverServer resolves display artwork for a track.
type CoverServer interface {
	Serve(trackPath string) (artwork.Cover, error)
}

// APIOpts configures an [API].
type APIOpts struct {
	Query    QueryFunc
	Exporter Exporter
	Covers   CoverServer

	ExportRoot string              // downloads are served from here
	SyncDir    string              // mirror used for exists_in_sync
	Defaults   models.QueryOptions // applied to fields absent from a query request
	Identity   *models.Identity

	// CoverLimit throttles the cover endpoint; nil disables it.
	CoverLimit Middleware
	Logger     *log.Logger
}

// API serves the JSON endpoints over the query engine and export pipeline.
type API struct {
	opts   APIOpts
	logger *log.Logger
	syncMu sync.Mutex
}

func NewAPI(opts APIOpts) *API {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &API{opts: opts, logger: logger}
}

// Register mounts every endpoint on r.
func (a *API) Register(r Router) {
	cover := http.Handler(http.HandlerFunc(a.cover))
	if a.opts.CoverLimit != nil {
		cover = a.opts.CoverLimit(cover)
	}

	r.Handle(http.MethodPost, "/api/query", http.HandlerFunc(a.query))
	r.Handle(http.MethodPost, "/api/export", http.HandlerFunc(a.export))
	r.Handle(http.MethodGet, "/api/download/{file}", http.HandlerFunc(a.download))
	r.Handle(http.MethodGet, "/api/cover", cover)
	r.Handler(&statusHandler{exportRoot: a.opts.ExportRoot, syncDir: a.opts.SyncDir})
}

type queryRequest struct {
	Rating        *int     `json:"rating"`
	Limit         *int     `json:"limit"`
	ExcludeGenres []string `json:"exclude_genres"`
	DynPSVal      *float64 `json:"dyn_ps_val"`
	AlbumLimit    *int     `json:"album_limit"`
	OrderBy       string   `json:"order_by"`
	Randomize     bool     `json:"randomize"`
	AddedBefore   *int64   `json:"added_before"`
	AddedAfter    *int64   `json:"added_after"` // legacy name of added_before
}

// Options merges the request over defaults.
func (q queryRequest) Options(defaults models.QueryOptions) (models.QueryOptions, error) {
	opts := defaults
	if q.Rating != nil {
		opts.MinRating = *q.Rating
	}
	if q.Limit != nil {
		opts.Limit = *q.Limit
	}
	if q.ExcludeGenres != nil {
		opts.ExcludeGenres = q.ExcludeGenres
	}
	if q.DynPSVal != nil {
		opts.MinDynPSVal = nil
		if *q.DynPSVal != 0 {
			v := *q.DynPSVal
			opts.MinDynPSVal = &v
		}
	}
	if q.AlbumLimit != nil {
		opts.AlbumLimit = *q.AlbumLimit
	}

	switch {
	case q.OrderBy != "":
		order, err := models.ParseOrder(q.OrderBy)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		opts.Order = order
	case q.Randomize:
		opts.Order = models.OrderRandom
	}

	before := q.AddedBefore
	if before == nil {
		before = q.AddedAfter
	}
	if before != nil {
		opts.AddedBefore = nil
		if *before > 0 {
			ts := time.Unix(*before, 0).UTC()
			opts.AddedBefore = &ts
		}
	}
	return opts, nil
}

type queryResponse struct {
	Success bool          `json:"success"`
	Songs   []models.Song `json:"songs"`
	Count   int           `json:"count"`
}

func (a *API) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := req.Options(a.opts.Defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	songs, err := a.opts.Query(r.Context(), opts)
	if err != nil {
		a.logger.Error("query failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	songs = mirror.Annotate(songs, a.opts.SyncDir)
	writeJSON(w, http.StatusOK, queryResponse{Success: true, Songs: songs, Count: len(songs)})
}

type exportRequest struct {
	Songs       []models.Song `json:"songs"`
	Format      string        `json:"format"`
	EmbedCovers *bool         `json:"embed_covers"`
	RenameFiles *bool         `json:"rename_files"`
	SyncFolder  bool          `json:"sync_folder"`
}

// Request converts the payload into a [models.ExportRequest].
func (e exportRequest) Request(identity *models.Identity) (models.ExportRequest, error) {
	dest, err := models.ParseDestination(e.Format)
	if err != nil {
		return models.ExportRequest{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if e.SyncFolder && dest == models.DestinationFolder {
		dest = models.DestinationSync
	}

	songs := make([]models.Song, 0, len(e.Songs))
	for _, song := range e.Songs {
		if song.URL == "" {
			continue
		}
		if song.Filename == "" {
			song.Filename = filepath.Base(song.URL)
		}
		songs = append(songs, song)
	}

	return models.ExportRequest{
		Songs:       songs,
		Destination: dest,
		EmbedCovers: e.EmbedCovers == nil || *e.EmbedCovers,
		RenameFiles: e.RenameFiles == nil || *e.RenameFiles,
		Identity:    identity,
	}, nil
}

type exportResponse struct {
	Success    bool   `json:"success"`
	ExportPath string `json:"export_path"`
	Format     string `json:"format"`
	BatchID    string `json:"batch_id"`
	Exported   int    `json:"exported"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Covers     int    `json:"covers"`
	Bytes      int64  `json:"bytes"`
}

func (a *API) export(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := body.Request(a.opts.Identity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Songs) == 0 {
		writeError(w, http.StatusBadRequest, "No songs selected")
		return
	}

	if req.Destination == models.DestinationSync {
		a.syncMu.Lock()
		defer a.syncMu.Unlock()
	}

	result, err := a.opts.Exporter.Export(nil, req)
	if err != nil {
		a.logger.Error("export failed", "destination", req.Destination, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	a.logger.Info("export finished", "batch", result.BatchID, "summary", result.Summary())
	writeJSON(w, http.StatusOK, exportResponse{
		Success:    true,
		ExportPath: result.Path,
		Format:     result.Destination.String(),
		BatchID:    result.BatchID,
		Exported:   len(result.Files),
		Skipped:    len(result.Skipped),
		Failed:     len(result.Failed),
		Covers:     result.Covers,
		Bytes:      result.Bytes,
	})
}

func (a *API) download(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}

	path := filepath.Join(a.opts.ExportRoot, name)
	f, err := os.Open(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (a *API) cover(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path parameter")
		return
	}

	cover, err := a.opts.Covers.Serve(path)
	if err != nil {
		if errors.Is(err, shared.ErrSourceMissing) {
			writeError(w, http.StatusNotFound, "Song file not found")
			return
		}
		a.logger.Error("cover failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", cover.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Cover-Source", cover.Source.String())
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(cover.Data))
}

// statusHandler reports where exports go and whether the mirror exists.
type statusHandler struct {
	exportRoot string
	syncDir    string
}

func (h *statusHandler) Routes() []string { return []string{"GET /api/status"} }

func (h *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"export_root":    h.exportRoot,
		"sync_dir":       h.syncDir,
		"sync_available": mirror.New(h.syncDir).Available(),
	})
}

// decodeBody decodes a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed request body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNoSongs), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
