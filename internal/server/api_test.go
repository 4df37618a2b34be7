package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grasshide/LMS-Mixtape/internal/artwork"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/grasshide/LMS-Mixtape/internal/repositories"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tasks"
	tu "github.com/grasshide/LMS-Mixtape/internal/testing"
)

type stubQuery struct {
	got   models.QueryOptions
	songs []models.Song
	err   error
}

func (s *stubQuery) run(_ context.Context, opts models.QueryOptions) ([]models.Song, error) {
	s.got = opts
	return s.songs, s.err
}

type stubExporter struct {
	got    models.ExportRequest
	result *tasks.ExportResult
	err    error
}

func (s *stubExporter) Export(_ chan<- tasks.ProgressUpdate, req models.ExportRequest) (*tasks.ExportResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &tasks.ExportResult{BatchID: "batch", Destination: req.Destination, Path: "/exports/x", Requested: len(req.Songs)}, nil
}

func newTestServer(t *testing.T, opts APIOpts) http.Handler {
	t.Helper()
	if opts.Query == nil {
		opts.Query = (&stubQuery{}).run
	}
	if opts.Exporter == nil {
		opts.Exporter = &stubExporter{}
	}
	if opts.Covers == nil {
		opts.Covers = artwork.NewResolver(shared.CoverConfig{MaxDimension: 64, Quality: 80}, nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return New("127.0.0.1:0", NewAPI(opts), opts.Logger).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return out
}

func TestQueryEndpoint(t *testing.T) {
	defaults := models.DefaultQueryOptions()

	t.Run("empty body uses defaults", func(t *testing.T) {
		q := &stubQuery{songs: []models.Song{models.NewSong("/m/a.mp3")}}
		h := newTestServer(t, APIOpts{Query: q.run, Defaults: defaults})

		rec := do(t, h, http.MethodPost, "/api/query", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		out := decode(t, rec)
		if out["success"] != true || out["count"].(float64) != 1 {
			t.Errorf("unexpected response: %v", out)
		}
		if q.got.MinRating != models.DefaultRating || q.got.Limit != models.DefaultLimit {
			t.Errorf("expected defaults, got %+v", q.got)
		}
	})

	t.Run("request fields override defaults", func(t *testing.T) {
		q := &stubQuery{}
		h := newTestServer(t, APIOpts{Query: q.run, Defaults: defaults})

		body := `{"rating":80,"limit":5,"exclude_genres":["Podcast"],"dyn_ps_val":12.5,
			"album_limit":2,"order_by":"last_played","added_before":1700000000}`
		rec := do(t, h, http.MethodPost, "/api/query", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		got := q.got
		if got.MinRating != 80 || got.Limit != 5 || got.AlbumLimit != 2 {
			t.Errorf("unexpected options: %+v", got)
		}
		if len(got.ExcludeGenres) != 1 || got.ExcludeGenres[0] != "Podcast" {
			t.Errorf("unexpected genres: %v", got.ExcludeGenres)
		}
		if got.MinDynPSVal == nil || *got.MinDynPSVal != 12.5 {
			t.Errorf("unexpected dyn_ps_val: %v", got.MinDynPSVal)
		}
		if got.Order != models.OrderLastPlayed {
			t.Errorf("expected last_played order, got %v", got.Order)
		}
		if got.AddedBefore == nil || !got.AddedBefore.Equal(time.Unix(1700000000, 0)) {
			t.Errorf("unexpected added_before: %v", got.AddedBefore)
		}
	})

	t.Run("zero dyn_ps_val and legacy randomize", func(t *testing.T) {
		q := &stubQuery{}
		h := newTestServer(t, APIOpts{Query: q.run, Defaults: defaults})

		rec := do(t, h, http.MethodPost, "/api/query", `{"dyn_ps_val":0,"album_limit":null,"randomize":true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if q.got.MinDynPSVal != nil {
			t.Errorf("expected no dyn filter, got %v", *q.got.MinDynPSVal)
		}
		if q.got.Order != models.OrderRandom {
			t.Errorf("expected random order, got %v", q.got.Order)
		}
	})

	t.Run("invalid order", func(t *testing.T) {
		h := newTestServer(t, APIOpts{Defaults: defaults})
		rec := do(t, h, http.MethodPost, "/api/query", `{"order_by":"loudest"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if decode(t, rec)["success"] != false {
			t.Error("expected success=false")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newTestServer(t, APIOpts{Defaults: defaults})
		rec := do(t, h, http.MethodPost, "/api/query", `{"rating":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		q := &stubQuery{err: fmt.Errorf("%w: gone", shared.ErrStoreUnavailable)}
		h := newTestServer(t, APIOpts{Query: q.run, Defaults: defaults})
		rec := do(t, h, http.MethodPost, "/api/query", `{}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		out := decode(t, rec)
		if out["success"] != false || !strings.Contains(out["error"].(string), "gone") {
			t.Errorf("unexpected response: %v", out)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		h := newTestServer(t, APIOpts{Defaults: defaults})
		rec := do(t, h, http.MethodGet, "/api/query", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("songs in the mirror are flagged", func(t *testing.T) {
		sync := t.TempDir()
		tu.Touch(t, filepath.Join(sync, "a.mp3"))

		q := &stubQuery{songs: []models.Song{models.NewSong("/m/a.mp3"), models.NewSong("/m/b.mp3")}}
		h := newTestServer(t, APIOpts{Query: q.run, Defaults: defaults, SyncDir: sync})

		rec := do(t, h, http.MethodPost, "/api/query", `{}`)
		var out queryResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(out.Songs) != 2 || !out.Songs[0].ExistsInSync || out.Songs[1].ExistsInSync {
			t.Errorf("unexpected sync flags: %+v", out.Songs)
		}
	})
}

func TestExportEndpoint(t *testing.T) {
	t.Run("no songs", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"songs":[]}`, `{"songs":[{"title":"no url"}]}`} {
			h := newTestServer(t, APIOpts{})
			rec := do(t, h, http.MethodPost, "/api/export", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", body, rec.Code)
			}
			if out := decode(t, rec); out["error"] != "No songs selected" {
				t.Errorf("%s: unexpected error %v", body, out["error"])
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		ex := &stubExporter{}
		identity := &models.Identity{UID: 1000, GID: 1000}
		h := newTestServer(t, APIOpts{Exporter: ex, Identity: identity})

		rec := do(t, h, http.MethodPost, "/api/export", `{"songs":[{"url":"/m/a.mp3"}]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := ex.got
		if got.Destination != models.DestinationFolder || !got.EmbedCovers || !got.RenameFiles {
			t.Errorf("unexpected request: %+v", got)
		}
		if got.Identity != identity {
			t.Error("expected configured identity")
		}
		if got.Songs[0].Filename != "a.mp3" {
			t.Errorf("expected derived filename, got %q", got.Songs[0].Filename)
		}

		out := decode(t, rec)
		if out["success"] != true || out["export_path"] != "/exports/x" || out["format"] != "folder" {
			t.Errorf("unexpected response: %v", out)
		}
	})

	tests := []struct {
		name string
		body string
		dest models.Destination
	}{
		{"zip", `{"songs":[{"url":"/a.mp3"}],"format":"zip"}`, models.DestinationArchive},
		{"sync flag", `{"songs":[{"url":"/a.mp3"}],"format":"folder","sync_folder":true}`, models.DestinationSync},
		{"sync flag ignored for zip", `{"songs":[{"url":"/a.mp3"}],"format":"zip","sync_folder":true}`, models.DestinationArchive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &stubExporter{}
			h := newTestServer(t, APIOpts{Exporter: ex})
			rec := do(t, h, http.MethodPost, "/api/export", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ex.got.Destination != tt.dest {
				t.Errorf("expected %v, got %v", tt.dest, ex.got.Destination)
			}
		})
	}

	t.Run("flags off", func(t *testing.T) {
		ex := &stubExporter{}
		h := newTestServer(t, APIOpts{Exporter: ex})
		do(t, h, http.MethodPost, "/api/export", `{"songs":[{"url":"/a.mp3"}],"embed_covers":false,"rename_files":false}`)
		if ex.got.EmbedCovers || ex.got.RenameFiles {
			t.Errorf("expected flags off, got %+v", ex.got)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		h := newTestServer(t, APIOpts{})
		rec := do(t, h, http.MethodPost, "/api/export", `{"songs":[{"url":"/a.mp3"}],"format":"tar"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("destination failure", func(t *testing.T) {
		ex := &stubExporter{err: fmt.Errorf("%w: read-only", shared.ErrDestinationCreate)}
		h := newTestServer(t, APIOpts{Exporter: ex})
		rec := do(t, h, http.MethodPost, "/api/export", `{"songs":[{"url":"/a.mp3"}]}`)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if decode(t, rec)["success"] != false {
			t.Error("expected success=false")
		}
	})
}

func TestDownloadEndpoint(t *testing.T) {
	root := t.TempDir()
	tu.MustWriteFile(t, filepath.Join(root, "music_export_1.zip"), []byte("zipdata"))
	tu.MustWriteFile(t, filepath.Join(root, "music_export_2", "a.mp3"), []byte("nested"))

	h := newTestServer(t, APIOpts{ExportRoot: root})

	t.Run("file in root", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/download/music_export_1.zip", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "zipdata" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
			t.Errorf("expected attachment, got %q", cd)
		}
	})

	for _, target := range []string{
		"/api/download/missing.zip",
		"/api/download/music_export_2",
		"/api/download/..%2Fetc%2Fpasswd",
	} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, target, "")
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
		})
	}
}

func TestCoverEndpoint(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "with", "01.mp3")
	tu.MustWriteFile(t, track, []byte("audio"))
	tu.MustWriteFile(t, filepath.Join(dir, "with", "cover.png"), tu.PNG(t, 128, 128, color.RGBA{R: 255, A: 255}))

	bare := filepath.Join(dir, "bare", "01.mp3")
	tu.MustWriteFile(t, bare, []byte("audio"))

	h := newTestServer(t, APIOpts{})

	t.Run("missing parameter", func(t *testing.T) {
		if rec := do(t, h, http.MethodGet, "/api/cover", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing song", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, models.CoverURLFor(filepath.Join(dir, "nope.mp3")), "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("sidecar transcoded", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, models.CoverURLFor(track), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("expected image/jpeg, got %q", ct)
		}
		if src := rec.Header().Get("X-Cover-Source"); src != "sidecar" {
			t.Errorf("expected sidecar source, got %q", src)
		}
	})

	t.Run("placeholder", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, models.CoverURLFor(bare), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != artwork.PlaceholderMIME {
			t.Errorf("expected placeholder, got %q", ct)
		}
		if !bytes.Equal(rec.Body.Bytes(), artwork.Placeholder().Data) {
			t.Error("unexpected placeholder body")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		limited := newTestServer(t, APIOpts{CoverLimit: RateLimit(0.001, 1)})
		if rec := do(t, limited, http.MethodGet, models.CoverURLFor(bare), ""); rec.Code != http.StatusOK {
			t.Fatalf("expected first request to pass, got %d", rec.Code)
		}
		if rec := do(t, limited, http.MethodGet, models.CoverURLFor(bare), ""); rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", rec.Code)
		}
	})
}

func TestStatusEndpoint(t *testing.T) {
	sync := t.TempDir()
	h := newTestServer(t, APIOpts{ExportRoot: "/exports", SyncDir: sync})

	out := decode(t, do(t, h, http.MethodGet, "/api/status", ""))
	if out["sync_available"] != true || out["export_root"] != "/exports" {
		t.Errorf("unexpected status: %v", out)
	}
}

func TestQueryAndExportAgainstLibrary(t *testing.T) {
	lib := tu.NewLibrary(t, true)
	music := t.TempDir()
	root := t.TempDir()

	for i, title := range []string{"One", "Two", "Three"} {
		path := filepath.Join(music, "Album", fmt.Sprintf("%02d.mp3", i+1))
		tu.WriteMP3(t, path, "Artist", title, nil)
		lib.Add(t, shared.SandboxTrack{
			Path:   path,
			Title:  title,
			Artist: "Artist",
			Album:  "Album",
			Rating: tu.Int(80),
			Added:  int64(1000 + i),
		})
	}

	h := newTestServer(t, APIOpts{
		Query: func(ctx context.Context, opts models.QueryOptions) ([]models.Song, error) {
			return repositories.QuerySongs(ctx, lib.Dir, opts)
		},
		Exporter:   tasks.NewExportEngine(tasks.ExportEngineOpts{Root: root}),
		ExportRoot: root,
		Defaults:   models.DefaultQueryOptions(),
	})

	rec := do(t, h, http.MethodPost, "/api/query", `{"rating":60,"limit":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("query failed: %d %s", rec.Code, rec.Body.String())
	}
	var selected queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &selected); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if selected.Count != 2 || selected.Songs[0].Title != "Three" {
		t.Fatalf("unexpected selection: %+v", selected.Songs)
	}

	payload, err := json.Marshal(map[string]any{"songs": selected.Songs, "format": "zip"})
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	rec = do(t, h, http.MethodPost, "/api/export", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["exported"].(float64) != 2 {
		t.Errorf("expected 2 exported files, got %v", out["exported"])
	}

	archive := filepath.Base(out["export_path"].(string))
	rec = do(t, h, http.MethodGet, "/api/download/"+archive, "")
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Errorf("expected archive download, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrNoSongs, http.StatusBadRequest},
		{fmt.Errorf("%w: x", shared.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: x", shared.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
