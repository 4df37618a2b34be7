package artwork

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"path/filepath"
	"testing"

	"github.com/grasshide/LMS-Mixtape/internal/shared"
	"github.com/grasshide/LMS-Mixtape/internal/tags"
	tu "github.com/grasshide/LMS-Mixtape/internal/testing"
)

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	return cfg.Width, cfg.Height, format
}

func TestTranscode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		max   int
		wantW int
		wantH int
	}{
		{"landscape bounded", tu.JPEG(t, 1200, 600, color.White), 600, 600, 300},
		{"portrait bounded", tu.JPEG(t, 300, 900, color.White), 600, 200, 600},
		{"small untouched", tu.JPEG(t, 100, 80, color.White), 600, 100, 80},
		{"png flattened", tu.PNG(t, 64, 64, color.NRGBA{R: 255, A: 128}), 32, 32, 32},
		{"default bound", tu.JPEG(t, 1000, 1000, color.White), 0, DefaultMaxDimension, DefaultMaxDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Transcode(tt.input, tt.max, 85)
			if err != nil {
				t.Fatalf("Transcode() error = %v", err)
			}

			w, h, format := decodeSize(t, out)
			if format != "jpeg" {
				t.Errorf("expected jpeg output, got %s", format)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}

	t.Run("invalid data", func(t *testing.T) {
		if _, err := Transcode([]byte("not an image"), 600, 85); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestFindSidecar(t *testing.T) {
	dir := t.TempDir()

	if _, ok := FindSidecar(dir, ServeSidecars); ok {
		t.Fatal("expected no sidecar in empty dir")
	}

	tu.Touch(t, filepath.Join(dir, "folder.png"))
	path, ok := FindSidecar(dir, ServeSidecars)
	if !ok || filepath.Base(path) != "folder.png" {
		t.Fatalf("got %q, %v", path, ok)
	}
	if _, ok := FindSidecar(dir, EmbedSidecars); ok {
		t.Error("folder.* is not an embedding candidate")
	}

	tu.Touch(t, filepath.Join(dir, "cover.jpeg"))
	tu.Touch(t, filepath.Join(dir, "cover.png"))
	path, _ = FindSidecar(dir, ServeSidecars)
	if filepath.Base(path) != "cover.png" {
		t.Errorf("expected cover.png by priority, got %s", path)
	}
}

func TestSidecarMIME(t *testing.T) {
	tests := map[string]string{
		"/a/cover.png":  "image/png",
		"/a/COVER.PNG":  "image/png",
		"/a/cover.jpg":  "image/jpeg",
		"/a/cover.jpeg": "image/jpeg",
	}
	for in, want := range tests {
		if got := SidecarMIME(in); got != want {
			t.Errorf("SidecarMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolverResolve(t *testing.T) {
	r := NewResolver(shared.CoverConfig{MaxDimension: 100, Quality: 80}, nil)

	t.Run("sidecar transcoded", func(t *testing.T) {
		dir := t.TempDir()
		track := filepath.Join(dir, "01.mp3")
		tu.WriteMP3(t, track, "A", "B", nil)
		tu.MustWriteFile(t, filepath.Join(dir, "cover.png"), tu.PNG(t, 400, 200, color.White))

		cover, err := r.Resolve(track)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cover.Source != SourceSidecar || cover.MIMEType != "image/jpeg" {
			t.Errorf("got source %v mime %s", cover.Source, cover.MIMEType)
		}
		if w, h, _ := decodeSize(t, cover.Data); w != 100 || h != 50 {
			t.Errorf("got %dx%d, want 100x50", w, h)
		}
	})

	t.Run("embedded fallback", func(t *testing.T) {
		dir := t.TempDir()
		track := filepath.Join(dir, "01.flac")
		tu.WriteFLAC(t, track, "A", "B", tu.JPEG(t, 50, 50, color.Black))

		cover, err := r.Resolve(track)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cover.Source != SourceEmbedded {
			t.Errorf("expected embedded source, got %v", cover.Source)
		}
	})

	t.Run("undecodable sidecar served as is", func(t *testing.T) {
		dir := t.TempDir()
		track := filepath.Join(dir, "01.mp3")
		tu.WriteMP3(t, track, "A", "B", nil)
		raw := []byte("\xff\xd8 truncated")
		tu.MustWriteFile(t, filepath.Join(dir, "folder.jpg"), raw)

		cover, err := r.Resolve(track)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !bytes.Equal(cover.Data, raw) || cover.MIMEType != "image/jpeg" {
			t.Error("expected original bytes when transcoding fails")
		}
	})

	t.Run("not found", func(t *testing.T) {
		dir := t.TempDir()
		track := filepath.Join(dir, "01.mp3")
		tu.WriteMP3(t, track, "A", "B", nil)

		if _, err := r.Resolve(track); !errors.Is(err, shared.ErrCoverNotFound) {
			t.Errorf("expected ErrCoverNotFound, got %v", err)
		}
	})
}

func TestResolverServe(t *testing.T) {
	r := NewResolver(shared.CoverConfig{}, nil)

	t.Run("placeholder", func(t *testing.T) {
		dir := t.TempDir()
		track := filepath.Join(dir, "01.ogg")
		tu.Touch(t, track)

		cover, err := r.Serve(track)
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
		if cover.Source != SourcePlaceholder || cover.MIMEType != PlaceholderMIME {
			t.Errorf("got %v %s", cover.Source, cover.MIMEType)
		}
		if !bytes.Contains(cover.Data, []byte("<svg")) {
			t.Error("expected svg placeholder")
		}
	})

	t.Run("missing track", func(t *testing.T) {
		_, err := r.Serve(filepath.Join(t.TempDir(), "gone.mp3"))
		if !errors.Is(err, shared.ErrSourceMissing) {
			t.Errorf("expected ErrSourceMissing, got %v", err)
		}
	})
}

func TestEmbedCoverIfAbsent(t *testing.T) {
	e := NewEmbedder(nil)
	sidecar := tu.JPEG(t, 16, 16, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	t.Run("flac gains sidecar bytes", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		source := filepath.Join(src, "01.flac")
		target := filepath.Join(dst, "Artist - Title.flac")
		tu.WriteFLAC(t, source, "Artist", "Title", nil)
		tu.WriteFLAC(t, target, "Artist", "Title", nil)
		tu.MustWriteFile(t, filepath.Join(src, "cover.jpg"), sidecar)

		outcome, err := e.EmbedCoverIfAbsent(source, target)
		if err != nil || outcome != Embedded {
			t.Fatalf("got %v, %v", outcome, err)
		}

		pic, st := tags.ExtractEmbeddedArtwork(target)
		if !st.OK() {
			t.Fatalf("no artwork after embed: %v", st)
		}
		if !bytes.Equal(pic.Data, sidecar) {
			t.Error("embedded bytes differ from sidecar")
		}

		first := tu.MustReadFile(t, target)
		outcome, err = e.EmbedCoverIfAbsent(source, target)
		if err != nil || outcome != AlreadyPresent {
			t.Fatalf("second call: got %v, %v", outcome, err)
		}
		if !bytes.Equal(first, tu.MustReadFile(t, target)) {
			t.Error("second embed modified the target")
		}
	})

	t.Run("mp3 with png sidecar", func(t *testing.T) {
		src := t.TempDir()
		source := filepath.Join(src, "01.mp3")
		target := filepath.Join(t.TempDir(), "01.mp3")
		tu.WriteMP3(t, source, "A", "B", nil)
		tu.WriteMP3(t, target, "A", "B", nil)
		tu.MustWriteFile(t, filepath.Join(src, "cover.png"), tu.PNG(t, 8, 8, color.White))

		if outcome, err := e.EmbedCoverIfAbsent(source, target); outcome != Embedded || err != nil {
			t.Fatalf("got %v, %v", outcome, err)
		}
		pic, _ := tags.ExtractEmbeddedArtwork(target)
		if pic.MIMEType != "image/png" {
			t.Errorf("expected image/png, got %s", pic.MIMEType)
		}
	})

	t.Run("no sidecar", func(t *testing.T) {
		src := t.TempDir()
		source := filepath.Join(src, "01.mp3")
		tu.WriteMP3(t, source, "A", "B", nil)
		tu.Touch(t, filepath.Join(src, "folder.jpg"))

		if outcome, err := e.EmbedCoverIfAbsent(source, source); outcome != NoSidecar || err != nil {
			t.Errorf("got %v, %v", outcome, err)
		}
	})

	t.Run("unsupported container", func(t *testing.T) {
		src := t.TempDir()
		source := filepath.Join(src, "01.wav")
		tu.Touch(t, source)
		tu.MustWriteFile(t, filepath.Join(src, "cover.jpg"), sidecar)

		if outcome, err := e.EmbedCoverIfAbsent(source, source); outcome != NotApplicable || err != nil {
			t.Errorf("got %v, %v", outcome, err)
		}
	})

	t.Run("corrupt target", func(t *testing.T) {
		src := t.TempDir()
		source := filepath.Join(src, "01.flac")
		target := filepath.Join(t.TempDir(), "01.flac")
		tu.MustWriteFile(t, target, []byte("not flac at all"))
		tu.MustWriteFile(t, filepath.Join(src, "cover.jpg"), sidecar)

		outcome, err := e.EmbedCoverIfAbsent(source, target)
		if outcome != EmbedFailed || !errors.Is(err, shared.ErrEmbed) {
			t.Errorf("got %v, %v", outcome, err)
		}
	})
}

func TestResolverOriginal(t *testing.T) {
	r := NewResolver(shared.CoverConfig{MaxDimension: 100, Quality: 80}, nil)

	dir := t.TempDir()
	track := filepath.Join(dir, "01.mp3")
	tu.WriteMP3(t, track, "A", "B", nil)
	raw := tu.PNG(t, 400, 200, color.White)
	tu.MustWriteFile(t, filepath.Join(dir, "cover.png"), raw)

	cover, err := r.Original(track)
	if err != nil {
		t.Fatalf("Original() error = %v", err)
	}
	if !bytes.Equal(cover.Data, raw) || cover.MIMEType != "image/png" {
		t.Errorf("expected untouched png, got %s (%d bytes)", cover.MIMEType, len(cover.Data))
	}

	if _, err := r.Original(filepath.Join(t.TempDir(), "02.mp3")); !errors.Is(err, shared.ErrCoverNotFound) {
		t.Errorf("expected ErrCoverNotFound, got %v", err)
	}
}
