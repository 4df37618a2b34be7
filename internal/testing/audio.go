package testing

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// mpegPayload stands in for audio frames; large enough for ID3v1 probing.
var mpegPayload = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 1020)...)

// WriteMP3 writes a dummy MP3 with an ID3v2 tag. Empty artist and title are
// omitted; a nil cover writes no APIC frame.
func WriteMP3(t *testing.T, path, artist, title string, cover []byte) {
	t.Helper()
	MustWriteFile(t, path, mpegPayload)

	if artist == "" && title == "" && cover == nil {
		return
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open %s for tagging: %v", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if artist != "" {
		tag.SetArtist(artist)
	}
	if title != "" {
		tag.SetTitle(title)
	}
	if cover != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front",
			Picture:     cover,
		})
	}

	if err := tag.Save(); err != nil {
		t.Fatalf("failed to save tag on %s: %v", path, err)
	}
}

// flacFrame stands in for audio frames: a frame sync code plus padding.
var flacFrame = append([]byte{0xFF, 0xF8, 0x69, 0x08}, make([]byte, 60)...)

// WriteFLAC writes a FLAC stream with one dummy frame, a Vorbis comment block
// and, when cover is non-nil, a front-cover PICTURE block.
func WriteFLAC(t *testing.T, path, artist, title string, cover []byte) {
	t.Helper()

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: streamInfo()},
		},
		Frames: flacFrame,
	}

	if artist != "" || title != "" {
		cmt := flacvorbis.New()
		if artist != "" {
			if err := cmt.Add(flacvorbis.FIELD_ARTIST, artist); err != nil {
				t.Fatalf("failed to add artist: %v", err)
			}
		}
		if title != "" {
			if err := cmt.Add(flacvorbis.FIELD_TITLE, title); err != nil {
				t.Fatalf("failed to add title: %v", err)
			}
		}
		block := cmt.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	if cover != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front", cover, "image/jpeg")
		if err != nil {
			t.Fatalf("failed to build picture block: %v", err)
		}
		block := pic.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := f.Save(path); err != nil {
		t.Fatalf("failed to write FLAC %s: %v", path, err)
	}
}

// WriteFLACWithVorbisCover writes a FLAC whose only artwork is a Vorbis COVERART field.
func WriteFLACWithVorbisCover(t *testing.T, path string) {
	t.Helper()

	cmt := flacvorbis.New()
	if err := cmt.Add("COVERART", "aGVsbG8="); err != nil {
		t.Fatalf("failed to add coverart: %v", err)
	}
	block := cmt.Marshal()

	f := &flac.File{Meta: []*flac.MetaDataBlock{{Type: flac.StreamInfo, Data: streamInfo()}, &block}, Frames: flacFrame}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := f.Save(path); err != nil {
		t.Fatalf("failed to write FLAC %s: %v", path, err)
	}
}

// WriteFLACMetadataOnly writes "fLaC" and a lone STREAMINFO block with
// nothing after it, as some rippers leave truncated files.
func WriteFLACMetadataOnly(t *testing.T, path string) {
	t.Helper()
	f := &flac.File{Meta: []*flac.MetaDataBlock{{Type: flac.StreamInfo, Data: streamInfo()}}}
	MustWriteFile(t, path, f.Marshal())
}

// streamInfo returns a 34-byte STREAMINFO body for 44.1kHz stereo 16-bit.
func streamInfo() []byte {
	b := make([]byte, 34)
	b[0], b[1] = 0x10, 0x00 // min block size 4096
	b[2], b[3] = 0x10, 0x00 // max block size 4096
	// sample rate (20 bits) | channels-1 (3 bits) | bps-1 (5 bits)
	b[10], b[11], b[12] = 0x0A, 0xC4, 0x42
	b[13] = 0xF0
	return b
}

// JPEG returns an encoded w×h JPEG filled with c.
func JPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, c)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNG returns an encoded w×h PNG filled with c (alpha preserved).
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, c)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func fill(img interface {
	Bounds() image.Rectangle
	Set(x, y int, c color.Color)
}, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// Touch creates an empty file at path.
func Touch(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	f.Close()
}
