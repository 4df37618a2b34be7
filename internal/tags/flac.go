package tags

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/grasshide/LMS-Mixtape/internal/shared"
)

// Vorbis comment fields some taggers use for artwork instead of PICTURE blocks.
var vorbisArtworkFields = []string{"COVERART", "METADATA_BLOCK_PICTURE"}

// FLAC is the native FLAC metadata container.
type FLAC struct{}

func (FLAC) Format() Format { return FormatFLAC }

func (FLAC) ReadArtistTitle(path string) (Info, Status) {
	return readArtistTitle(path)
}

func (FLAC) HasArtwork(path string) (bool, Status) {
	f, st := parseFLAC(path, false)
	if !st.OK() {
		return false, st
	}

	for _, block := range f.Meta {
		switch block.Type {
		case flac.Picture:
			return true, ok()
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			if hasAnyField(cmt.Comments, vorbisArtworkFields) {
				return true, ok()
			}
		}
	}
	return false, absent()
}

func (FLAC) ExtractArtwork(path string) (Picture, Status) {
	f, st := parseFLAC(path, false)
	if !st.OK() {
		return Picture{}, st
	}

	var fallback *flacpicture.MetadataBlockPicture
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil || len(pic.ImageData) == 0 {
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return Picture{Data: pic.ImageData, MIMEType: mimeOrJPEG(pic.MIME)}, ok()
		}
		if fallback == nil {
			fallback = pic
		}
	}

	if fallback == nil {
		return Picture{}, absent()
	}
	return Picture{Data: fallback.ImageData, MIMEType: mimeOrJPEG(fallback.MIME)}, ok()
}

func (FLAC) EmbedArtwork(path string, pic Picture) Status {
	f, st := parseFLAC(path, true)
	if !st.OK() {
		return st
	}

	block, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "front cover", pic.Data, mimeOrJPEG(pic.MIMEType))
	if err != nil {
		return failed(Corrupt, err)
	}

	marshaled := block.Marshal()
	f.Meta = append(f.Meta, &marshaled)

	if err := f.Save(path); err != nil {
		return failed(IOError, err)
	}
	return ok()
}

// parseFLAC reads the metadata blocks of path. With frames set, everything
// after the last block is kept verbatim so the file can be saved again; the
// audio itself is never inspected.
func parseFLAC(path string, frames bool) (f *flac.File, st Status) {
	defer func() {
		if r := recover(); r != nil {
			f, st = nil, failed(Corrupt, fmt.Errorf("%w: %v", shared.ErrTagRead, r))
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return nil, failed(IOError, err)
	}
	defer file.Close()

	f, err = flac.ParseMetadata(file)
	if err != nil {
		return nil, failed(Corrupt, fmt.Errorf("%w: %v", shared.ErrTagRead, err))
	}

	if frames {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, failed(IOError, err)
		}
		f.Frames = data
	}
	return f, ok()
}

func hasAnyField(comments []string, fields []string) bool {
	for _, c := range comments {
		key, _, found := strings.Cut(c, "=")
		if !found {
			continue
		}
		for _, field := range fields {
			if strings.EqualFold(key, field) {
				return true
			}
		}
	}
	return false
}
