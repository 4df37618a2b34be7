package tags

import (
	"os"

	"github.com/bogem/id3v2/v2"
)

const attachedPicture = "Attached picture"

// MP3 is the ID3v2 container.
type MP3 struct{}

func (MP3) Format() Format { return FormatMP3 }

func (MP3) ReadArtistTitle(path string) (Info, Status) {
	return readArtistTitle(path)
}

func (MP3) HasArtwork(path string) (bool, Status) {
	t, st := openID3(path, id3v2.Options{Parse: true, ParseFrames: []string{attachedPicture}})
	if !st.OK() {
		return false, st
	}
	defer t.Close()

	if len(t.GetFrames(t.CommonID(attachedPicture))) == 0 {
		return false, absent()
	}
	return true, ok()
}

func (MP3) ExtractArtwork(path string) (Picture, Status) {
	t, st := openID3(path, id3v2.Options{Parse: true, ParseFrames: []string{attachedPicture}})
	if !st.OK() {
		return Picture{}, st
	}
	defer t.Close()

	var fallback *id3v2.PictureFrame
	for _, f := range t.GetFrames(t.CommonID(attachedPicture)) {
		pf, isPic := f.(id3v2.PictureFrame)
		if !isPic || len(pf.Picture) == 0 {
			continue
		}
		if pf.PictureType == id3v2.PTFrontCover {
			return Picture{Data: pf.Picture, MIMEType: mimeOrJPEG(pf.MimeType)}, ok()
		}
		if fallback == nil {
			fallback = &pf
		}
	}

	if fallback == nil {
		return Picture{}, absent()
	}
	return Picture{Data: fallback.Picture, MIMEType: mimeOrJPEG(fallback.MimeType)}, ok()
}

func (MP3) EmbedArtwork(path string, pic Picture) Status {
	t, st := openID3(path, id3v2.Options{Parse: true})
	if !st.OK() {
		return st
	}
	defer t.Close()

	t.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    t.DefaultEncoding(),
		MimeType:    mimeOrJPEG(pic.MIMEType),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     pic.Data,
	})

	if err := t.Save(); err != nil {
		return failed(IOError, err)
	}
	return ok()
}

func openID3(path string, opts id3v2.Options) (*id3v2.Tag, Status) {
	t, err := id3v2.Open(path, opts)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, failed(IOError, err)
		}
		return nil, failed(Corrupt, err)
	}
	return t, ok()
}

func mimeOrJPEG(mime string) string {
	if mime == "" {
		return "image/jpeg"
	}
	return mime
}
