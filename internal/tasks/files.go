package tasks

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/klauspost/compress/zip"
)

// errArchiveBroken marks a write error after which the zip stream is unusable.
var errArchiveBroken = errors.New("archive stream broken")

// maxBatchSuffix bounds how many same-second batches get their own destination.
const maxBatchSuffix = 100

// batchName returns base for the first attempt and base_N after that.
func batchName(base string, attempt int) string {
	if attempt == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, attempt)
}

// createBatchDir creates a new directory root/base, adding a numeric suffix
// when a batch started in the same second already took the name.
func createBatchDir(root, base string) (string, error) {
	for attempt := 1; attempt <= maxBatchSuffix; attempt++ {
		path := filepath.Join(root, batchName(base, attempt))
		err := os.Mkdir(path, 0755)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free destination for %s", base)
}

// createBatchArchive creates a new zip file root/base.zip, never truncating
// an existing archive.
func createBatchArchive(root, base string) (*os.File, string, error) {
	for attempt := 1; attempt <= maxBatchSuffix; attempt++ {
		path := filepath.Join(root, batchName(base, attempt)+".zip")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free destination for %s.zip", base)
}

func sourceExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// copyFile copies src to dst, keeping the source mode bits and modification time.
// A failure part-way leaves a partial dst behind; the next export overwrites it.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return n, err
	}
	return n, nil
}

// addToArchive deflates src into zw under name.
func addToArchive(zw *zip.Writer, src, name string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errArchiveBroken, err)
	}
	return io.Copy(w, in)
}

// normalize applies the configured owner/group and mode bits to path:
// 0664 for files, 0775 for directories. A nil identity is a no-op.
func normalize(path string, id *models.Identity) error {
	if id == nil {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.Chown(path, id.UID, id.GID); err != nil {
		return err
	}

	mode := os.FileMode(0664)
	if info.IsDir() {
		mode = 0775
	}
	return os.Chmod(path, mode)
}
