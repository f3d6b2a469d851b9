// Package util - helpers for loading image corpora.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents an image file loaded from disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from the file name, or -1 when the
	// name carries no frame number.
	Frame int
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files named like "frame-123.jpg" are ordered by frame number; everything
// else falls back to lexical order after the numbered frames.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: The loaded files in playback order.
//   - error: An error if the directory or a file cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".bmp", ".webp":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		files = append(files, ImageFile{
			Path:  path,
			Data:  data,
			Frame: frameNumber(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame >= 0) != (b.Frame >= 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return files, nil
}

// frameNumber extracts the frame number from names like "frame-123.jpg".
func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
