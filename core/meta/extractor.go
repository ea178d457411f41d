package meta

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ErrUnsupportedFormat marks a file whose embedded tags could not be read.
// Callers fall back to a filename-derived title.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Tags holds the metadata extracted from an uploaded audio file.
type Tags struct {
	Title    string
	Artist   string
	Duration float32 // seconds; 0 when the container does not carry it
}

// Extract reads embedded metadata from the audio file at path. A file the
// tag reader cannot parse returns ErrUnsupportedFormat. A readable file
// whose tags carry no title returns an empty Title; the caller decides
// which filename to derive a title from, since path is often a staging
// file whose name means nothing to the user.
func Extract(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, ErrUnsupportedFormat)
	}

	return &Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
	}, nil
}
