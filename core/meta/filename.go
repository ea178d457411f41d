package meta

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	trackNumberPrefix = regexp.MustCompile(`^\d+\s*[-_.]\s*`)
	artistTitleSplit  = regexp.MustCompile(`\s+-\s+`)
)

// TitleFromFilename derives a display title from an uploaded file's name.
// "03 - Artist - Some Song.mp3" becomes "Some Song"; a bare "track.mp3"
// becomes "track".
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	name = trackNumberPrefix.ReplaceAllString(name, "")

	// "Artist - Title" keeps only the title part.
	if parts := artistTitleSplit.Split(name, -1); len(parts) > 1 {
		name = parts[len(parts)-1]
	}

	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}

// ArtistFromFilename derives an artist from an "Artist - Title" style
// filename, or "" when the pattern does not apply.
func ArtistFromFilename(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = trackNumberPrefix.ReplaceAllString(name, "")

	parts := artistTitleSplit.Split(name, -1)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(parts[0], "_", " "))
}
