package meta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTitleFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"track.mp3", "track"},
		{"Highway_Anthem.mp3", "Highway Anthem"},
		{"02 - Highway_Anthem.mp3", "Highway Anthem"},
		{"03. Some Song.flac", "Some Song"},
		{"Artist - Some Song.mp3", "Some Song"},
		{"07 - Artist - Some Song.mp3", "Some Song"},
		{"/tmp/uploads/nested - title.ogg", "title"},
		{".mp3", "Untitled"},
		{"   .mp3", "Untitled"},
	}
	for _, tc := range cases {
		if got := TitleFromFilename(tc.in); got != tc.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestArtistFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Artist - Some Song.mp3", "Artist"},
		{"07 - Artist - Some Song.mp3", "Artist"},
		{"Cool_Band - Anthem.mp3", "Cool Band"},
		{"track.mp3", ""},
		{"Highway_Anthem.mp3", ""},
	}
	for _, tc := range cases {
		if got := ArtistFromFilename(tc.in); got != tc.want {
			t.Errorf("ArtistFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// id3v2WithArtist builds a minimal ID3v2.3 tag carrying only a TPE1
// (artist) frame, so the parsed tags have an artist but no title.
func id3v2WithArtist(artist string) []byte {
	frame := append([]byte{0}, []byte(artist)...) // 0 = ISO-8859-1 text encoding

	body := []byte{'T', 'P', 'E', '1'}
	size := len(frame)
	body = append(body, byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	body = append(body, 0, 0) // frame flags
	body = append(body, frame...)

	header := []byte{'I', 'D', '3', 3, 0, 0}
	total := len(body)
	header = append(header,
		byte(total>>21&0x7f), byte(total>>14&0x7f), byte(total>>7&0x7f), byte(total&0x7f))
	return append(header, body...)
}

func TestExtractTitlelessTagsReturnEmptyTitle(t *testing.T) {
	// The staging file's name must never leak into the result; a missing
	// title frame comes back empty so the caller can pick the fallback.
	path := filepath.Join(t.TempDir(), "mixfm-upload-1234567")
	if err := os.WriteFile(path, id3v2WithArtist("Some Artist"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tags, err := Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if tags.Title != "" {
		t.Errorf("got title %q, want empty", tags.Title)
	}
	if tags.Artist != "Some Artist" {
		t.Errorf("got artist %q, want %q", tags.Artist, "Some Artist")
	}
}

func TestExtractRejectsUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.mp3")
	if err := os.WriteFile(path, []byte("this is not an audio file"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Extract(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.mp3"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("missing file misreported as unsupported format: %v", err)
	}
}
