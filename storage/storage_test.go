package storage

import "testing"

func TestObjectKeyReflectsContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"audio/mpeg", "audio/7.mp3"},
		{"audio/mpeg; codecs=mp3", "audio/7.mp3"},
		{"audio/flac", "audio/7.flac"},
		{"audio/x-flac", "audio/7.flac"},
		{"audio/ogg", "audio/7.ogg"},
		{"audio/x-wav", "audio/7.wav"},
		{"audio/mp4", "audio/7.m4a"},
		{"application/octet-stream", "audio/7.mp3"},
		{"", "audio/7.mp3"},
	}
	for _, tc := range cases {
		if got := objectKey(7, tc.contentType); got != tc.want {
			t.Errorf("objectKey(7, %q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"audio/7.mp3", "audio/mpeg"},
		{"audio/7.flac", "audio/flac"},
		{"audio/7.ogg", "audio/ogg"},
		{"audio/7.wav", "audio/wav"},
		{"audio/7.m4a", "audio/mp4"},
		{"audio/7", "audio/mpeg"},
		{"legacy-key.bin", "audio/mpeg"},
	}
	for _, tc := range cases {
		if got := ContentTypeForKey(tc.key); got != tc.want {
			t.Errorf("ContentTypeForKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

// Stored key and served content type must agree for every supported
// upload format.
func TestKeyRoundTrip(t *testing.T) {
	for contentType := range audioExtensions {
		key := objectKey(1, contentType)
		served := ContentTypeForKey(key)
		if audioExtensions[served] != audioExtensions[contentType] {
			t.Errorf("content type %q stored as %q but served as %q", contentType, key, served)
		}
	}
}
