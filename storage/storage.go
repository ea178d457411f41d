package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	"MixFM/config"
)

// BlobStore persists uploaded audio payloads keyed by song id. The default
// backend is local disk; MinIO is a drop-in alternative.
type BlobStore interface {
	// Put stores the payload for a song and returns the stored key.
	Put(ctx context.Context, songID int64, r io.Reader, size int64, contentType string) (string, error)
	// Open returns a reader over a stored payload.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes a stored payload. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}

// New constructs the blob store selected by the configuration.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		return NewMinioStore(cfg)
	case "local", "":
		return NewLocalStore(cfg.AudioDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// audioExtensions maps upload content types to stored file extensions.
// Unknown or missing types fall back to .mp3, the dominant upload format.
var audioExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/ogg":    ".ogg",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
}

var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

// objectKey is the canonical key for a song's audio payload. The key
// extension records the uploaded format so it survives without a schema
// column.
func objectKey(songID int64, contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	ext, ok := audioExtensions[contentType]
	if !ok {
		ext = ".mp3"
	}
	return fmt.Sprintf("audio/%d%s", songID, ext)
}

// ContentTypeForKey returns the content type a stored payload should be
// served with, derived from the key's extension.
func ContentTypeForKey(key string) string {
	if ct, ok := audioContentTypes[path.Ext(key)]; ok {
		return ct
	}
	return "audio/mpeg"
}
