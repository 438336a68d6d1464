// Package storage uploads media to the remote store that hosts post images
// and videos. Swap backends by changing the concrete type injected at startup:
// MinioStorage works with any S3-compatible provider, CloudinaryStorage with
// the Cloudinary CDN.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUploadFailed is wrapped by every error returned from Upload.
var ErrUploadFailed = errors.New("media upload failed")

// UploadOptions controls how the remote store names and labels an object.
type UploadOptions struct {
	// UniqueFileName appends a random suffix so uploads never collide.
	UniqueFileName bool
	Tags           []string
	ContentType    string
}

// UploadResult describes a stored object.
type UploadResult struct {
	URL        string
	Name       string
	StatusCode int
}

//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock.go -package=mocks

// Storage uploads local files to the media store.
type Storage interface {
	// Upload sends the file at path to the store under fileName.
	Upload(ctx context.Context, path, fileName string, opts UploadOptions) (*UploadResult, error)
}

// objectName derives the stored name from the caller's filename.
// With unique set, "cat.png" becomes "cat_1a2b3c4d.png".
func objectName(fileName string, unique bool) string {
	base := filepath.Base(fileName)
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	base = strings.ReplaceAll(base, " ", "_")
	if !unique {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + ext
}
