package post

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUploadFailed is wrapped by every *UploadError.
	ErrUploadFailed = errors.New("upload failed")
	// ErrNotFound is returned when a post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrForbidden is returned when the caller does not own the post.
	ErrForbidden = errors.New("permission denied")
	// ErrMalformedID is returned when a post id is not a valid UUID.
	ErrMalformedID = errors.New("malformed post id")
)

// UploadError reports which step of the upload pipeline failed.
type UploadError struct {
	Step string // "stage", "store" or "persist"
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed at %s: %v", e.Step, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}
