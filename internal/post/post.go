// Package post implements the upload-and-feed pipeline: staging an inbound
// file, forwarding it to the media store, persisting the post, and assembling
// the feed.
package post

import (
	"strings"
	"time"
)

// FileType classifies the uploaded media.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// Post is one uploaded media item. URL and FileName are set once from the
// media store's response and never change.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassifyFileType returns FileTypeVideo when contentType starts with
// "video/" and FileTypeImage otherwise.
func ClassifyFileType(contentType string) FileType {
	if strings.HasPrefix(contentType, "video/") {
		return FileTypeVideo
	}
	return FileTypeImage
}

// sameID compares two canonical UUID strings.
func sameID(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
