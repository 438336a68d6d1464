// Package staging copies inbound upload streams to scoped temporary files so
// the media store can read them by path.
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Prefix is prepended to every staged file name. The janitor only touches
// files carrying it.
const Prefix = "mediafeed-upload-"

// File is a staged upload. It is owned by exactly one request.
type File struct {
	Path string
}

// Buffer stages uploads into Dir, or the OS temp dir when Dir is empty.
type Buffer struct {
	Dir string
}

// NewBuffer creates a Buffer rooted at dir.
func NewBuffer(dir string) *Buffer {
	return &Buffer{Dir: dir}
}

// Stage copies r into a new uniquely named temporary file that keeps the
// extension of filename. On error no file is left behind.
func (b *Buffer) Stage(r io.Reader, filename string) (*File, error) {
	if b.Dir != "" {
		if err := os.MkdirAll(b.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(b.Dir, Prefix+"*"+extension(filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	f := &File{Path: tmp.Name()}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = f.Release()
		return nil, fmt.Errorf("copy upload stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.Release()
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return f, nil
}

// With stages r, runs fn with the staged path and releases the file on every
// exit path, including a panic in fn.
func (b *Buffer) With(r io.Reader, filename string, fn func(path string) error) (err error) {
	f, err := b.Stage(r, filename)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(f.Path)
}

// Release removes the staged file. Releasing twice is not an error.
func (f *File) Release() error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// extension returns the filename's extension, dropping anything that could
// escape the CreateTemp pattern.
func extension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if strings.ContainsAny(ext, `/\*`) {
		return ""
	}
	return ext
}
