// Package uploader implements the concurrent direct-to-storage upload
// pipeline: classification, credential acquisition, a bounded worker pool
// with retry and requeue, and the mandatory server-side confirmation step.
package uploader

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// File is a caller-owned handle to the bytes being uploaded. The pipeline
// never mutates the underlying data. Open is called once per transfer
// attempt, so the returned reader must be fresh each time.
type File interface {
	Name() string
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
}

// LocalFile adapts a file on disk to the File interface.
type LocalFile struct {
	path        string
	name        string
	size        int64
	contentType string
}

// NewLocalFile stats path and derives the content type from the extension,
// falling back to application/octet-stream.
func NewLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &LocalFile{
		path:        path,
		name:        filepath.Base(path),
		size:        info.Size(),
		contentType: ct,
	}, nil
}

func (f *LocalFile) Name() string        { return f.name }
func (f *LocalFile) Size() int64         { return f.size }
func (f *LocalFile) ContentType() string { return f.contentType }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
