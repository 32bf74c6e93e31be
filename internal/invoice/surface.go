package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSurface opens printable documents as files under a directory, the
// daemon's stand-in for a browser print window.
type FileSurface struct {
	dir string
}

// NewFileSurface returns a surface rooted at dir.
func NewFileSurface(dir string) *FileSurface {
	return &FileSurface{dir: dir}
}

// Open creates the output file for a document. Failure to create the
// directory or file means the surface is blocked.
func (s *FileSurface) Open(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("invoice: open surface: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, name+".html"))
	if err != nil {
		return nil, fmt.Errorf("invoice: open surface: %w", err)
	}
	return f, nil
}
