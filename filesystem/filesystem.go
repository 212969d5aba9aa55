// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library to allow switching between OS-level and in-memory backends,
// which keeps book loading, audio staging and history persistence testable without touching disk.
package filesystem

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// RandomAccess is a file opened for random reads, as required by archive readers.
type RandomAccess interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

type randomAccess struct {
	afero.File
	size int64
}

func (r randomAccess) Size() int64 { return r.size }

// OpenRandomAccess opens path for random access reads and reports its size.
func OpenRandomAccess(path string) (RandomAccess, error) {
	f, err := API().Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return randomAccess{File: f, size: info.Size()}, nil
}
