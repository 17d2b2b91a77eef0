package oaih

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriter writes to a temporary file and moves it into place on Close.
// Readers of the target never observe a partial harvest. With compression
// enabled, everything written is gzipped on the fly.
type AtomicWriter struct {
	filename string
	file     *os.File
	bw       *bufio.Writer
	gz       *gzip.Writer
}

// CreateAtomic creates a writer for filename. Missing directories are
// created along the way. With compress, content is gzipped as written.
func CreateAtomic(filename string, compress bool) (*AtomicWriter, error) {
	dir := filepath.Dir(filename)
	if err := mkdirAll(dir); err != nil {
		return nil, err
	}
	// The temporary file lives next to the target, so the final rename
	// never crosses a filesystem boundary.
	file, err := os.CreateTemp(dir, filepath.Base(filename)+"-")
	if err != nil {
		return nil, err
	}
	w := &AtomicWriter{filename: filename, file: file, bw: bufio.NewWriter(file)}
	if compress {
		w.gz = gzip.NewWriter(w.bw)
	}
	return w, nil
}

// Name returns the target filename.
func (w *AtomicWriter) Name() string {
	return w.filename
}

func (w *AtomicWriter) Write(p []byte) (n int, err error) {
	if w.gz != nil {
		return w.gz.Write(p)
	}
	return w.bw.Write(p)
}

// Close flushes everything and moves the file into place.
func (w *AtomicWriter) Close() error {
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return err
	}
	return os.Rename(w.file.Name(), w.filename)
}

// Abort discards everything written so far and removes the temporary file.
// The target stays untouched.
func (w *AtomicWriter) Abort() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	return os.Remove(w.file.Name())
}

// WriteFileAtomic writes data to filename via a temporary file and a final
// rename.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	w, err := CreateAtomic(filename, false)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return os.Chmod(filename, perm)
}

// mkdirAll ensures a path exists and is a directory.
func mkdirAll(dir string) error {
	fi, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
