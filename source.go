package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// source is the byte store behind a container. Offsets are absolute stream
// offsets.
type source interface {
	io.ReaderAt
	io.WriterAt
	size() (int64, error)
	// grow extends the store to at least n bytes with zeros. It never
	// shrinks the store.
	grow(n int64) error
	close() error
}

// fileSource is a handle the container opened itself.
type fileSource struct {
	f *os.File
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) WriteAt(p []byte, off int64) (int, error) {
	return s.f.WriteAt(p, off)
}

func (s *fileSource) size() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", s.f.Name(), err)
	}

	return fi.Size(), nil
}

func (s *fileSource) grow(n int64) error {
	cur, err := s.size()
	if err != nil {
		return err
	}

	if cur >= n {
		return nil
	}

	if err := s.f.Truncate(n); err != nil {
		return fmt.Errorf("failed to extend %s: %w", s.f.Name(), err)
	}

	return nil
}

func (s *fileSource) close() error {
	return s.f.Close()
}

// sharedSource serialises every access to a caller-owned stream so that
// channel streams can borrow one cursor without corrupting it. The stream is
// never closed by the container.
type sharedSource struct {
	mu sync.Mutex
	rs io.ReadSeeker
	w  io.Writer
}

func newSharedSource(rs io.ReadSeeker) *sharedSource {
	s := &sharedSource{rs: rs}
	if w, ok := rs.(io.Writer); ok {
		s.w = w
	}

	return s
}

func (s *sharedSource) writable() bool {
	return s.w != nil
}

func (s *sharedSource) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek: %w", err)
	}

	n, err := io.ReadFull(s.rs, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	return n, err
}

func (s *sharedSource) WriteAt(p []byte, off int64) (int, error) {
	if s.w == nil {
		return 0, ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek: %w", err)
	}

	return s.w.Write(p)
}

func (s *sharedSource) size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sizeLocked()
}

func (s *sharedSource) sizeLocked() (int64, error) {
	n, err := s.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to the end of the stream: %w", err)
	}

	return n, nil
}

func (s *sharedSource) grow(n int64) error {
	if s.w == nil {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.sizeLocked()
	if err != nil {
		return err
	}

	if cur >= n {
		return nil
	}

	if _, err := io.CopyN(s.w, zeroReader{}, n-cur); err != nil {
		return fmt.Errorf("failed to extend the stream: %w", err)
	}

	return nil
}

func (s *sharedSource) close() error {
	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
