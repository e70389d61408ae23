package wavio

import (
	"errors"
	"io/fs"
)

var (
	// ErrUnrecognisedFormat is returned when a header is missing, malformed
	// or describes a format this package cannot stream. The wrapped message
	// carries the reason.
	ErrUnrecognisedFormat = errors.New("unrecognised format")
	// ErrArgumentRange is returned when a constructor or option receives a
	// value outside its documented bounds.
	ErrArgumentRange = errors.New("argument out of range")
	// ErrMissingChannel is returned when looking up a channel position that
	// the container does not carry.
	ErrMissingChannel = errors.New("channel not present")
	// ErrEndOfStream is returned when a read asks for more samples than the
	// channel has left.
	ErrEndOfStream = errors.New("end of stream")
	// ErrFileTooLarge is returned when a stream is larger than math.MaxInt32
	// bytes.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNotFound is returned when opening a path that does not exist.
	ErrNotFound = notFoundError{}
	// ErrClosed is returned when a container or stream is used after Close.
	ErrClosed = errors.New("use of closed container")
	// ErrReadOnly is returned when writing to a container that was not
	// opened for writing.
	ErrReadOnly = errors.New("container is read-only")
)

type notFoundError struct{}

func (notFoundError) Error() string { return "file not found" }

// Is lets errors.Is(err, fs.ErrNotExist) match ErrNotFound.
func (notFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}
