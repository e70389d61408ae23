package wavio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/wavio/sample"
)

// ChannelStream reads and writes the samples of one channel of a Container.
// It keeps its own frame cursor and buffers, so streams of the same container
// do not disturb each other. A ChannelStream must not be used from more than
// one goroutine at a time.
type ChannelStream struct {
	c        *Container
	src      source
	owned    bool
	position ChannelPosition
	slot     int

	codec      sampleCodec
	sampleSize int
	blockAlign int
	dataOffset int64

	cursor int64

	// read-ahead: whole interleaved frames starting at rstart
	rbuf    []byte
	rstart  int64
	rframes int

	// write-behind: this channel's encoded samples for frames starting at wstart
	wbuf   []byte
	wstart int64
	wcount int

	closed bool
}

func newChannelStream(c *Container, pos ChannelPosition, slot int, src source, owned bool) (*ChannelStream, error) {
	codec, err := newSampleCodec(&c.header)
	if err != nil {
		return nil, err
	}

	blockAlign := c.header.BlockAlign()
	readFrames := max(1, c.cfg.bufferCapacity/blockAlign)
	writeSamples := max(1, c.cfg.bufferCapacity/codec.size())

	return &ChannelStream{
		c:          c,
		src:        src,
		owned:      owned,
		position:   pos,
		slot:       slot,
		codec:      codec,
		sampleSize: codec.size(),
		blockAlign: blockAlign,
		dataOffset: int64(c.header.DataOffset),
		rbuf:       make([]byte, readFrames*blockAlign),
		wbuf:       make([]byte, writeSamples*codec.size()),
	}, nil
}

// Position returns the speaker position this stream carries.
func (s *ChannelStream) Position() ChannelPosition {
	return s.position
}

// Slot returns the interleaved index of the channel inside a frame.
func (s *ChannelStream) Slot() int {
	return s.slot
}

// Frame returns the cursor, in frames from the start of the payload.
func (s *ChannelStream) Frame() int64 {
	return s.cursor
}

// Len returns the number of samples in the channel, including buffered
// writes.
func (s *ChannelStream) Len() int64 {
	frames := s.c.Frames()
	if s.wcount > 0 {
		frames = max(frames, s.wstart+int64(s.wcount))
	}

	return frames
}

// Remaining returns the number of samples between the cursor and the end of
// the channel.
func (s *ChannelStream) Remaining() int64 {
	return max(0, s.Len()-s.cursor)
}

// Seek moves the cursor to frame. Seeking past the end is allowed; reads
// there fail with ErrEndOfStream and writes extend the payload.
func (s *ChannelStream) Seek(frame int64) error {
	if s.closed {
		return ErrClosed
	}

	if frame < 0 {
		return fmt.Errorf("%w: negative frame %d", ErrArgumentRange, frame)
	}

	s.cursor = frame

	return nil
}

// SeekTime moves the cursor to the frame at offset d.
func (s *ChannelStream) SeekTime(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative offset %s", ErrArgumentRange, d)
	}

	return s.Seek(framesFromDuration(d, int(s.c.header.SampleRate)))
}

// Rewind moves the cursor back to the first frame.
func (s *ChannelStream) Rewind() error {
	return s.Seek(0)
}

// Read returns the next n samples of the channel converted to T. If fewer
// than n samples remain it fails with ErrEndOfStream and leaves the cursor
// unchanged.
func Read[T sample.Type](s *ChannelStream, n int) (sample.Buffer[T], error) {
	if err := s.beginRead(n); err != nil {
		return nil, err
	}

	if left := s.Remaining(); left < int64(n) {
		return nil, fmt.Errorf("%w: %d samples requested, %d left", ErrEndOfStream, n, left)
	}

	return readSamples[T](s, n)
}

// ReadAvailable returns up to n samples, fewer when the channel ends first.
// It fails with ErrEndOfStream only when no sample is left.
func ReadAvailable[T sample.Type](s *ChannelStream, n int) (sample.Buffer[T], error) {
	if err := s.beginRead(n); err != nil {
		return nil, err
	}

	left := s.Remaining()
	if left == 0 && n > 0 {
		return nil, ErrEndOfStream
	}

	return readSamples[T](s, int(min(int64(n), left)))
}

func readSamples[T sample.Type](s *ChannelStream, n int) (sample.Buffer[T], error) {
	start := s.cursor
	out := make(sample.Buffer[T], n)

	for i := range out {
		b, err := s.sampleAt(s.cursor)
		if err != nil {
			s.cursor = start
			return nil, err
		}

		out[i] = decodeSample[T](s.codec, b)
		s.cursor++
	}

	return out, nil
}

// Write encodes buf at the cursor and advances it. Samples are buffered up to
// the configured capacity; Flush or Close writes them out.
func Write[T sample.Type](s *ChannelStream, buf sample.Buffer[T]) error {
	if s.closed {
		return ErrClosed
	}

	if !s.c.writable {
		return ErrReadOnly
	}

	s.rframes = 0

	for _, v := range buf {
		if s.wcount > 0 && (s.cursor != s.wstart+int64(s.wcount) || s.wcount*s.sampleSize == len(s.wbuf)) {
			if err := s.Flush(); err != nil {
				return err
			}
		}

		if s.wcount == 0 {
			s.wstart = s.cursor
		}

		encodeSample(s.codec, s.wbuf[s.wcount*s.sampleSize:], v)
		s.wcount++
		s.cursor++
	}

	return nil
}

// Flush writes buffered samples to the underlying stream.
func (s *ChannelStream) Flush() error {
	if s.closed {
		return ErrClosed
	}

	return s.flush()
}

func (s *ChannelStream) flush() error {
	if s.wcount == 0 {
		return nil
	}

	end := (s.wstart + int64(s.wcount)) * int64(s.blockAlign)
	if err := s.c.growTo(end); err != nil {
		return err
	}

	slotOffset := int64(s.slot * s.sampleSize)
	base := s.dataOffset + s.wstart*int64(s.blockAlign) + slotOffset

	if s.blockAlign == s.sampleSize {
		if _, err := s.src.WriteAt(s.wbuf[:s.wcount*s.sampleSize], base); err != nil {
			return fmt.Errorf("failed to write %s samples: %w", s.position, err)
		}
	} else {
		for i := range s.wcount {
			b := s.wbuf[i*s.sampleSize : (i+1)*s.sampleSize]
			if _, err := s.src.WriteAt(b, base+int64(i*s.blockAlign)); err != nil {
				return fmt.Errorf("failed to write %s samples: %w", s.position, err)
			}
		}
	}

	s.wcount = 0
	s.rframes = 0

	return nil
}

func (s *ChannelStream) beginRead(n int) error {
	if s.closed {
		return ErrClosed
	}

	if n < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrArgumentRange, n)
	}

	return s.flush()
}

// sampleAt returns the encoded bytes of this channel's sample in frame.
func (s *ChannelStream) sampleAt(frame int64) ([]byte, error) {
	if frame < s.rstart || frame >= s.rstart+int64(s.rframes) {
		if err := s.fill(frame); err != nil {
			return nil, err
		}
	}

	off := int(frame-s.rstart)*s.blockAlign + s.slot*s.sampleSize

	return s.rbuf[off : off+s.sampleSize], nil
}

func (s *ChannelStream) fill(frame int64) error {
	frames := min(int64(len(s.rbuf)/s.blockAlign), s.c.Frames()-frame)
	if frames <= 0 {
		return ErrEndOfStream
	}

	size := int(frames) * s.blockAlign

	n, err := s.src.ReadAt(s.rbuf[:size], s.dataOffset+frame*int64(s.blockAlign))
	if n < size {
		s.rframes = 0

		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return fmt.Errorf("failed to read %s samples: %w", s.position, err)
	}

	s.rstart = frame
	s.rframes = int(frames)

	return nil
}

// Close flushes buffered writes and releases the stream's own file handle.
// Closing twice is a no-op.
func (s *ChannelStream) Close() error {
	if s == nil || s.closed {
		return nil
	}

	err := s.flush()
	s.closed = true

	if s.owned {
		err = errors.Join(err, s.src.close())
	}

	s.rbuf = nil
	s.wbuf = nil

	return err
}
