package wavio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
)

// Container is an opened WAVE stream split into one ChannelStream per
// resolved channel position.
//
// A container opened by path gives every channel its own file handle, so its
// channels may be driven from separate goroutines. A container over a
// caller-owned stream serialises all access to that stream; each channel is
// still confined to a single goroutine.
type Container struct {
	header   Header
	path     string
	ctl      source
	writable bool
	cfg      config

	// growMu serialises payload growth so concurrent channels never truncate
	// each other's writes.
	growMu  sync.Mutex
	dataLen atomic.Int64

	streams []*ChannelStream
	byPos   map[ChannelPosition]*ChannelStream
	closed  bool
}

// Open opens the WAVE file at path. Each channel stream opens its own handle
// on the file. Use WithReadWrite to allow writes.
func Open(path string, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return openPath(path, cfg, false)
}

// Create writes a header for h to a new file at path, truncating any
// existing file, and returns a writable container with an empty payload.
// h.AudioLength is ignored. A zero h.ChannelMask selects the inferred mask.
func Create(path string, h Header, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	hdr, err := encodeNewHeader(&h)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, hdr, 0o644); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cfg.readWrite = true

	return openPath(path, cfg, true)
}

// NewContainer reads a WAVE header from rs and returns a container whose
// channels share rs. The caller keeps ownership of rs; Close never closes
// it. Writes are allowed when rs also implements io.Writer.
func NewContainer(rs io.ReadSeeker, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newSharedContainer(rs, cfg)
}

// CreateStream writes a header for h at the start of ws and returns a
// writable container over it. ws should be empty.
func CreateStream(ws io.ReadWriteSeeker, h Header, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	hdr, err := encodeNewHeader(&h)
	if err != nil {
		return nil, err
	}

	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	if _, err := ws.Write(hdr); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return newSharedContainer(ws, cfg)
}

func encodeNewHeader(h *Header) ([]byte, error) {
	h.AudioLength = 0
	if h.ValidBits == 0 {
		h.ValidBits = h.BitDepth
	}

	if h.ChannelMask == 0 {
		h.ChannelMask = DefaultMask(h.Channels)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	if _, err := newSampleCodec(h); err != nil {
		return nil, err
	}

	return EncodeHeader(h)
}

func openPath(path string, cfg config, created bool) (*Container, error) {
	f, err := openFile(path, cfg.readWrite)
	if err != nil {
		return nil, err
	}

	c, err := newContainer(&fileSource{f: f}, cfg, cfg.readWrite)
	if err != nil {
		f.Close()

		if created {
			os.Remove(path)
		}

		return nil, err
	}

	c.path = path

	err = c.buildStreams(func() (source, bool, error) {
		cf, err := openFile(path, cfg.readWrite)
		if err != nil {
			return nil, false, err
		}

		return &fileSource{f: cf}, true, nil
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func openFile(path string, readWrite bool) (*os.File, error) {
	flag := os.O_RDONLY
	if readWrite {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return f, nil
}

func newSharedContainer(rs io.ReadSeeker, cfg config) (*Container, error) {
	shared := newSharedSource(rs)

	c, err := newContainer(shared, cfg, shared.writable())
	if err != nil {
		return nil, err
	}

	err = c.buildStreams(func() (source, bool, error) {
		return shared, false, nil
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func newContainer(ctl source, cfg config, writable bool) (*Container, error) {
	size, err := ctl.size()
	if err != nil {
		return nil, err
	}

	if size > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, math.MaxInt32)
	}

	probe := make([]byte, min(size, HeaderProbeSize))

	n, err := ctl.ReadAt(probe, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	h, err := ParseHeader(probe[:n])
	if err != nil {
		return nil, err
	}

	if int64(h.DataOffset) > size {
		return nil, fmt.Errorf("%w: data chunk header truncated", ErrUnrecognisedFormat)
	}

	if _, err := newSampleCodec(h); err != nil {
		return nil, err
	}

	h.AudioLength = uint32(size - int64(h.DataOffset))

	c := &Container{
		header:   *h,
		ctl:      ctl,
		writable: writable,
		cfg:      cfg,
		byPos:    make(map[ChannelPosition]*ChannelStream),
	}
	c.dataLen.Store(int64(h.AudioLength))

	return c, nil
}

// buildStreams creates one stream per mask position whose rank fits the
// channel count. The rank is the channel's interleaved slot.
func (c *Container) buildStreams(open func() (source, bool, error)) error {
	for slot, pos := range c.header.ChannelMask.Positions() {
		if slot >= int(c.header.Channels) {
			break
		}

		src, owned, err := open()
		if err != nil {
			return err
		}

		s, err := newChannelStream(c, pos, slot, src, owned)
		if err != nil {
			if owned {
				src.close()
			}

			return err
		}

		c.streams = append(c.streams, s)
		c.byPos[pos] = s
	}

	return nil
}

// Header returns the container's header with AudioLength reflecting the
// current payload.
func (c *Container) Header() Header {
	h := c.header
	h.AudioLength = uint32(c.dataLen.Load())

	return h
}

// Format returns the container's channel count and sample rate.
func (c *Container) Format() *audio.Format {
	return &audio.Format{
		NumChannels: int(c.header.Channels),
		SampleRate:  int(c.header.SampleRate),
	}
}

// Path returns the file path for containers opened by path.
func (c *Container) Path() string {
	return c.path
}

// Writable reports whether the container accepts writes.
func (c *Container) Writable() bool {
	return c.writable
}

// Channels returns the channel streams in resolution order.
func (c *Container) Channels() []*ChannelStream {
	return append([]*ChannelStream(nil), c.streams...)
}

// Positions returns the resolved positions in resolution order.
func (c *Container) Positions() []ChannelPosition {
	out := make([]ChannelPosition, len(c.streams))
	for i, s := range c.streams {
		out[i] = s.position
	}

	return out
}

// Channel returns the stream for pos.
func (c *Container) Channel(pos ChannelPosition) (*ChannelStream, error) {
	if c.closed {
		return nil, ErrClosed
	}

	s, ok := c.byPos[pos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingChannel, pos)
	}

	return s, nil
}

// HasChannel reports whether the container carries pos.
func (c *Container) HasChannel(pos ChannelPosition) bool {
	_, ok := c.byPos[pos]
	return ok
}

// Frames returns the number of complete frames in the payload.
func (c *Container) Frames() int64 {
	return c.dataLen.Load() / int64(c.header.BlockAlign())
}

// Duration returns the playback length of the payload.
func (c *Container) Duration() time.Duration {
	return framesDuration(c.Frames(), int(c.header.SampleRate))
}

// growTo makes sure the payload covers end bytes.
func (c *Container) growTo(end int64) error {
	c.growMu.Lock()
	defer c.growMu.Unlock()

	if end <= c.dataLen.Load() {
		return nil
	}

	if int64(c.header.DataOffset)+end > math.MaxInt32 {
		return fmt.Errorf("%w: payload of %d bytes", ErrFileTooLarge, end)
	}

	if err := c.ctl.grow(int64(c.header.DataOffset) + end); err != nil {
		return err
	}

	c.dataLen.Store(end)

	return nil
}

// Close flushes every channel, updates the chunk sizes of writable
// containers and releases all handles the container opened. Closing twice is
// a no-op.
func (c *Container) Close() error {
	if c == nil || c.closed {
		return nil
	}

	c.closed = true

	var errs []error

	for _, s := range c.streams {
		errs = append(errs, s.Close())
	}

	if c.writable {
		errs = append(errs, patchSizes(c.ctl, c.header.DataOffset, c.dataLen.Load()))
	}

	errs = append(errs, c.ctl.close())

	return errors.Join(errs...)
}
