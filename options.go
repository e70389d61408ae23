package wavio

import "fmt"

const (
	// DefaultBufferCapacity is the per-channel buffer size used when no
	// capacity option is given.
	DefaultBufferCapacity = 64 * 1024
	// MinBufferCapacity is the smallest accepted per-channel buffer size.
	MinBufferCapacity = 1024
)

type config struct {
	bufferCapacity int
	readWrite      bool
}

// Option configures a Container.
type Option func(*config) error

// WithBufferCapacity sets the size in bytes of each channel's read-ahead and
// write-behind buffers. Values below MinBufferCapacity are rejected.
func WithBufferCapacity(n int) Option {
	return func(cfg *config) error {
		if n < MinBufferCapacity {
			return fmt.Errorf("%w: buffer capacity %d is below %d bytes", ErrArgumentRange, n, MinBufferCapacity)
		}

		cfg.bufferCapacity = n

		return nil
	}
}

// WithReadWrite opens path-based containers for writing as well as reading.
func WithReadWrite() Option {
	return func(cfg *config) error {
		cfg.readWrite = true
		return nil
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := config{bufferCapacity: DefaultBufferCapacity}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}

	return cfg, nil
}
