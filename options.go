package disklist

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Belval/disklist/monitoring"
	"github.com/Belval/disklist/store"
	"github.com/Belval/disklist/store/file"
	"github.com/Belval/disklist/store/memory"
	pebblestore "github.com/Belval/disklist/store/pebble"
)

// Backend names understood by WithBackend and the backend config key.
const (
	BackendFile   = "file"
	BackendPebble = "pebble"
	BackendMemory = "memory"
)

// options defines all configuration options for a list.
type options struct {
	// Iteration
	cacheSize int // Elements per iterator window, disabled when <= 0

	// Backing store
	dir     string               // Location hint for on-disk backends
	backend string               // Named backend used when opener is nil
	opener  store.Opener         // Explicit store factory
	pebble  *pebblestore.Options // Tuning for the pebble backend

	// Monitoring
	logger   zerolog.Logger
	registry *monitoring.Registry

	// Resources released with the list
	closers []io.Closer
}

// Option is a function that configures list options.
type Option func(*options)

// WithCacheSize sets how many elements an iterator reads per window. Zero or
// a negative size disables the window and every step reads one element.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithDir sets the directory on-disk backends create their files in.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithBackend selects a backing store by name.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithStore sets the factory the list uses to open its backing store. It
// takes precedence over WithBackend and WithDir.
func WithStore(open store.Opener) Option {
	return func(o *options) {
		o.opener = open
	}
}

// WithPebbleOptions tunes the pebble backend.
func WithPebbleOptions(opts *pebblestore.Options) Option {
	return func(o *options) {
		o.pebble = opts
	}
}

// WithLogger sets the logger list events are written to.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry records list activity into registry, which may be shared
// between lists.
func WithRegistry(registry *monitoring.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// withCloser ties c to the list's lifetime.
func withCloser(c io.Closer) Option {
	return func(o *options) {
		o.closers = append(o.closers, c)
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		cacheSize: 0,
		backend:   BackendFile,
		logger:    zerolog.Nop(),
	}
}

func (o options) storeOpener() (store.Opener, error) {
	if o.opener != nil {
		return o.opener, nil
	}

	switch o.backend {
	case "", BackendFile:
		return file.Opener(o.dir), nil
	case BackendPebble:
		return pebblestore.Opener(o.dir, o.pebble), nil
	case BackendMemory:
		return memory.Open, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, o.backend)
	}
}
