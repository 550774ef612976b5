package disklist

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Belval/disklist/codec"
	"github.com/Belval/disklist/monitoring"
	pebblestore "github.com/Belval/disklist/store/pebble"
)

// Config is the file form of a list's options.
type Config struct {
	CacheSize int          `yaml:"cache_size"` // Elements per iterator window
	Dir       string       `yaml:"dir"`        // Location hint for on-disk backends
	Backend   string       `yaml:"backend"`    // file, pebble or memory
	Codec     string       `yaml:"codec"`      // gob or cbor
	Compress  bool         `yaml:"compress"`   // zstd around the codec
	LogLevel  string       `yaml:"log_level"`  // Console logging when set
	Pebble    PebbleConfig `yaml:"pebble"`
}

type PebbleConfig struct {
	CacheSize    int64  `yaml:"cache_size"`
	MemTableSize uint64 `yaml:"memtable_size"`
}

// DefaultConfig returns the configuration New uses without options.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Codec:   codec.NameGob,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("disklist: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("disklist: parse config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if cfg.Codec == "" {
		cfg.Codec = codec.NameGob
	}
}

// Options converts the config into list options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithCacheSize(c.CacheSize),
		WithDir(c.Dir),
		WithBackend(c.Backend),
	}

	if c.Pebble != (PebbleConfig{}) {
		opts = append(opts, WithPebbleOptions(&pebblestore.Options{
			CacheSize:    c.Pebble.CacheSize,
			MemTableSize: c.Pebble.MemTableSize,
		}))
	}

	if c.LogLevel != "" {
		level, err := monitoring.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("disklist: log_level: %w", err)
		}
		opts = append(opts, WithLogger(monitoring.NewConsole(nil, level)))
	}

	return opts, nil
}

// NewFromConfig creates a list configured by cfg, picking the codec by
// name. opts are applied after the config's own options.
func NewFromConfig[T any](cfg Config, opts ...Option) (*List[T], error) {
	applyDefaults(&cfg)

	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	c, err := codec.ByName[T](cfg.Codec, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("disklist: %w", err)
	}
	if closer, ok := c.(io.Closer); ok {
		cfgOpts = append(cfgOpts, withCloser(closer))
	}

	return New(c, append(cfgOpts, opts...)...)
}
