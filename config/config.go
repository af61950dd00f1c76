// Package config holds the tunables of an easing runtime and loads them from YAML or TOML.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/on-the-ground/easing_ive_go/log"
)

const (
	DefaultQueueSize         = 64
	DefaultInstanceCacheSize = 256
	DefaultValueCacheSize    = 1 << 16
	DefaultBindingCacheSize  = 4096
)

// ValueStore selects the backing store of the value cache.
type ValueStore string

const (
	StoreTrie      ValueStore = "trie"
	StoreRistretto ValueStore = "ristretto"
)

var (
	ErrConfigRead      = zerr.New("failed to read config")
	ErrConfigParse     = zerr.New("failed to parse config")
	ErrConfigFormat    = zerr.New("unsupported config format, expected .yaml, .yml or .toml")
	ErrInvalidStore    = zerr.New("invalid value store, expected 'trie' or 'ristretto'")
	ErrInvalidDuration = zerr.New("invalid eval budget duration")
)

// Config is the tunables of one runtime (one isolation domain).
type Config struct {
	// Contexts is the number of evaluation contexts. default: GOMAXPROCS
	Contexts int `yaml:"contexts" toml:"contexts"`
	// QueueSize is the job buffer of each context. default: 64
	QueueSize int `yaml:"queue_size" toml:"queue_size"`
	// InstanceCacheSize bounds live instances per context. default: 256
	InstanceCacheSize int `yaml:"instance_cache_size" toml:"instance_cache_size"`
	// ValueCacheSize bounds memoized (instance, progress) results. default: 65536
	ValueCacheSize int `yaml:"value_cache_size" toml:"value_cache_size"`
	// BindingCacheSize bounds remembered construction outcomes per runtime. default: 4096
	BindingCacheSize int `yaml:"binding_cache_size" toml:"binding_cache_size"`
	// ValueStore is "trie" (default) or "ristretto".
	ValueStore ValueStore `yaml:"value_store" toml:"value_store"`
	// EvalBudget kills a context whose single invocation runs longer. "" or "0" disables it.
	EvalBudget string `yaml:"eval_budget" toml:"eval_budget"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel log.LogLevel `yaml:"log_level" toml:"log_level"`

	budget time.Duration
}

// Default returns a normalized configuration.
func Default() Config {
	cfg, _ := Config{}.Normalize()
	return cfg
}

// Normalize fills non-positive sizes with defaults and parses the budget.
func (c Config) Normalize() (Config, error) {
	if c.Contexts <= 0 {
		c.Contexts = runtime.GOMAXPROCS(0)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.InstanceCacheSize <= 0 {
		c.InstanceCacheSize = DefaultInstanceCacheSize
	}
	if c.ValueCacheSize <= 0 {
		c.ValueCacheSize = DefaultValueCacheSize
	}
	if c.BindingCacheSize <= 0 {
		c.BindingCacheSize = DefaultBindingCacheSize
	}
	switch c.ValueStore {
	case "":
		c.ValueStore = StoreTrie
	case StoreTrie, StoreRistretto:
	default:
		return c, zerr.With(ErrInvalidStore, "value_store", string(c.ValueStore))
	}
	if c.LogLevel == "" {
		c.LogLevel = log.LogInfo
	}
	c.budget = 0
	if s := strings.TrimSpace(c.EvalBudget); s != "" && s != "0" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return c, zerr.With(ErrInvalidDuration, "eval_budget", s)
		}
		c.budget = d
	}
	return c, nil
}

// Budget is the parsed EvalBudget; zero means unlimited. Valid after Normalize.
func (c Config) Budget() time.Duration {
	return c.budget
}

// WithBudget returns a copy with the evaluation budget set.
func (c Config) WithBudget(d time.Duration) Config {
	c.EvalBudget = d.String()
	c.budget = d
	return c
}

// Load reads a configuration file, choosing the decoder by extension, and normalizes it.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, zerr.With(zerr.Wrap(err, ErrConfigRead.Error()), "path", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	case ".toml":
		_, err = toml.Decode(string(raw), &cfg)
	default:
		return Config{}, zerr.With(ErrConfigFormat, "path", path)
	}
	if err != nil {
		return Config{}, zerr.With(zerr.Wrap(err, ErrConfigParse.Error()), "path", path)
	}
	return cfg.Normalize()
}
