// Package config loads the service configuration from an optional YAML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/pymk"
)

// DefaultPath is read when no explicit path is given. Its absence is not an error.
const DefaultPath = "minisocial.yaml"

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Graph   GraphConfig   `yaml:"graph"`
	Suggest SuggestConfig `yaml:"suggest"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type DataConfig struct {
	Edges string `yaml:"edges"`
	Users string `yaml:"users"`
}

type GraphConfig struct {
	InitialCapacity int     `yaml:"initial_capacity"`
	MaxLoad         float64 `yaml:"max_load"`
	DiameterSamples int     `yaml:"diameter_samples"`
}

type SuggestConfig struct {
	K         int           `yaml:"k"`
	Radius    int           `yaml:"radius"`
	Weights   pymk.Weights  `yaml:"weights"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", ReadHeaderTimeout: 5 * time.Second},
		Data:   DataConfig{Edges: "data/sample_edges.csv", Users: "data/users.csv"},
		Graph: GraphConfig{
			InitialCapacity: graph.DefaultCapacity,
			MaxLoad:         graph.DefaultMaxLoad,
			DiameterSamples: graph.DefaultDiameterSamples,
		},
		Suggest: SuggestConfig{
			K:         5,
			Radius:    3,
			Weights:   pymk.DefaultWeights,
			CacheSize: 10_000,
			CacheTTL:  2 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load decodes path over Default, applies environment overrides and
// validates the result. An empty path means DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (c *Config) applyEnv() {
	c.Server.Addr = getenv("MINISOCIAL_ADDR", c.Server.Addr)
	c.Log.Level = getenv("MINISOCIAL_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("MINISOCIAL_LOG_FORMAT", c.Log.Format)
	c.Data.Edges = getenv("MINISOCIAL_EDGES", c.Data.Edges)
	c.Data.Users = getenv("MINISOCIAL_USERS", c.Data.Users)
}

// Validate rejects settings the graph or suggester cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Graph.InitialCapacity < 1:
		return fmt.Errorf("%w: graph.initial_capacity must be >= 1", ErrInvalid)
	case c.Graph.MaxLoad <= 0 || c.Graph.MaxLoad >= 1:
		return fmt.Errorf("%w: graph.max_load must be in (0,1)", ErrInvalid)
	case c.Graph.DiameterSamples < 1:
		return fmt.Errorf("%w: graph.diameter_samples must be >= 1", ErrInvalid)
	case c.Suggest.CacheSize < 0:
		return fmt.Errorf("%w: suggest.cache_size must be >= 0", ErrInvalid)
	}
	return nil
}

// GraphOptions converts the graph section into constructor options.
func (c Config) GraphOptions() []graph.Option {
	return []graph.Option{
		graph.WithCapacity(c.Graph.InitialCapacity),
		graph.WithMaxLoad(c.Graph.MaxLoad),
	}
}

// PYMK converts the suggest section into a service config.
func (c Config) PYMK() pymk.PYMKConfig {
	return pymk.PYMKConfig{
		Weights:   c.Suggest.Weights,
		CacheSize: c.Suggest.CacheSize,
		CacheTTL:  c.Suggest.CacheTTL,
	}
}
