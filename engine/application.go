package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer"
)

type RendererConfig struct {
	SortObjects bool       `toml:"sort_objects" yaml:"sort_objects"`
	AutoClear   bool       `toml:"auto_clear" yaml:"auto_clear"`
	ClearColor  [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

type ApplicationConfig struct {
	// The application name handed to the backend.
	Name string `toml:"name" yaml:"name"`
	// Starting surface width.
	StartWidth uint32 `toml:"start_width" yaml:"start_width"`
	// Starting surface height.
	StartHeight uint32 `toml:"start_height" yaml:"start_height"`
	// One of debug, info, warn, error, fatal.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Directory indexed by the asset manager. `~` is expanded.
	AssetDir string `toml:"asset_dir" yaml:"asset_dir"`
	// Asset decoding workers.
	Workers      int `toml:"workers" yaml:"workers"`
	JobQueueSize int `toml:"job_queue_size" yaml:"job_queue_size"`
	// Stop after this many frames, 0 runs until Shutdown.
	MaxFrames uint64         `toml:"max_frames" yaml:"max_frames"`
	Renderer  RendererConfig `toml:"renderer" yaml:"renderer"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	rc := renderer.DefaultConfig()
	return &ApplicationConfig{
		Name:         "FFEngine",
		StartWidth:   1280,
		StartHeight:  720,
		LogLevel:     "info",
		Workers:      2,
		JobQueueSize: 16,
		Renderer: RendererConfig{
			SortObjects: rc.SortObjects,
			AutoClear:   rc.AutoClear,
			ClearColor:  rc.ClearColor,
		},
	}
}

// Decoder is the part of the toml and yaml decoders the loader needs.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder reading from r.
type DecoderFunc func(r io.Reader) Decoder

func NewDecoderFunc[T Decoder](f func(r io.Reader) T) DecoderFunc {
	return func(r io.Reader) Decoder { return f(r) }
}

var configDecoders = map[string]DecoderFunc{
	".toml": NewDecoderFunc(toml.NewDecoder),
	".yaml": NewDecoderFunc(yaml.NewDecoder),
	".yml":  NewDecoderFunc(yaml.NewDecoder),
}

/**
 * @brief Reads an application config from a toml or yaml file, picked by
 * extension. Fields missing from the file keep their default value.
 */
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	decoder, ok := configDecoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownConfigFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config := DefaultApplicationConfig()
	if err := decoder(bufio.NewReader(f)).Decode(config); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("start size must be positive, got %dx%d", c.StartWidth, c.StartHeight)
	}
	if c.Workers < 0 || c.JobQueueSize < 0 {
		return fmt.Errorf("workers and job queue size must not be negative")
	}
	return nil
}

func (c *ApplicationConfig) RendererSettings() renderer.Config {
	return renderer.Config{
		SortObjects: c.Renderer.SortObjects,
		AutoClear:   c.Renderer.AutoClear,
		ClearColor:  mgl32.Vec4(c.Renderer.ClearColor),
	}
}

func (c *ApplicationConfig) Level() core.LogLevel {
	return core.ParseLogLevel(c.LogLevel)
}
