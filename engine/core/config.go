package core

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is looked up in the working directory when no path is given.
const DefaultConfigPath = "vkcore.toml"

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Window      WindowConfig      `toml:"window"`
	Log         LogConfig         `toml:"log"`
	Renderer    RendererConfig    `toml:"renderer"`
}

type ApplicationConfig struct {
	// The application name used for the window title and the Vulkan application info.
	Name string `toml:"name"`
}

type WindowConfig struct {
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RendererConfig struct {
	// Debug enables the validation layer and the debug report callback.
	Debug bool `toml:"debug"`
	// FrameFences makes every frame wait for the previous submission before
	// reusing the swapchain semaphores.
	FrameFences bool `toml:"frame_fences"`
	// ShaderDir is scanned for compiled SPIR-V blobs.
	ShaderDir string `toml:"shader_dir"`
	// ArenaSize is the session arena size in bytes. Zero keeps the built-in size.
	ArenaSize int `toml:"arena_size"`
}

func DefaultConfig() Config {
	return Config{
		Application: ApplicationConfig{Name: "vkcore"},
		Window:      WindowConfig{Width: 1280, Height: 720},
		Log:         LogConfig{Level: "info"},
		Renderer:    RendererConfig{ShaderDir: "shaders"},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. A missing file is not an
// error; unknown keys are.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := DecodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// DecodeConfig overlays the TOML document in data onto cfg.
func DecodeConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func (c Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.ArenaSize < 0 {
		return fmt.Errorf("arena size must not be negative, got %d", c.Renderer.ArenaSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Environment variables that override the config file.
const (
	EnvLogLevel    = "VKCORE_LOG_LEVEL"
	EnvDebug       = "VKCORE_DEBUG"
	EnvFrameFences = "VKCORE_FRAME_FENCES"
	EnvShaderDir   = "VKCORE_SHADER_DIR"
)

// ApplyEnv overrides cfg from the environment. Unset variables are ignored;
// boolean variables accept anything strconv.ParseBool does.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(EnvShaderDir); v != "" {
		cfg.Renderer.ShaderDir = v
	}
	for name, dst := range map[string]*bool{
		EnvDebug:       &cfg.Renderer.Debug,
		EnvFrameFences: &cfg.Renderer.FrameFences,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}
	return nil
}
