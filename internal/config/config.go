package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Debug   DebugConfig   `mapstructure:"debug"`
	Log     LogConfig     `mapstructure:"log"`
	Scripts ScriptsConfig `mapstructure:"scripts"`
	Capture CaptureConfig `mapstructure:"capture"`
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Title     string `mapstructure:"title"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Resizable bool   `mapstructure:"resizable"`
	TPS       int    `mapstructure:"tps"`
}

// DebugConfig toggles frame timing logs and the fps overlay.
type DebugConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Canvas  bool `mapstructure:"canvas"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ScriptsConfig locates the programs compiled into the preload table.
type ScriptsConfig struct {
	Main       string `mapstructure:"main"`
	PreloadDir string `mapstructure:"preload_dir"`
}

// CaptureConfig holds offline rendering settings.
type CaptureConfig struct {
	Dir        string `mapstructure:"dir"`
	EveryFrame bool   `mapstructure:"every_frame"`
	TestScript string `mapstructure:"test_script"`
	Headless   bool   `mapstructure:"headless"`
	MaxFrames  int    `mapstructure:"max_frames"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"width":       "window.width",
	"height":      "window.height",
	"title":       "window.title",
	"debug":       "debug.enabled",
	"fps":         "debug.canvas",
	"log-level":   "log.level",
	"script":      "scripts.main",
	"preload-dir": "scripts.preload_dir",
	"capture-dir": "capture.dir",
	"test-script": "capture.test_script",
	"headless":    "capture.headless",
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("frontend", pflag.ContinueOnError)
	fs.Int("width", 0, "window width")
	fs.Int("height", 0, "window height")
	fs.String("title", "", "window title")
	fs.Bool("debug", false, "log per-frame timings")
	fs.Bool("fps", false, "show the fps overlay")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("script", "", "main script file")
	fs.String("preload-dir", "", "directory of scripts to preload")
	fs.String("capture-dir", "", "directory for PNG captures")
	fs.String("test-script", "", "JSON test script to run")
	fs.Bool("headless", false, "run the test script without a window")
	return fs
}

// Load reads configuration from defaults, file, env and flags, in increasing
// priority. Env var overrides use prefix FRONTEND_. fs may be nil; only flags
// that were set override other sources.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("window.title", "frontend")
	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 768)
	v.SetDefault("window.resizable", true)
	v.SetDefault("window.tps", 60)
	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.canvas", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("scripts.main", "")
	v.SetDefault("scripts.preload_dir", "")
	v.SetDefault("capture.dir", "captures")
	v.SetDefault("capture.every_frame", false)
	v.SetDefault("capture.test_script", "")
	v.SetDefault("capture.headless", false)
	v.SetDefault("capture.max_frames", 10000)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("FRONTEND_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "frontend"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FRONTEND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return Config{}, fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return c, nil
}

// LogLevel returns the parsed log level, info when unset.
func (c Config) LogLevel() zerolog.Level {
	l, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
