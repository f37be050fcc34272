// Package config handles editor configuration loading and management.
package config

// Config holds all editor settings.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Window  WindowConfig  `yaml:"window"`
	Brush   BrushConfig   `yaml:"brush"`
	Onion   OnionConfig   `yaml:"onion_skin"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// CanvasConfig holds the equirectangular canvas settings.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
}

// BrushConfig holds the default brush parameters.
type BrushConfig struct {
	Radius     float64 `yaml:"radius"`   // angular radius in radians
	Hardness   float64 `yaml:"hardness"` // falloff start fraction
	Spacing    float64 `yaml:"spacing"`  // stamp spacing as a fraction of radius
	FOVScaling bool    `yaml:"fov_scaling"`
}

// OnionConfig holds onion-skin overlay settings.
type OnionConfig struct {
	Enabled bool    `yaml:"enabled"`
	Before  int     `yaml:"before"`
	After   int     `yaml:"after"`
	Opacity float64 `yaml:"opacity"`
	Wrap    bool    `yaml:"wrap"`
}

// ExportConfig holds frame export settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  2048,
			Height: 1024,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
		},
		Brush: BrushConfig{
			Radius:     0.02,
			Hardness:   0.5,
			Spacing:    0.25,
			FOVScaling: true,
		},
		Onion: OnionConfig{
			Enabled: false,
			Before:  1,
			After:   1,
			Opacity: 0.35,
		},
		Export: ExportConfig{
			Dir:    "export",
			Prefix: "frame",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
