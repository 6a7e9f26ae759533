// Package config handles meshtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Parser choices for ".obj" files.
const (
	OBJAsSTL = "stl"
	OBJAsOBJ = "obj"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all meshtool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	View    ViewConfig    `yaml:"view"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoaderConfig controls how model files are parsed.
type LoaderConfig struct {
	OBJParser    string `yaml:"obj_parser"`    // "stl" (default) or "obj"
	NameEncoding string `yaml:"name_encoding"` // charset of names inside model files
}

// ViewConfig holds model-space normalization settings.
type ViewConfig struct {
	BoundSize float32 `yaml:"bound_size"` // largest extent after scaling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			OBJParser:    OBJAsSTL,
			NameEncoding: "utf-8",
		},
		View: ViewConfig{
			BoundSize: 50,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// UseOBJParser reports whether ".obj" files go to the OBJ parser.
func (c *Config) UseOBJParser() bool {
	return c.Loader.OBJParser == OBJAsOBJ
}

// Validate checks values a YAML file or flag could have set wrongly.
func (c *Config) Validate() error {
	switch c.Loader.OBJParser {
	case OBJAsSTL, OBJAsOBJ:
	default:
		return fmt.Errorf("%w: loader.obj_parser must be %q or %q, got %q",
			ErrInvalid, OBJAsSTL, OBJAsOBJ, c.Loader.OBJParser)
	}
	if c.View.BoundSize <= 0 {
		return fmt.Errorf("%w: view.bound_size must be positive, got %v", ErrInvalid, c.View.BoundSize)
	}
	return nil
}
