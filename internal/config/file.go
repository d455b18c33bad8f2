package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = ".vitrine.yml"

// fileConfig mirrors Config with durations spelled as strings so the written
// file reads back through viper unchanged.
type fileConfig struct {
	Server   ServerConfig `yaml:"server"`
	Carousel struct {
		Interval    string `yaml:"interval"`
		StartPaused bool   `yaml:"start_paused"`
		Strict      bool   `yaml:"strict"`
		Direction   string `yaml:"direction"`
	} `yaml:"carousel"`
	Content struct {
		Path     string `yaml:"path"`
		Watch    bool   `yaml:"watch"`
		Debounce string `yaml:"debounce"`
	} `yaml:"content"`
	Site SiteConfig `yaml:"site"`
}

// Marshal renders c as a YAML configuration file.
func Marshal(c *Config) ([]byte, error) {
	var fc fileConfig
	fc.Server = c.Server
	fc.Carousel.Interval = c.Carousel.Interval.String()
	fc.Carousel.StartPaused = c.Carousel.StartPaused
	fc.Carousel.Strict = c.Carousel.Strict
	fc.Carousel.Direction = c.Carousel.Direction
	fc.Content.Path = c.Content.Path
	fc.Content.Watch = c.Content.Watch
	fc.Content.Debounce = c.Content.Debounce.String()
	fc.Site = c.Site

	body, err := yaml.Marshal(&fc)
	if err != nil {
		return nil, err
	}
	header := "# vitrine configuration file\n\n"
	return append([]byte(header), body...), nil
}

// WriteFile writes c to path. An existing file is kept unless overwrite is set.
func WriteFile(path string, c *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("configuration file %s already exists", path)
	}

	content, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
