package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vid2mp3/domain/audio"
)

// DefaultPath is where the config file lives unless overridden
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration.
// Every field has a working default; the file itself is optional.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Google        GoogleConfig        `yaml:"google"`
}

// PathsConfig contains output locations
type PathsConfig struct {
	OutputDirectory string `yaml:"output_directory"`
}

// AudioConfig contains MP3 conversion settings
type AudioConfig struct {
	Bitrate string `yaml:"bitrate"`
	Tag     bool   `yaml:"tag"`
}

// TranscriptionConfig contains transcription settings
type TranscriptionConfig struct {
	Model            string `yaml:"model"`
	ChunkSeconds     int    `yaml:"chunk_seconds"`
	SplitThresholdMB int    `yaml:"split_threshold_mb"`
	MaxChunkMB       int    `yaml:"max_chunk_mb"`
	Concurrency      int    `yaml:"concurrency"`
	Disabled         bool   `yaml:"disabled"`
}

// GoogleConfig contains Google Drive upload settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills zero values with their defaults
func (c *Config) Normalize() {
	if c.Paths.OutputDirectory == "" {
		c.Paths.OutputDirectory = "output"
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = audio.DefaultBitrate
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "mistralai/voxtral-small-24b-2507"
	}
	if c.Transcription.ChunkSeconds == 0 {
		c.Transcription.ChunkSeconds = 300
	}
	if c.Transcription.SplitThresholdMB == 0 {
		c.Transcription.SplitThresholdMB = 5
	}
	if c.Transcription.MaxChunkMB == 0 {
		c.Transcription.MaxChunkMB = 10
	}
	if c.Transcription.Concurrency == 0 {
		c.Transcription.Concurrency = 1
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "drive_token.json"
	}
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
