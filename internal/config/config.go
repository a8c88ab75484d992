package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	Gemini     GeminiConfig     `yaml:"gemini"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Compose    ComposeConfig    `yaml:"compose"`
	Server     ServerConfig     `yaml:"server"`
}

// GeminiConfig configures the Gemini collaborator used for vision
// analysis, script planning and thumbnail image generation. The API key
// comes from the environment, never from the config file.
type GeminiConfig struct {
	BaseURL     string        `yaml:"base_url"`
	TextModel   string        `yaml:"text_model"`
	VisionModel string        `yaml:"vision_model"`
	ImageModel  string        `yaml:"image_model"`
	Timeout     time.Duration `yaml:"timeout"`
	AnalysisFPS float64       `yaml:"analysis_fps"`
}

// APIKey reads the Gemini credential from the environment.
func (c GeminiConfig) APIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

// ElevenLabsConfig configures the generative-audio collaborator.
type ElevenLabsConfig struct {
	BaseURL      string        `yaml:"base_url"`
	OutputFormat string        `yaml:"output_format"`
	VoiceID      string        `yaml:"voice_id"`
	SpeechModel  string        `yaml:"speech_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// APIKey reads the ElevenLabs credential from the environment.
func (c ElevenLabsConfig) APIKey() string {
	return os.Getenv("ELEVENLABS_API_KEY")
}

type FFmpegConfig struct {
	Threads int    `yaml:"threads"`
	Preset  string `yaml:"preset"`
	CRF     int    `yaml:"crf"`
}

// ComposeConfig holds timeline composition knobs.
type ComposeConfig struct {
	TransitionDuration time.Duration `yaml:"transition_duration"`
	DurationTolerance  float64       `yaml:"duration_tolerance"`
	DefaultMusicVolume float64       `yaml:"default_music_volume"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		TempDir:     os.TempDir(),
		Concurrency: 5,
		Gemini: GeminiConfig{
			BaseURL:     "https://generativelanguage.googleapis.com",
			TextModel:   "gemini-2.5-flash-lite",
			VisionModel: "gemini-2.5-flash-lite",
			ImageModel:  "gemini-2.5-flash-image",
			Timeout:     120 * time.Second,
			AnalysisFPS: 2.0,
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL:      "https://api.elevenlabs.io",
			OutputFormat: "mp3_44100_128",
			VoiceID:      "21m00Tcm4TlvDq8ikWAM",
			SpeechModel:  "eleven_multilingual_v2",
			Timeout:      120 * time.Second,
		},
		FFmpeg: FFmpegConfig{
			Threads: 0,
			Preset:  "medium",
			CRF:     23,
		},
		Compose: ComposeConfig{
			TransitionDuration: 500 * time.Millisecond,
			DurationTolerance:  5.0,
			DefaultMusicVolume: 0.5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".reelforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
