package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the YAML file when no path is given.
const DefaultPath = "config/config.yaml"

// ErrMissingToken is returned when no chat platform token is configured.
var ErrMissingToken = errors.New("TELEGRAM_TOKEN environment variable not set: export TELEGRAM_TOKEN=<bot token> or add it to .env (BotFather issues the token)")

// Config represents the application configuration
type Config struct {
	Telegram struct {
		Token         string `yaml:"token"`
		APIEndpoint   string `yaml:"api_endpoint"`
		Mode          string `yaml:"mode" validate:"oneof=polling webhook"`
		WebhookURL    string `yaml:"webhook_url" validate:"required_if=Mode webhook"`
		WebhookSecret string `yaml:"webhook_secret" validate:"required_if=Mode webhook"`
		PollTimeout   int    `yaml:"poll_timeout" validate:"gte=0"`
	} `yaml:"telegram"`

	Server struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port" validate:"gte=0,lte=65535"`
		Host    string `yaml:"host"`
	} `yaml:"server"`

	Whisper struct {
		Engine         string `yaml:"engine" validate:"oneof=cli http"`
		Command        string `yaml:"command"`
		Model          string `yaml:"model" validate:"required"`
		Device         string `yaml:"device"`
		APIURL         string `yaml:"api_url" validate:"required_if=Engine http"`
		APIKey         string `yaml:"api_key"`
		TimeoutMinutes int    `yaml:"timeout_minutes" validate:"gte=0"`
	} `yaml:"whisper"`

	Translation struct {
		Provider        string `yaml:"provider" validate:"oneof=google none"`
		APIKey          string `yaml:"api_key"`
		CredentialsFile string `yaml:"credentials_file"`
		SourceLanguage  string `yaml:"source_language" validate:"required"`
		TargetLanguage  string `yaml:"target_language" validate:"required"`
		Concurrency     int    `yaml:"concurrency" validate:"gte=1,lte=64"`
	} `yaml:"translation"`

	FFmpeg struct {
		Path   string `yaml:"path" validate:"required"`
		Preset string `yaml:"preset"`
	} `yaml:"ffmpeg"`

	Subtitles struct {
		Style SubtitleStyle `yaml:"style"`
	} `yaml:"subtitles"`

	Workers struct {
		Count     int `yaml:"count" validate:"gte=1"`
		QueueSize int `yaml:"queue_size" validate:"gte=1"`
	} `yaml:"workers"`

	Storage struct {
		TempDir  string `yaml:"temp_dir" validate:"required"`
		Database string `yaml:"database" validate:"required"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes" validate:"gte=1"`
		MaxAgeHours     int `yaml:"max_age_hours" validate:"gte=1"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxVideoSizeMB int `yaml:"max_video_size_mb" validate:"gte=1"`
	} `yaml:"limits"`

	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=auto json text"`
	} `yaml:"log"`
}

// SubtitleStyle is the fixed look of burned-in subtitles, in ASS force_style terms.
type SubtitleStyle struct {
	FontName      string `yaml:"font_name" validate:"required"`
	FontSize      int    `yaml:"font_size" validate:"gte=1"`
	PrimaryColour string `yaml:"primary_colour" validate:"required"`
	OutlineColour string `yaml:"outline_colour" validate:"required"`
	Outline       int    `yaml:"outline" validate:"gte=0"`
	Bold          bool   `yaml:"bold"`
}

// MaxVideoBytes is the inbound size ceiling in bytes.
func (c *Config) MaxVideoBytes() int64 {
	return int64(c.Limits.MaxVideoSizeMB) * 1024 * 1024
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	var cfg Config

	cfg.Telegram.Mode = "polling"
	cfg.Telegram.PollTimeout = 60

	cfg.Server.Enabled = true
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080

	cfg.Whisper.Engine = "cli"
	cfg.Whisper.Command = "python"
	cfg.Whisper.Model = "base"
	cfg.Whisper.Device = "cpu"
	cfg.Whisper.TimeoutMinutes = 30

	cfg.Translation.Provider = "google"
	cfg.Translation.SourceLanguage = "en"
	cfg.Translation.TargetLanguage = "he"
	cfg.Translation.Concurrency = 4

	cfg.FFmpeg.Path = "ffmpeg"
	cfg.FFmpeg.Preset = "fast"

	cfg.Subtitles.Style = SubtitleStyle{
		FontName:      "Arial",
		FontSize:      24,
		PrimaryColour: "&HFFFFFF",
		OutlineColour: "&H000000",
		Outline:       2,
		Bold:          true,
	}

	cfg.Workers.Count = 2
	cfg.Workers.QueueSize = 16

	cfg.Storage.TempDir = "temp_files"
	cfg.Storage.Database = "data/jobs.db"

	cfg.Cleanup.IntervalMinutes = 30
	cfg.Cleanup.MaxAgeHours = 6

	cfg.Limits.MaxVideoSizeMB = 50

	cfg.Log.Level = "info"
	cfg.Log.Format = "auto"

	return &cfg
}

// Load reads and validates the configuration.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds the configuration from defaults, the optional YAML file at path,
// an optional .env file and the process environment, in that order. It does
// not validate, so offline commands can run without a bot token.
func Read(path string) (*Config, error) {
	// .env is optional; system env still applies without it
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Validate checks the bot token, then everything ValidateSettings checks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	return c.ValidateSettings()
}

// ValidateSettings checks ranges, required values and language tags but not
// the bot token. Offline commands use it.
func (c *Config) ValidateSettings() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, tag := range []string{c.Translation.SourceLanguage, c.Translation.TargetLanguage} {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("invalid config: language %q: %w", tag, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
	setString(&cfg.Telegram.WebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
	setString(&cfg.Translation.APIKey, "GOOGLE_TRANSLATE_API_KEY")
	setString(&cfg.Translation.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.Whisper.Model, "WHISPER_MODEL")
	setString(&cfg.Whisper.APIKey, "WHISPER_API_KEY")
	setString(&cfg.Storage.TempDir, "TEMP_DIR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setInt(&cfg.Workers.Count, "WORKER_COUNT")
	setInt(&cfg.Limits.MaxVideoSizeMB, "MAX_VIDEO_SIZE_MB")
	setInt(&cfg.Server.Port, "HTTP_PORT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
