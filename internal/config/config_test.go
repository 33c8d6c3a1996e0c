package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultKeepsPolicyValues(t *testing.T) {
	cfg := Default()
	if cfg.Limits.MaxVideoSizeMB != 50 {
		t.Fatalf("max video size = %d, want 50", cfg.Limits.MaxVideoSizeMB)
	}
	if cfg.MaxVideoBytes() != 50*1024*1024 {
		t.Fatalf("max video bytes = %d", cfg.MaxVideoBytes())
	}
	style := cfg.Subtitles.Style
	if style.FontName != "Arial" || style.FontSize != 24 || style.Outline != 2 || !style.Bold {
		t.Fatalf("unexpected default style: %+v", style)
	}
	if style.PrimaryColour != "&HFFFFFF" || style.OutlineColour != "&H000000" {
		t.Fatalf("unexpected default colours: %+v", style)
	}
	if cfg.Translation.SourceLanguage != "en" || cfg.Translation.TargetLanguage != "he" {
		t.Fatalf("unexpected languages: %s -> %s", cfg.Translation.SourceLanguage, cfg.Translation.TargetLanguage)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if !strings.Contains(err.Error(), ".env") {
		t.Errorf("diagnostic should explain how to set the token: %v", err)
	}
}

func TestValidateAcceptsDefaultsWithToken(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateSettingsSkipsToken(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateSettings(); err != nil {
		t.Fatalf("ValidateSettings: %v", err)
	}
	cfg.Workers.QueueSize = 0
	if err := cfg.ValidateSettings(); err == nil {
		t.Fatal("expected queue size error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"worker count":    func(c *Config) { c.Workers.Count = 0 },
		"mode":            func(c *Config) { c.Telegram.Mode = "carrier-pigeon" },
		"webhook url":     func(c *Config) { c.Telegram.Mode = "webhook"; c.Telegram.WebhookSecret = "s" },
		"whisper api url": func(c *Config) { c.Whisper.Engine = "http" },
		"language":        func(c *Config) { c.Translation.TargetLanguage = "not a tag!" },
		"log level":       func(c *Config) { c.Log.Level = "loud" },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.Telegram.Token = "123:abc"
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestReadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
limits:
  max_video_size_mb: 20
subtitles:
  style:
    font_name: "Noto Sans Hebrew"
    font_size: 30
workers:
  count: 3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("WORKER_COUNT", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Limits.MaxVideoSizeMB != 20 {
		t.Errorf("max size = %d, want 20", cfg.Limits.MaxVideoSizeMB)
	}
	if cfg.Subtitles.Style.FontName != "Noto Sans Hebrew" || cfg.Subtitles.Style.FontSize != 30 {
		t.Errorf("style = %+v", cfg.Subtitles.Style)
	}
	// fields absent from the file keep their defaults
	if cfg.Subtitles.Style.OutlineColour != "&H000000" {
		t.Errorf("outline colour = %q", cfg.Subtitles.Style.OutlineColour)
	}
	if cfg.Workers.Count != 5 {
		t.Errorf("env should override file: workers = %d", cfg.Workers.Count)
	}
}

func TestReadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	cfg, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Storage.TempDir != "temp_files" {
		t.Errorf("temp dir = %q", cfg.Storage.TempDir)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_TOKEN", "TELEGRAM_WEBHOOK_SECRET", "GOOGLE_TRANSLATE_API_KEY",
		"GOOGLE_APPLICATION_CREDENTIALS", "WHISPER_MODEL", "WHISPER_API_KEY",
		"TEMP_DIR", "LOG_LEVEL", "LOG_FORMAT", "WORKER_COUNT",
		"MAX_VIDEO_SIZE_MB", "HTTP_PORT",
	} {
		t.Setenv(key, "")
	}

	path := filepath.Join("..", "..", "config", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "reloads the model") {
		t.Error("sample config should explain the cli engine model reload")
	}

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("sample config drifted from defaults:\n%+v\n%+v", cfg, Default())
	}
}
