package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/tapmusic-collage/internal/http"
	"github.com/handiism/tapmusic-collage/internal/model"
	"github.com/handiism/tapmusic-collage/internal/tapmusic"
)

// FileName is the settings file name inside the config directory.
const FileName = "tapmusic.json"

// Settings holds all configuration options.
type Settings struct {
	// Service settings
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`

	// Output settings
	DownloadsPath   string `json:"downloads_path"`
	FileNameFormat  string `json:"file_name_format"`
	CreateDirectory bool   `json:"create_directory"`
	MaxSize         int    `json:"max_size"`

	// Collage defaults
	ShowCaption   bool `json:"show_caption"`
	ShowPlaycount bool `json:"show_playcount"`

	// Proxy settings
	ProxyType    string `json:"proxy_type"` // none, system, manual
	ProxyAddress string `json:"proxy_address"`
	ProxyPort    int    `json:"proxy_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		BaseURL:        tapmusic.DefaultBaseURL,
		TimeoutSeconds: int(http.DefaultTimeout / time.Second),
		UserAgent:      http.DefaultUserAgent,

		DownloadsPath:   filepath.Join(homeDir, "Pictures", "Collages"),
		FileNameFormat:  model.DefaultFileNameFormat,
		CreateDirectory: false,
		MaxSize:         0,

		ShowCaption:   true,
		ShowPlaycount: true,

		ProxyType: "system",
	}
}

// DefaultPath returns the settings file location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tapmusic-collage", FileName), nil
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail late.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", s.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", s.BaseURL)
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", s.TimeoutSeconds)
	}
	if s.MaxSize < 0 {
		return fmt.Errorf("max_size must not be negative, got %d", s.MaxSize)
	}
	switch s.ProxyType {
	case "", "none", "system":
	case "manual":
		if s.ProxyAddress == "" || s.ProxyPort <= 0 || s.ProxyPort > 65535 {
			return fmt.Errorf("proxy_type manual needs proxy_address and proxy_port")
		}
	default:
		return fmt.Errorf("proxy_type must be none, system or manual, got %q", s.ProxyType)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		FileNameFormat: s.FileNameFormat,
	}
}

// HTTPOptions converts settings to http client options.
func (s *Settings) HTTPOptions() []http.Option {
	return []http.Option{
		http.WithTimeout(s.Timeout()),
		http.WithUserAgent(s.UserAgent),
		http.WithProxy(s.ProxyType, s.ProxyAddress, s.ProxyPort),
	}
}
