// Package config は起動時に1度だけ読み込む設定を扱います。
// 優先順位は 既定値 < YAML ファイル < .env / 環境変数 です。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	DefaultModelID      = "amazon.nova-canvas-v1:0"
	DefaultRegion       = "us-east-1"
	DefaultImagesDir    = "images"
	DefaultPort         = 8000
	DefaultFetchTimeout = 30 * time.Second
)

// Config はサーバー全体の設定です。
type Config struct {
	Region          string        `yaml:"region"`
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	SessionToken    string        `yaml:"session_token"`
	ModelID         string        `yaml:"model_id"`
	ImagesDir       string        `yaml:"images_dir"`
	Port            int           `yaml:"port"`
	Transport       string        `yaml:"transport"`
	OpenPreview     bool          `yaml:"open_preview"`
	BlockPrivateURL bool          `yaml:"block_private_urls"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	LogLevel        string        `yaml:"log_level"`
	BedrockEndpoint string        `yaml:"bedrock_endpoint"`

	// ConfigFile は Load に渡された設定ファイルのパス、ConfigFileFound はそれが存在したかです。
	ConfigFile      string `yaml:"-"`
	ConfigFileFound bool   `yaml:"-"`
}

// Default は既定値の Config を返します。
func Default() Config {
	return Config{
		Region:       DefaultRegion,
		ModelID:      DefaultModelID,
		ImagesDir:    DefaultImagesDir,
		Port:         DefaultPort,
		Transport:    TransportStdio,
		OpenPreview:  true,
		FetchTimeout: DefaultFetchTimeout,
		LogLevel:     "info",
	}
}

// Load は設定ファイル（任意）と .env（任意）と環境変数から Config を組み立てます。
// 空のパスは読み込みを省略します。存在しないファイルはエラーにしません。
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		found, err := loadYAML(configFile, &cfg)
		if err != nil {
			return nil, err
		}
		cfg.ConfigFile, cfg.ConfigFileFound = configFile, found
	}

	if envFile != "" {
		// .env は既に設定されている環境変数を上書きしない
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(".env の読み込みに失敗しました: %w", err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadYAML は path が存在しなければ (false, nil) を返します。ログは呼び出し側が出します。
func loadYAML(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	return true, nil
}

// ApplyEnv は lookup で見つかった環境変数で cfg を上書きします。
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("AWS_REGION", &cfg.Region)
	str("AWS_ACCESS_KEY_ID", &cfg.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &cfg.SecretAccessKey)
	str("AWS_SESSION_TOKEN", &cfg.SessionToken)
	str("NOVA_CANVAS_MODEL_ID", &cfg.ModelID)
	str("NOVA_CANVAS_IMAGES_DIR", &cfg.ImagesDir)
	str("NOVA_CANVAS_TRANSPORT", &cfg.Transport)
	str("NOVA_CANVAS_LOG_LEVEL", &cfg.LogLevel)
	str("NOVA_CANVAS_BEDROCK_ENDPOINT", &cfg.BedrockEndpoint)

	if v, ok := lookup("NOVA_CANVAS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOVA_CANVAS_PORT が不正です: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := lookup("NOVA_CANVAS_FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOVA_CANVAS_FETCH_TIMEOUT が不正です: %w", err)
		}
		cfg.FetchTimeout = d
	}
	for key, dst := range map[string]*bool{
		"NOVA_CANVAS_OPEN_PREVIEW":       &cfg.OpenPreview,
		"NOVA_CANVAS_BLOCK_PRIVATE_URLS": &cfg.BlockPrivateURL,
	} {
		if v, ok := lookup(key); ok && v != "" {
			b, err := parseBool(v)
			if err != nil {
				return fmt.Errorf("%s が不正です: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// Validate は起動に必要な値が揃っているかを確認します。
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("model_id is required")
	}
	if c.ImagesDir == "" {
		return fmt.Errorf("images_dir is required")
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport must be %q or %q (got %q)", TransportStdio, TransportHTTP, c.Transport)
	}
	if c.Transport == TransportHTTP && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Port)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive (got %s)", c.FetchTimeout)
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("access_key_id and secret_access_key must be set together")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel は設定文字列を slog.Level に変換します。
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
