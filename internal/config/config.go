// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev       bool
	MintToken bool
}

type BotConfig struct {
	Token          string        `yaml:"token"`
	OwnerID        int64         `yaml:"owner_id"`
	Workers        int           `yaml:"workers"`    // dispatch shards
	ParseMode      string        `yaml:"parse_mode"` // Markdown | MarkdownV2 | HTML
	Language       string        `yaml:"language"`   // ru | en
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type ChannelConfig struct {
	ID string `yaml:"id"` // numeric chat id or @username
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int           `yaml:"port"` // 0 disables the admin server
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables the in-flight lock
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai | gemini | noop
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type EditorConfig struct {
	MinSeedLength    int      `yaml:"min_seed_length"`
	MaxSeedLength    int      `yaml:"max_seed_length"`
	CopyPrefixes     []string `yaml:"copy_prefixes"`
	CommentaryLabels []string `yaml:"commentary_labels"`
}

type AuditConfig struct {
	CSVPath string `yaml:"csv_path"` // used when database.url is empty
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Channel  ChannelConfig  `yaml:"channel"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Editor   EditorConfig   `yaml:"editor"`
	Audit    AuditConfig    `yaml:"audit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig parses command line flags and loads the configuration they point to.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev, mint bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.BoolVar(&mint, "mint-token", false, "print an admin API token and exit")
	flag.Parse()

	cfg, err := Load(configPath, dev)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.MintToken = mint
	return cfg, nil
}

// Load reads the yaml file (if present), a .env file (if present) and environment overrides.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployments
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.OwnerID == 0 {
		return nil, errors.New("bot.owner_id is required")
	}
	if cfg.Channel.ID == "" {
		return nil, errors.New("channel.id is required")
	}
	if cfg.Editor.MinSeedLength > cfg.Editor.MaxSeedLength {
		return nil, errors.New("editor.min_seed_length must not exceed editor.max_seed_length")
	}
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, errors.New("ai.openai_key is required for provider openai")
		}
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return nil, errors.New("ai.gemini_key is required for provider gemini")
		}
	case "noop":
		if !dev {
			return nil, errors.New("ai.provider noop is only allowed with -dev")
		}
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}
	if cfg.Admin.Port > 0 && cfg.Admin.JWTSecret == "" {
		return nil, errors.New("admin.jwt_secret is required when admin.port is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setStr(&cfg.Bot.Token, "TELEGRAM_TOKEN")
	setStr(&cfg.Channel.ID, "CHANNEL_ID")
	setStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	setStr(&cfg.AI.Provider, "AI_PROVIDER")
	setStr(&cfg.Audit.CSVPath, "LOG_FILE")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")

	if v := os.Getenv("OWNER_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parse OWNER_ID: %w", err)
		}
		cfg.Bot.OwnerID = id
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.ParseMode == "" {
		cfg.Bot.ParseMode = "Markdown"
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Bot.RequestTimeout <= 0 {
		cfg.Bot.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 24 * time.Hour
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 2 * time.Minute
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
		if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey != "" {
			cfg.AI.Provider = "gemini"
		}
	}
	if cfg.AI.Model == "" {
		if cfg.AI.Provider == "gemini" {
			cfg.AI.Model = "gemini-2.0-flash"
		} else {
			cfg.AI.Model = "gpt-4"
		}
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 2
	}
	if cfg.Editor.MinSeedLength <= 0 {
		cfg.Editor.MinSeedLength = 10
	}
	if cfg.Editor.MaxSeedLength <= 0 {
		cfg.Editor.MaxSeedLength = 4000
	}
	if len(cfg.Editor.CopyPrefixes) == 0 {
		cfg.Editor.CopyPrefixes = []string{"сделай пост", "make a post"}
	}
	if len(cfg.Editor.CommentaryLabels) == 0 {
		cfg.Editor.CommentaryLabels = []string{"Мой комментарий:", "Комментарий:"}
	}
	if cfg.Audit.CSVPath == "" {
		cfg.Audit.CSVPath = "news_logs.csv"
	}
}
