package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/utils"
)

type Config struct {
	Port    string `yaml:"port"`
	LogMode string `yaml:"log_mode"`

	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"postgres"`

	JWT struct {
		SecretKey      string `yaml:"secret_key"`
		AccessTTLSecs  int    `yaml:"access_ttl"`
		RefreshTTLSecs int    `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Model struct {
		// Candidate checkpoint locations, first existing one wins.
		Paths     []string `yaml:"paths"`
		EmbedDim  int      `yaml:"embed_dim"`
		MaxSeqLen int      `yaml:"max_seq_len"`
		InitSeed  int64    `yaml:"init_seed"`
	} `yaml:"model"`

	Session struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"session"`

	Recommend struct {
		DefaultTopK     int `yaml:"default_top_k"`
		CandidatePool   int `yaml:"candidate_pool"`
		SearchScanLimit int `yaml:"search_scan_limit"`
		MaxKeywords     int `yaml:"max_keywords"`
	} `yaml:"recommend"`

	Interaction struct {
		// Rating value stored for implicit interactions (views).
		ImplicitRating float64 `yaml:"implicit_rating"`
	} `yaml:"interaction"`
}

func (c *Config) AccessTTL() time.Duration  { return time.Duration(c.JWT.AccessTTLSecs) * time.Second }
func (c *Config) RefreshTTL() time.Duration { return time.Duration(c.JWT.RefreshTTLSecs) * time.Second }

func defaults() *Config {
	cfg := &Config{}
	cfg.Port = "8080"
	cfg.LogMode = "development"
	cfg.Postgres.Host = "localhost"
	cfg.Postgres.Port = "5432"
	cfg.Postgres.User = "postgres"
	cfg.Postgres.Name = "bookwise"
	cfg.JWT.SecretKey = "defaultsecret"
	cfg.JWT.AccessTTLSecs = 3600
	cfg.JWT.RefreshTTLSecs = 86400
	cfg.Model.Paths = []string{
		"stamp.ckpt",
		"model/stamp.ckpt",
		"/var/lib/bookwise/stamp.ckpt",
	}
	cfg.Model.EmbedDim = 64
	cfg.Model.MaxSeqLen = 50
	cfg.Model.InitSeed = 42
	cfg.Session.Capacity = 10
	cfg.Recommend.DefaultTopK = 5
	cfg.Recommend.CandidatePool = 200
	cfg.Recommend.SearchScanLimit = 2000
	cfg.Recommend.MaxKeywords = 25
	cfg.Interaction.ImplicitRating = 3.0
	return cfg
}

// Load builds the config from defaults, then an optional YAML file
// (CONFIG_PATH, default "config.yaml"), then env var overrides.
func Load(log *logger.Logger) (*Config, error) {
	cfg := defaults()

	path := utils.GetEnv("CONFIG_PATH", "config.yaml", log)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.Postgres.Host = utils.GetEnv("POSTGRES_HOST", cfg.Postgres.Host, log)
	cfg.Postgres.Port = utils.GetEnv("POSTGRES_PORT", cfg.Postgres.Port, log)
	cfg.Postgres.User = utils.GetEnv("POSTGRES_USER", cfg.Postgres.User, log)
	cfg.Postgres.Password = utils.GetEnv("POSTGRES_PASSWORD", cfg.Postgres.Password, log)
	cfg.Postgres.Name = utils.GetEnv("POSTGRES_NAME", cfg.Postgres.Name, log)
	cfg.JWT.SecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWT.SecretKey, log)
	cfg.JWT.AccessTTLSecs = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.JWT.AccessTTLSecs, log)
	cfg.JWT.RefreshTTLSecs = utils.GetEnvAsInt("REFRESH_TOKEN_TTL", cfg.JWT.RefreshTTLSecs, log)
	if p := utils.GetEnv("MODEL_PATH", "", log); p != "" {
		cfg.Model.Paths = append([]string{p}, cfg.Model.Paths...)
	}
	cfg.Session.Capacity = utils.GetEnvAsInt("SESSION_CAPACITY", cfg.Session.Capacity, log)
	cfg.Interaction.ImplicitRating = utils.GetEnvAsFloat("IMPLICIT_RATING", cfg.Interaction.ImplicitRating, log)

	return cfg, nil
}
