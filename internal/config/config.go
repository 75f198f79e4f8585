package config

import (
	"cardiostent/internal/model"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values come from an optional
// YAML file, then environment variables override them.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Minio     MinioConfig     `yaml:"minio"`
	Log       LogConfig       `yaml:"log"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Port               string   `yaml:"port"`
	StaticDir          string   `yaml:"staticDir"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
	// SubmitRateLimit is the number of submissions allowed per client per minute; 0 disables it
	SubmitRateLimit int `yaml:"submitRateLimit"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // file or mongo
	DataFile string `yaml:"dataFile"`
	MongoURI string `yaml:"mongoURI"`
	MongoDB  string `yaml:"mongoDB"`
}

type RedisConfig struct {
	URI string `yaml:"uri"`
}

// AuthConfig holds the admin credentials. Secrets may be plain text or bcrypt hashes.
type AuthConfig struct {
	Username  string        `yaml:"username"`
	Secrets   []string      `yaml:"secrets"`
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Enabled returns true if an archive store is configured
func (c MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type AnalyticsConfig struct {
	MissingScorePolicy model.MissingScorePolicy `yaml:"missingScorePolicy"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "3000",
			StaticDir:          "public",
			CORSAllowedOrigins: []string{"*"},
			SubmitRateLimit:    30,
		},
		Store: StoreConfig{
			Driver:   "file",
			DataFile: "survey_database.json",
			MongoDB:  "cardiostent",
		},
		Auth: AuthConfig{
			Username: "admin",
			TokenTTL: 12 * time.Hour,
		},
		Minio: MinioConfig{
			Bucket: "cardiostent-exports",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Analytics: AnalyticsConfig{
			MissingScorePolicy: model.MissingScoreExclude,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.StaticDir = getEnvOrDefault("STATIC_DIR", c.Server.StaticDir)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	c.Store.Driver = getEnvOrDefault("STORE_DRIVER", c.Store.Driver)
	c.Store.DataFile = getEnvOrDefault("DATA_FILE", c.Store.DataFile)
	c.Store.MongoURI = getEnvOrDefault("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getEnvOrDefault("MONGO_DB", c.Store.MongoDB)

	c.Redis.URI = getEnvOrDefault("REDIS_URI", c.Redis.URI)

	c.Auth.Username = getEnvOrDefault("ADMIN_USERNAME", c.Auth.Username)
	c.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Auth.JWTSecret)
	var secrets []string
	for _, key := range []string{"ADMIN_PASSWORD", "ADMIN_PIN"} {
		if v := os.Getenv(key); v != "" {
			secrets = append(secrets, v)
		}
	}
	secrets = append(secrets, splitList(os.Getenv("ADMIN_PASSWORDS"))...)
	if len(secrets) > 0 {
		c.Auth.Secrets = secrets
	}

	c.Minio.Endpoint = getEnvOrDefault("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnvOrDefault("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnvOrDefault("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.Bucket = getEnvOrDefault("MINIO_BUCKET", c.Minio.Bucket)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("MISSING_SCORE_POLICY"); v != "" {
		c.Analytics.MissingScorePolicy = model.MissingScorePolicy(strings.ToLower(v))
	}

	var err error
	if c.Server.SubmitRateLimit, err = getEnvInt("SUBMIT_RATE_LIMIT", c.Server.SubmitRateLimit); err != nil {
		return err
	}
	if c.Minio.UseSSL, err = getEnvBool("MINIO_USE_SSL", c.Minio.UseSSL); err != nil {
		return err
	}
	return nil
}

// Validate checks the values that have a closed set of options
func (c *Config) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("port %q is not a number", c.Server.Port))
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.DataFile == "" {
			errs = append(errs, errors.New("store driver file needs a data file"))
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("store driver mongo needs MONGO_URI"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Analytics.MissingScorePolicy {
	case model.MissingScoreExclude, model.MissingScoreZero:
	default:
		errs = append(errs, fmt.Errorf("unknown missing score policy %q", c.Analytics.MissingScorePolicy))
	}
	if c.Server.SubmitRateLimit < 0 {
		errs = append(errs, errors.New("submit rate limit must not be negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
