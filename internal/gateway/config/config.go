package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"askdata/internal/session"
)

type Config struct {
	Port        string         `yaml:"port"`
	Env         string         `yaml:"env"`
	DatabaseURL string         `yaml:"database_url"`
	Log         LogConfig      `yaml:"log"`
	LLM         LLMConfig      `yaml:"llm"`
	Session     SessionConfig  `yaml:"session"`
	Artifact    ArtifactConfig `yaml:"artifact"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	APIKey    string        `yaml:"-"`
	Model     string        `yaml:"model"`
	RPS       float64       `yaml:"rps"`
	Burst     int           `yaml:"burst"`
	Retries   int           `yaml:"retries"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	// Zero keeps the provider's default.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type SessionConfig struct {
	Policy     session.Policy `yaml:",inline"`
	MaxTracked int            `yaml:"max_tracked"`
}

type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CanUseS3 reports whether enough is configured to talk to an object store.
func (a ArtifactConfig) CanUseS3() bool {
	return a.Enabled &&
		strings.TrimSpace(a.Endpoint) != "" &&
		strings.TrimSpace(a.AccessKey) != "" &&
		strings.TrimSpace(a.SecretKey) != "" &&
		strings.TrimSpace(a.Bucket) != ""
}

// IsLocal reports whether the service runs in the local docker setup.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

// Load reads .env, flags, the optional YAML overlay named by ASKDATA_CONFIG,
// and finally environment variables, which win over the overlay.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	cfg := defaults(*port)
	if path := strings.TrimSpace(os.Getenv("ASKDATA_CONFIG")); path != "" {
		if err := applyYAMLFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults(port string) *Config {
	return &Config{
		Port: port,
		Env:  "local",
		Log:  LogConfig{Level: "info", Format: "console"},
		LLM: LLMConfig{
			Provider:  "gemini",
			RPS:       1,
			Burst:     2,
			Retries:   3,
			CacheSize: 256,
			CacheTTL:  10 * time.Minute,
		},
		Session: SessionConfig{Policy: session.DefaultPolicy(), MaxTracked: session.DefaultMaxTracked},
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Bucket: "askdata-runs",
		},
	}
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(k string) string { return strings.TrimSpace(getenv(k)) }

	if p := env("PORT"); p != "" {
		if strings.HasPrefix(p, ":") {
			cfg.Port = p
		} else {
			cfg.Port = ":" + p
		}
	}
	cfg.Env = firstNonEmpty(env("APP_ENV"), cfg.Env)
	cfg.DatabaseURL = firstNonEmpty(env("DATABASE_URL"), cfg.DatabaseURL)
	cfg.Log.Level = firstNonEmpty(env("LOG_LEVEL"), cfg.Log.Level)
	cfg.Log.Format = firstNonEmpty(env("LOG_FORMAT"), cfg.Log.Format)

	cfg.LLM.Provider = strings.ToLower(firstNonEmpty(env("LLM_PROVIDER"), cfg.LLM.Provider))
	cfg.LLM.APIKey = firstNonEmpty(env("GEMINI_API_KEY"), cfg.LLM.APIKey)
	cfg.LLM.Model = firstNonEmpty(env("GEMINI_MODEL"), cfg.LLM.Model)

	var err error
	if cfg.LLM.RPS, err = floatEnv(env("LLM_RPS"), cfg.LLM.RPS); err != nil {
		return fmt.Errorf("LLM_RPS: %w", err)
	}
	if cfg.LLM.Burst, err = intEnv(env("LLM_BURST"), cfg.LLM.Burst); err != nil {
		return fmt.Errorf("LLM_BURST: %w", err)
	}
	if cfg.LLM.Retries, err = intEnv(env("LLM_RETRIES"), cfg.LLM.Retries); err != nil {
		return fmt.Errorf("LLM_RETRIES: %w", err)
	}
	if cfg.LLM.CacheSize, err = intEnv(env("LLM_CACHE_SIZE"), cfg.LLM.CacheSize); err != nil {
		return fmt.Errorf("LLM_CACHE_SIZE: %w", err)
	}
	if cfg.LLM.CacheTTL, err = durationEnv(env("LLM_CACHE_TTL"), cfg.LLM.CacheTTL); err != nil {
		return fmt.Errorf("LLM_CACHE_TTL: %w", err)
	}
	if cfg.LLM.Temperature, err = floatEnv(env("GEMINI_TEMPERATURE"), cfg.LLM.Temperature); err != nil {
		return fmt.Errorf("GEMINI_TEMPERATURE: %w", err)
	}
	if cfg.LLM.MaxTokens, err = intEnv(env("GEMINI_MAX_TOKENS"), cfg.LLM.MaxTokens); err != nil {
		return fmt.Errorf("GEMINI_MAX_TOKENS: %w", err)
	}
	if cfg.Session.Policy.MaxRequests, err = intEnv(env("SESSION_MAX_REQUESTS"), cfg.Session.Policy.MaxRequests); err != nil {
		return fmt.Errorf("SESSION_MAX_REQUESTS: %w", err)
	}
	if cfg.Session.Policy.Window, err = durationEnv(env("SESSION_WINDOW"), cfg.Session.Policy.Window); err != nil {
		return fmt.Errorf("SESSION_WINDOW: %w", err)
	}
	if cfg.Session.MaxTracked, err = intEnv(env("SESSION_MAX_TRACKED"), cfg.Session.MaxTracked); err != nil {
		return fmt.Errorf("SESSION_MAX_TRACKED: %w", err)
	}

	applyArtifactEnv(cfg, env)
	return nil
}

func applyArtifactEnv(cfg *Config, env func(string) string) {
	a := &cfg.Artifact
	if cfg.IsLocal() {
		a.Endpoint = firstNonEmpty(env("ARTIFACT_MINIO_ENDPOINT"), a.Endpoint, "minio:9000")
		a.UseSSL = false
	} else {
		a.Endpoint = firstNonEmpty(env("ARTIFACT_S3_ENDPOINT"), a.Endpoint)
		if raw := env("ARTIFACT_S3_USE_SSL"); raw != "" {
			v, err := strconv.ParseBool(raw)
			a.UseSSL = err != nil || v
		} else if a.Endpoint != "" {
			a.UseSSL = true
		}
	}
	a.Enabled = a.Enabled || cfg.IsLocal() || a.Endpoint != ""
	a.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), a.Region, "us-east-1")
	a.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), a.AccessKey)
	a.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), a.SecretKey)
	a.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), a.Bucket)
}

func intEnv(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func floatEnv(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func durationEnv(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
