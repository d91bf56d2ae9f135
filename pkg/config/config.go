package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const (
	ProviderGigaChat  = "gigachat"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Agent     AgentConfig
	Metrics   MetricsConfig
	Logger    LoggerConfig
}

// IsDevelopment reports whether error envelopes may carry stacks and causes.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	TrustProxy   TrustProxyConfig
}

// AuthConfig holds the single expected API key. An empty APIKey disables
// authentication for /analyze.
type AuthConfig struct {
	APIKey string
}

type RateLimitConfig struct {
	Window   time.Duration
	Max      int
	RedisURL string
}

type CORSConfig struct {
	AllowOrigins []string
}

type AgentConfig struct {
	Name      string
	Provider  string
	Timeout   time.Duration
	GigaChat  GigaChatConfig
	Anthropic AnthropicConfig
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	p := &parser{}

	bodyLimit := p.bytes("BODY_LIMIT", "1mb")
	trustProxy, err := ParseTrustProxy(getEnv("TRUST_PROXY", ""))
	if err != nil {
		p.fail("TRUST_PROXY", err)
	}

	cfg := &Config{
		Env: strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(p.int("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(p.int("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			BodyLimit:    bodyLimit,
			TrustProxy:   trustProxy,
		},
		Auth: AuthConfig{
			APIKey: os.Getenv("ANALYZE_API_KEY"),
		},
		RateLimit: RateLimitConfig{
			Window:   time.Duration(p.int("RATE_LIMIT_WINDOW_MS", 900000)) * time.Millisecond,
			Max:      p.int("RATE_LIMIT_MAX", 100),
			RedisURL: getEnv("REDIS_URL", ""),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(getEnv("CORS_ORIGIN", "")),
		},
		Agent: AgentConfig{
			Name:     "financialAgent",
			Provider: strings.ToLower(getEnv("AGENT_PROVIDER", ProviderGigaChat)),
			Timeout:  time.Duration(p.int("AGENT_TIMEOUT_MS", 120000)) * time.Millisecond,
			GigaChat: GigaChatConfig{
				APIKey:             getEnv("GIGACHAT_API_KEY", ""),
				Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
				InsecureSkipVerify: p.bool("GIGACHAT_INSECURE_SKIP_VERIFY", false),
			},
			Anthropic: AnthropicConfig{
				APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
				Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
				MaxTokens: p.int("ANTHROPIC_MAX_TOKENS", 1024),
			},
		},
		Metrics: MetricsConfig{
			Enabled: p.bool("METRICS_ENABLED", true),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid APP_ENV %q: expected development, production or test", c.Env)
	}
	if c.RateLimit.Max < 1 {
		return fmt.Errorf("invalid RATE_LIMIT_MAX %d: must be at least 1", c.RateLimit.Max)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_WINDOW_MS: must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("invalid BODY_LIMIT: must be positive")
	}
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("invalid AGENT_TIMEOUT_MS: must be positive")
	}
	switch c.Agent.Provider {
	case ProviderGigaChat, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid AGENT_PROVIDER %q: expected gigachat or anthropic", c.Agent.Provider)
	}
	return nil
}

// parser keeps the first malformed variable so Load can report it.
type parser struct {
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("failed to parse %s: %w", key, err)
	}
}

func (p *parser) int(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return v
}

// bytes understands sizes like "1mb", "512kb" or a plain byte count.
// Units are binary (1mb = 1048576).
func (p *parser) bytes(key, defaultValue string) int {
	raw := getEnv(key, defaultValue)
	v, err := units.RAMInBytes(raw)
	if err != nil {
		p.fail(key, err)
		return 0
	}
	return int(v)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
