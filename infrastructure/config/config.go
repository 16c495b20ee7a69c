package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	SeedDemoData    bool          `yaml:"seed_demo_data"`
	PromptDir       string        `yaml:"prompt_dir"`

	// Model configuration
	ModelProvider string        `yaml:"model_provider"`
	ModelBaseURL  string        `yaml:"model_base_url"`
	ModelAPIKey   string        `yaml:"-"`
	TextModel     string        `yaml:"text_model"`
	SpeechModel   string        `yaml:"speech_model"`
	SpeechVoice   string        `yaml:"speech_voice"`
	ModelTimeout  time.Duration `yaml:"model_timeout"`

	// Circuit breaker around the model
	BreakerEnabled     bool          `yaml:"breaker_enabled"`
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`

	// HTTP surface
	EnableCORS     bool     `yaml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`

	// Authentication
	JWTSecret string `yaml:"-"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Logging and observability
	LogLevel      string `yaml:"log_level"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`

	// AWS configuration
	AWSRegion    string `yaml:"aws_region"`
	EventBusName string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda bool `yaml:"-"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// Model providers
const (
	ProviderGemini = "gemini"
)

// Defaults returns the configuration used before any file or variable is applied
func Defaults() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		ShutdownTimeout: 15 * time.Second,
		MaxUploadBytes:  20 << 20,
		SeedDemoData:    true,

		ModelProvider: ProviderGemini,
		TextModel:     "gemini-2.5-flash",
		SpeechModel:   "gemini-2.5-flash-preview-tts",
		SpeechVoice:   "Algenib",
		ModelTimeout:  0,

		BreakerEnabled:     true,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,

		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   0,
		RateLimitBurst: 20,

		JWTIssuer: "scholar-chat",

		LogLevel:     "info",
		OTLPEndpoint: "localhost:4317",

		AWSRegion: "us-west-2",
	}
}

// DefaultLoader reads CONFIG_DIR for the ENVIRONMENT layer
func DefaultLoader() *Loader {
	return NewLoader(getEnv("CONFIG_DIR", "config"), getEnv("ENVIRONMENT", "development"))
}

// LoadConfig loads configuration from CONFIG_DIR files and environment variables
func LoadConfig() (*Config, error) {
	return DefaultLoader().Load()
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.SeedDemoData = getEnvBool("SEED_DEMO_DATA", c.SeedDemoData)
	c.PromptDir = getEnv("PROMPT_DIR", c.PromptDir)

	c.ModelProvider = getEnv("MODEL_PROVIDER", c.ModelProvider)
	c.ModelBaseURL = getEnv("MODEL_BASE_URL", c.ModelBaseURL)
	c.ModelAPIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", c.ModelAPIKey))
	c.TextModel = getEnv("TEXT_MODEL", c.TextModel)
	c.SpeechModel = getEnv("SPEECH_MODEL", c.SpeechModel)
	c.SpeechVoice = getEnv("SPEECH_VOICE", c.SpeechVoice)
	c.ModelTimeout = getEnvDuration("MODEL_TIMEOUT", c.ModelTimeout)

	c.BreakerEnabled = getEnvBool("BREAKER_ENABLED", c.BreakerEnabled)
	c.BreakerMaxFailures = uint32(getEnvInt("BREAKER_MAX_FAILURES", int(c.BreakerMaxFailures)))
	c.BreakerOpenTimeout = getEnvDuration("BREAKER_OPEN_TIMEOUT", c.BreakerOpenTimeout)

	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	c.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	var problems []string

	if c.ModelProvider != ProviderGemini {
		problems = append(problems, fmt.Sprintf("unknown MODEL_PROVIDER %q", c.ModelProvider))
	}
	if c.TextModel == "" {
		problems = append(problems, "TEXT_MODEL is required")
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitRPS < 0 {
		problems = append(problems, "RATE_LIMIT_RPS cannot be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		problems = append(problems, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	if c.IsProduction() {
		if c.ModelAPIKey == "" {
			problems = append(problems, "GEMINI_API_KEY is required in production")
		}
		if c.JWTSecret == "" {
			problems = append(problems, "JWT_SECRET is required in production")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuthEnabled reports whether bearer tokens are checked
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
