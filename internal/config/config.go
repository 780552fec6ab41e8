package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Detection DetectionConfig `mapstructure:"detection"`
	Engage    EngageConfig    `mapstructure:"engage"`
	Callback  CallbackConfig  `mapstructure:"callback"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SessionConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	LockWait time.Duration `mapstructure:"lock_wait"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LLMConfig configures the text-completion collaborator.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // "groq" or "openai"
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

// DetectionConfig holds the tunable constants of the detection cascade.
// The weights are calibration parameters, not part of the pipeline's
// correctness contract.
type DetectionConfig struct {
	DecisionThreshold  int     `mapstructure:"decision_threshold"`
	RuleShortCircuit   int     `mapstructure:"rule_short_circuit"`
	ShortMessageRunes  int     `mapstructure:"short_message_runes"`
	ModelBandLow       int     `mapstructure:"model_band_low"`
	ModelBandHigh      int     `mapstructure:"model_band_high"`
	ValidatorMaxAdjust int     `mapstructure:"validator_max_adjust"`
	DatasetBoostFactor float64 `mapstructure:"dataset_boost_factor"`
	FuzzyMatchRatio    float64 `mapstructure:"fuzzy_match_ratio"`
}

// EngageConfig holds the conversation engine tunables.
type EngageConfig struct {
	MaxTurns       int `mapstructure:"max_turns"`
	HistoryWindow  int `mapstructure:"history_window"`
	EarlyExitScore int `mapstructure:"early_exit_score"`
	EarlyExitTurns int `mapstructure:"early_exit_turns"`
}

type CallbackConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/scambait")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("SCAMBAIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "SCAMBAIT_REDIS_HOST")
	v.BindEnv("redis.port", "SCAMBAIT_REDIS_PORT")
	v.BindEnv("redis.password", "SCAMBAIT_REDIS_PASSWORD")
	v.BindEnv("database.enabled", "SCAMBAIT_DATABASE_ENABLED")
	v.BindEnv("database.host", "SCAMBAIT_DATABASE_HOST")
	v.BindEnv("database.port", "SCAMBAIT_DATABASE_PORT")
	v.BindEnv("database.user", "SCAMBAIT_DATABASE_USER")
	v.BindEnv("database.password", "SCAMBAIT_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "SCAMBAIT_DATABASE_DBNAME")
	v.BindEnv("llm.api_key", "SCAMBAIT_LLM_API_KEY")
	v.BindEnv("llm.provider", "SCAMBAIT_LLM_PROVIDER")
	v.BindEnv("auth.api_key", "SCAMBAIT_AUTH_API_KEY")
	v.BindEnv("callback.url", "SCAMBAIT_CALLBACK_URL")
	v.BindEnv("app.environment", "SCAMBAIT_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "scambait")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "scambait:")

	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.lock_ttl", 10*time.Second)
	v.SetDefault("session.lock_wait", 5*time.Second)

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.timeout", 5*time.Second)
	v.SetDefault("llm.max_tokens", 200)
	v.SetDefault("llm.temperature", 0.3)

	v.SetDefault("detection.decision_threshold", 70)
	v.SetDefault("detection.rule_short_circuit", 95)
	v.SetDefault("detection.short_message_runes", 80)
	v.SetDefault("detection.model_band_low", 40)
	v.SetDefault("detection.model_band_high", 90)
	v.SetDefault("detection.validator_max_adjust", 10)
	v.SetDefault("detection.dataset_boost_factor", 0.5)
	v.SetDefault("detection.fuzzy_match_ratio", 0.8)

	v.SetDefault("engage.max_turns", 15)
	v.SetDefault("engage.history_window", 6)
	v.SetDefault("engage.early_exit_score", 90)
	v.SetDefault("engage.early_exit_turns", 6)

	v.SetDefault("callback.timeout", 10*time.Second)
	v.SetDefault("callback.retries", 2)
}
