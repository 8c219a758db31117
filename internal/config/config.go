package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cartcheck/internal/evaluation"
	"github.com/eugenenazirov/cartcheck/internal/logging"
	"github.com/eugenenazirov/cartcheck/internal/strategy"
	"github.com/eugenenazirov/cartcheck/internal/supplier"
)

const (
	defaultPort           = "8080"
	defaultRedisAddr      = "localhost:6379"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Backend      string
	MySQL        supplier.MySQLConfig
	Redis        supplier.RedisConfig
	ProblemsFile string

	Strategy         string
	StrategyCommand  []string
	StrategySource   string
	StrategyFunction string
	Username         string

	ReportFormat string
	LogLevel     string

	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Backend              string        `yaml:"backend"`
	MySQL                yamlMySQL     `yaml:"mysql"`
	Redis                yamlRedis     `yaml:"redis"`
	ProblemsFile         string        `yaml:"problems_file"`
	Strategy             yamlStrategy  `yaml:"strategy"`
	ReportFormat         string        `yaml:"report_format"`
	LogLevel             string        `yaml:"log_level"`
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

type yamlMySQL struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Database string `yaml:"database"`
}

type yamlRedis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	Timeout  string `yaml:"timeout"`
}

type yamlStrategy struct {
	Name     string   `yaml:"name"`
	Command  []string `yaml:"command"`
	Source   string   `yaml:"source"`
	Function string   `yaml:"function"`
	Username string   `yaml:"username"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	Backend          *string
	ProblemsFile     *string
	Strategy         *string
	StrategyCommand  *[]string
	StrategySource   *string
	StrategyFunction *string
	Username         *string
	ReportFormat     *string
	LogLevel         *string
	Port             *string
	RateLimitRPS     *float64
	RateLimitBurst   *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so that YAML and flags can override it.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SupplierOptions returns the settings of the configured problem backend.
func (c Config) SupplierOptions() supplier.Options {
	return supplier.Options{
		Backend: c.Backend,
		MySQL:   c.MySQL,
		Redis:   c.Redis,
		File:    c.ProblemsFile,
	}
}

// StrategyOptions returns the settings of the configured packing strategy.
func (c Config) StrategyOptions() strategy.Options {
	return strategy.Options{
		Username: c.Username,
		Command:  c.StrategyCommand,
		Source:   c.StrategySource,
		Function: c.StrategyFunction,
	}
}

// defaultConfig returns a Config with default values. MySQL credentials have none.
func defaultConfig() Config {
	return Config{
		Backend:              supplier.BackendMySQL,
		Redis:                supplier.RedisConfig{Addr: defaultRedisAddr, Timeout: 5 * time.Second},
		Strategy:             strategy.TemplateName,
		ReportFormat:         evaluation.FormatText,
		LogLevel:             logging.DefaultLevel,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.Backend, yamlCfg.Backend)
	setString(&cfg.MySQL.User, yamlCfg.MySQL.User)
	setString(&cfg.MySQL.Password, yamlCfg.MySQL.Password)
	setString(&cfg.MySQL.Host, yamlCfg.MySQL.Host)
	setString(&cfg.MySQL.Database, yamlCfg.MySQL.Database)
	setString(&cfg.Redis.Addr, yamlCfg.Redis.Addr)
	setString(&cfg.Redis.Password, yamlCfg.Redis.Password)
	if yamlCfg.Redis.DB != nil {
		cfg.Redis.DB = *yamlCfg.Redis.DB
	}
	setString(&cfg.ProblemsFile, yamlCfg.ProblemsFile)

	setString(&cfg.Strategy, yamlCfg.Strategy.Name)
	if len(yamlCfg.Strategy.Command) > 0 {
		cfg.StrategyCommand = yamlCfg.Strategy.Command
	}
	setString(&cfg.StrategySource, yamlCfg.Strategy.Source)
	setString(&cfg.StrategyFunction, yamlCfg.Strategy.Function)
	setString(&cfg.Username, yamlCfg.Strategy.Username)

	setString(&cfg.ReportFormat, yamlCfg.ReportFormat)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)
	setString(&cfg.Port, yamlCfg.Port)

	durations := []struct {
		name  string
		raw   string
		value *time.Duration
	}{
		{"redis.timeout", yamlCfg.Redis.Timeout, &cfg.Redis.Timeout},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.value = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	envString(&cfg.Backend, "CARTCHECK_BACKEND")
	envString(&cfg.MySQL.User, "MYSQL_USER")
	envString(&cfg.MySQL.Password, "MYSQL_PASSWORD")
	envString(&cfg.MySQL.Host, "MYSQL_HOST")
	envString(&cfg.MySQL.Database, "MYSQL_DATABASE")
	envString(&cfg.Redis.Addr, "REDIS_ADDR")
	envString(&cfg.Redis.Password, "REDIS_PASSWORD")
	envString(&cfg.ProblemsFile, "PROBLEMS_FILE")
	envString(&cfg.Strategy, "STRATEGY")
	envString(&cfg.StrategySource, "STRATEGY_SOURCE")
	envString(&cfg.StrategyFunction, "STRATEGY_FUNCTION")
	envString(&cfg.Username, "STRATEGY_USERNAME")
	envString(&cfg.ReportFormat, "REPORT_FORMAT")
	envString(&cfg.LogLevel, "LOG_LEVEL")
	envString(&cfg.Port, "PORT")

	if db := strings.TrimSpace(os.Getenv("REDIS_DB")); db != "" {
		if value, err := strconv.Atoi(db); err == nil && value >= 0 {
			cfg.Redis.DB = value
		}
	}

	if command := strings.Fields(os.Getenv("STRATEGY_COMMAND")); len(command) > 0 {
		cfg.StrategyCommand = command
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	overrideString(&cfg.Backend, overrides.Backend)
	overrideString(&cfg.ProblemsFile, overrides.ProblemsFile)
	overrideString(&cfg.Strategy, overrides.Strategy)
	overrideString(&cfg.StrategySource, overrides.StrategySource)
	overrideString(&cfg.StrategyFunction, overrides.StrategyFunction)
	overrideString(&cfg.Username, overrides.Username)
	overrideString(&cfg.ReportFormat, overrides.ReportFormat)
	overrideString(&cfg.LogLevel, overrides.LogLevel)
	overrideString(&cfg.Port, overrides.Port)

	if overrides.StrategyCommand != nil && len(*overrides.StrategyCommand) > 0 {
		cfg.StrategyCommand = *overrides.StrategyCommand
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}

	switch cfg.Backend {
	case supplier.BackendMySQL:
		var missing []string
		if cfg.MySQL.User == "" {
			missing = append(missing, "MYSQL_USER")
		}
		if cfg.MySQL.Host == "" {
			missing = append(missing, "MYSQL_HOST")
		}
		if cfg.MySQL.Database == "" {
			missing = append(missing, "MYSQL_DATABASE")
		}
		if len(missing) > 0 {
			return fmt.Errorf("mysql backend requires %s", strings.Join(missing, ", "))
		}
	case supplier.BackendRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis backend requires REDIS_ADDR")
		}
	case supplier.BackendFile:
		if cfg.ProblemsFile == "" {
			return fmt.Errorf("file backend requires PROBLEMS_FILE")
		}
	default:
		return fmt.Errorf("unknown backend %q, expected one of %s", cfg.Backend, strings.Join(supplier.Backends(), ", "))
	}

	if !slices.Contains(strategy.Names(), cfg.Strategy) {
		return fmt.Errorf("unknown strategy %q, expected one of %s", cfg.Strategy, strings.Join(strategy.Names(), ", "))
	}
	if cfg.Strategy == strategy.CommandName && len(cfg.StrategyCommand) == 0 {
		return fmt.Errorf("command strategy requires STRATEGY_COMMAND")
	}

	if cfg.ReportFormat != evaluation.FormatText && cfg.ReportFormat != evaluation.FormatJSON {
		return fmt.Errorf("unknown report format %q", cfg.ReportFormat)
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func envString(dst *string, key string) {
	setString(dst, strings.TrimSpace(os.Getenv(key)))
}

func overrideString(dst *string, value *string) {
	if value != nil {
		setString(dst, *value)
	}
}
