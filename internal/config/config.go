package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MinSecretLength is the shortest HS256 signing secret accepted at startup.
const MinSecretLength = 32

type AdminServiceConfig struct {
	Port        string         `yaml:"port"`
	LogDir      string         `yaml:"log_dir"`
	LogLevel    string         `yaml:"log_level"`
	PostgresCfg PostgresConfig `yaml:"postgres"`
	RedisCfg    RedisConfig    `yaml:"redis"`
	AuthCfg     AuthConfig     `yaml:"auth"`
	SeedCfg     SeedConfig     `yaml:"seed"`
}

type PostgresConfig struct {
	DBname   string `yaml:"db_name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret             string `yaml:"jwt_secret"`
	JWTPrefix             string `yaml:"jwt_prefix"`
	TokenExpiredMinutes   int    `yaml:"token_expired_minutes"`
	CaptchaCharLength     int    `yaml:"captcha_char_length"`
	CaptchaExpiredMinutes int    `yaml:"captcha_expired_minutes"`
}

// SeedConfig describes the bootstrap super admin created by the seed command.
type SeedConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

func New() *AdminServiceConfig {
	return &AdminServiceConfig{
		Port:     getEnvOrDefault("PORT", "8080"),
		LogDir:   getEnvOrDefault("LOG_DIR", ""),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_NAME", "stardew"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_NAME", 0),
		},
		AuthCfg: AuthConfig{
			JWTSecret:             getEnvOrDefault("SECRET_KEY", ""),
			JWTPrefix:             getEnvOrDefault("JWT_PREFIX", "Bearer"),
			TokenExpiredMinutes:   getEnvIntOrDefault("JWT_EXPIRED_MINUTES", 60),
			CaptchaCharLength:     getEnvIntOrDefault("CAPTCHA_CHAR_LENGTH", 4),
			CaptchaExpiredMinutes: getEnvIntOrDefault("CAPTCHA_EXPIRED_MINUTES", 5),
		},
		SeedCfg: SeedConfig{
			AdminEmail:    getEnvOrDefault("ADMIN_EMAIL", "admin@stardew.local"),
			AdminUsername: getEnvOrDefault("ADMIN_USERNAME", "administrator"),
			AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", ""),
		},
	}
}

// Load builds the config from the environment and, when path is not empty,
// overlays the values found in the YAML file. Fields missing from the file
// keep their environment value.
func Load(path string) (*AdminServiceConfig, error) {
	cfg := New()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the service must not start with.
func (c *AdminServiceConfig) Validate() error {
	if len(c.AuthCfg.JWTSecret) < MinSecretLength {
		return fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLength, len(c.AuthCfg.JWTSecret))
	}
	if c.AuthCfg.TokenExpiredMinutes <= 0 {
		return fmt.Errorf("token expiry must be positive, got %d minutes", c.AuthCfg.TokenExpiredMinutes)
	}
	if c.AuthCfg.CaptchaExpiredMinutes <= 0 {
		return fmt.Errorf("captcha expiry must be positive, got %d minutes", c.AuthCfg.CaptchaExpiredMinutes)
	}
	if c.AuthCfg.CaptchaCharLength <= 0 {
		return fmt.Errorf("captcha length must be positive, got %d", c.AuthCfg.CaptchaCharLength)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
