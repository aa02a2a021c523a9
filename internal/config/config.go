package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Login    LoginConfig    `mapstructure:"login"`
	SMS      SMSConfig      `mapstructure:"sms"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Voice    VoiceConfig    `mapstructure:"voice"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// RateLimitRPS caps unauthenticated auth-endpoint traffic per client IP.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name                   string `mapstructure:"name"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	// Secrets come from the environment only; there is no YAML key and no
	// compiled-in default. Startup fails without them.
	AccessSecret      string `mapstructure:"-" envconfig:"JWT_ACCESS_SECRET"`
	RefreshSecret     string `mapstructure:"-" envconfig:"JWT_REFRESH_SECRET"`
	AccessExpiryHours int    `mapstructure:"access_expiry_hours"`
	RefreshExpiryDays int    `mapstructure:"refresh_expiry_days"`
}

type OTPConfig struct {
	ExpiryMinutes     int `mapstructure:"expiry_minutes"`
	MaxAttempts       int `mapstructure:"max_attempts"`
	ResendSeconds     int `mapstructure:"resend_seconds"`
	SweepIntervalMins int `mapstructure:"sweep_interval_minutes"`
}

type LoginConfig struct {
	MaxAttempts    int `mapstructure:"max_attempts"`
	LockoutMinutes int `mapstructure:"lockout_minutes"`
	BcryptCost     int `mapstructure:"bcrypt_cost"`
}

type SMSConfig struct {
	// Provider selects "twilio" or "log" (development).
	Provider   string `mapstructure:"provider"`
	AccountSID string `mapstructure:"-" envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `mapstructure:"-" envconfig:"TWILIO_AUTH_TOKEN"`
	FromNumber string `mapstructure:"from_number"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"-" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from"`
}

type VoiceConfig struct {
	AssistantID       string `mapstructure:"assistant_id"`
	BaseURL           string `mapstructure:"base_url"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// LoadConfig reads config.yaml and overlays secrets from the
// environment. Signing secrets are mandatory.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secret-only values never live in YAML.
	if err := envconfig.Process("", &config.JWT); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if err := envconfig.Process("", &config.SMS); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if err := envconfig.Process("", &config.SMTP); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if err := envconfig.Process("", &config.Database); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if err := envconfig.Process("", &config.Redis); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.SMS.Provider == "twilio" && (c.SMS.AccountSID == "" || c.SMS.AuthToken == "") {
		return errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set for the twilio provider")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 5
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeMinutes == 0 {
		c.Database.ConnMaxLifetimeMinutes = 5
	}
	if c.JWT.AccessExpiryHours == 0 {
		c.JWT.AccessExpiryHours = 24
	}
	if c.JWT.RefreshExpiryDays == 0 {
		c.JWT.RefreshExpiryDays = 7
	}
	if c.OTP.ExpiryMinutes == 0 {
		c.OTP.ExpiryMinutes = 5
	}
	if c.OTP.MaxAttempts == 0 {
		c.OTP.MaxAttempts = 5
	}
	if c.OTP.ResendSeconds == 0 {
		c.OTP.ResendSeconds = 60
	}
	if c.OTP.SweepIntervalMins == 0 {
		c.OTP.SweepIntervalMins = 10
	}
	if c.Login.MaxAttempts == 0 {
		c.Login.MaxAttempts = 5
	}
	if c.Login.LockoutMinutes == 0 {
		c.Login.LockoutMinutes = 15
	}
	if c.Login.BcryptCost == 0 {
		c.Login.BcryptCost = 10
	}
	if c.Voice.SessionTTLMinutes == 0 {
		c.Voice.SessionTTLMinutes = 15
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
