package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	MetricsPort  int           `yaml:"metrics_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	JWT          struct {
		Secret          string `yaml:"secret"`
		SessionTTLHours int    `yaml:"sessionTTLHours"`
	} `yaml:"jwt"`
}

func (a AppCfg) Production() bool {
	return a.Env == "production"
}

type MongoCfg struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BrevoCfg struct {
	APIKey    string `yaml:"apiKey"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
}

type GoogleCfg struct {
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectURL"`
}

// IdentityCfg points at the phone-identity provider used for OTP
// cross-checks (token -> verified phone number lookup).
type IdentityCfg struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

type KafkaCfg struct {
	Brokers    []string `yaml:"brokers"`
	AuditTopic string   `yaml:"auditTopic"`
}

type SecurityCfg struct {
	PasswordHashCost      int `yaml:"passwordHashCost"`
	ResetTokenTTLMinutes  int `yaml:"resetTokenTTLMinutes"`
	ResetMaxAttempts      int `yaml:"resetMaxAttempts"`
}

// RateLimitCfg holds the per-action fixed-window limits. Windows are
// fixed in the route table; only the counts are tunable here.
type RateLimitCfg struct {
	SignupPerHour            int `yaml:"signupPerHour"`
	LoginPerMinute           int `yaml:"loginPerMinute"`
	UsernameCheckPerMinute   int `yaml:"usernameCheckPerMinute"`
	ForgotPerQuarterHour     int `yaml:"forgotPerQuarterHour"`
	ResetPerHour             int `yaml:"resetPerHour"`
	OTPPerMinute             int `yaml:"otpPerMinute"`
	ProfileGetPerMinute      int `yaml:"profileGetPerMinute"`
	ProfileUpdatePerMinute   int `yaml:"profileUpdatePerMinute"`
	AdminActionsPerMinute    int `yaml:"adminActionsPerMinute"`
}

type UserCfg struct {
	Collection     string `yaml:"collection"`
	JobsCollection string `yaml:"jobsCollection"`
}

type Config struct {
	App       AppCfg       `yaml:"app"`
	Mongo     MongoCfg     `yaml:"mongo"`
	Redis     RedisCfg     `yaml:"redis"`
	Brevo     BrevoCfg     `yaml:"brevo"`
	Google    GoogleCfg    `yaml:"google"`
	Identity  IdentityCfg  `yaml:"identity"`
	Kafka     KafkaCfg     `yaml:"kafka"`
	User      UserCfg      `yaml:"user"`
	Security  SecurityCfg  `yaml:"security"`
	RateLimit RateLimitCfg `yaml:"rateLimit"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("APP_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	})
	override("METRICS_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.MetricsPort = n
		}
	})
	override("JWT_SECRET", func(v string) { cfg.App.JWT.Secret = v })
	override("JWT_SESSION_TTL_HOURS", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.JWT.SessionTTLHours = n
		}
	})
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("BREVO_API_KEY", func(v string) { cfg.Brevo.APIKey = v })
	override("BREVO_FROM_EMAIL", func(v string) { cfg.Brevo.FromEmail = v })
	override("BREVO_FROM_NAME", func(v string) { cfg.Brevo.FromName = v })
	override("GOOGLE_CLIENT_ID", func(v string) { cfg.Google.ClientID = v })
	override("GOOGLE_CLIENT_SECRET", func(v string) { cfg.Google.ClientSecret = v })
	override("GOOGLE_REDIRECT_URL", func(v string) { cfg.Google.RedirectURL = v })
	override("IDENTITY_ENDPOINT", func(v string) { cfg.Identity.Endpoint = v })
	override("IDENTITY_API_KEY", func(v string) { cfg.Identity.APIKey = v })
	override("KAFKA_BROKERS", func(v string) { cfg.Kafka.Brokers = strings.Split(v, ",") })
	override("KAFKA_AUDIT_TOPIC", func(v string) { cfg.Kafka.AuditTopic = v })
	override("PASSWORD_HASH_COST", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.PasswordHashCost = n
		}
	})
	override("RESET_TOKEN_TTL_MINUTES", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.ResetTokenTTLMinutes = n
		}
	})

	applyDefaults(cfg)

	if cfg.App.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.JWT.SessionTTLHours == 0 {
		cfg.App.JWT.SessionTTLHours = 24 * 7
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "fixly"
	}
	if cfg.User.Collection == "" {
		cfg.User.Collection = "users"
	}
	if cfg.User.JobsCollection == "" {
		cfg.User.JobsCollection = "jobs"
	}
	if cfg.Security.PasswordHashCost == 0 {
		cfg.Security.PasswordHashCost = 12
	}
	if cfg.Security.ResetTokenTTLMinutes == 0 {
		cfg.Security.ResetTokenTTLMinutes = 15
	}
	if cfg.Security.ResetMaxAttempts == 0 {
		cfg.Security.ResetMaxAttempts = 3
	}

	rl := &cfg.RateLimit
	if rl.SignupPerHour == 0 {
		rl.SignupPerHour = 5
	}
	if rl.LoginPerMinute == 0 {
		rl.LoginPerMinute = 10
	}
	if rl.UsernameCheckPerMinute == 0 {
		rl.UsernameCheckPerMinute = 30
	}
	if rl.ForgotPerQuarterHour == 0 {
		rl.ForgotPerQuarterHour = 3
	}
	if rl.ResetPerHour == 0 {
		rl.ResetPerHour = 5
	}
	if rl.OTPPerMinute == 0 {
		rl.OTPPerMinute = 10
	}
	if rl.ProfileGetPerMinute == 0 {
		rl.ProfileGetPerMinute = 100
	}
	if rl.ProfileUpdatePerMinute == 0 {
		rl.ProfileUpdatePerMinute = 20
	}
	if rl.AdminActionsPerMinute == 0 {
		rl.AdminActionsPerMinute = 30
	}
}
