package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is the deployment-provided configuration for the API process.
type Config struct {
	Port string `env:"PORT,default=8080"`

	// BaseURL is the externally reachable prefix used in verification links.
	BaseURL string `env:"BASE_URL,default=http://localhost:8080"`

	// StorageBackend selects the repository wiring: memory | postgres.
	StorageBackend string `env:"STORAGE_BACKEND,default=memory"`
	DatabaseURL    string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET,default=fallbacksecret"`
	JWTIssuer string        `env:"JWT_ISSUER,default=freight-api"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=168h"`

	// VerifyTokenTTL bounds how long an emailed verification link stays
	// redeemable.
	VerifyTokenTTL time.Duration `env:"VERIFY_TOKEN_TTL,default=1h"`

	// Mailer selects the outbound mail wiring: log | smtp.
	Mailer    string `env:"MAILER,default=log"`
	SMTPAddr  string `env:"SMTP_ADDR"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
	MailFrom  string `env:"MAIL_FROM,default=SCC Freight <no-reply@sccfreight.example>"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
	}
	if cfg.Mailer == "smtp" && cfg.SMTPAddr == "" {
		return Config{}, fmt.Errorf("MAILER=smtp requires SMTP_ADDR")
	}
	return cfg, nil
}
