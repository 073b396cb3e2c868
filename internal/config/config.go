package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio. Se construye una sola vez en main
// y se inyecta en cada componente que la necesita.
type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`

	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required,notEmpty"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"12"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Support Desk"`
	SupportEmail string `env:"SUPPORT_EMAIL"`
	ClientURL    string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	OTPRateWindow time.Duration `env:"OTP_RATE_WINDOW" envDefault:"10m"`
	OTPRateMax    int           `env:"OTP_RATE_MAX" envDefault:"5"`

	TokenSweepSchedule string `env:"TOKEN_SWEEP_SCHEDULE" envDefault:"* * * * *"`
	BookingTimezone    string `env:"BOOKING_TIMEZONE" envDefault:"UTC"`

	StorageBackend      string `env:"STORAGE_BACKEND"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"support-desk"`
	S3Endpoint          string `env:"S3_ENDPOINT"`
	S3Region            string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey         string `env:"S3_ACCESS_KEY"`
	S3SecretKey         string `env:"S3_SECRET_KEY"`
	S3Bucket            string `env:"S3_BUCKET"`
	S3PublicBaseURL     string `env:"S3_PUBLIC_BASE_URL"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if _, err := time.LoadLocation(c.BookingTimezone); err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", c.BookingTimezone, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.StorageBackend)) {
	case "", "cloudinary", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// IsProduction indica si el proceso corre en modo producción.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// Location devuelve la zona horaria usada para la grilla de turnos.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
