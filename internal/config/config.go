package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Media    MediaConfig    `env:",prefix=MEDIA_"`
	SMTP     SMTPConfig     `env:",prefix=SMTP_"`
	Elastic  ElasticConfig  `env:",prefix=ELASTIC_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
	AppURL   string         `env:"APP_URL,default=http://localhost:3000"`
}

type ServerConfig struct {
	Port          string   `env:"PORT,default=8080"`
	Host          string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout   Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout  Duration `env:"WRITE_TIMEOUT,default=15s"`
	UploadTimeout Duration `env:"UPLOAD_TIMEOUT,default=30m"`
	UploadDir     string   `env:"UPLOAD_DIR,default=uploads"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=courseforge"`
	Password string `env:"PASSWORD,default=courseforge_password"`
	DBName   string `env:"DB,default=courseforge_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

// MediaConfig configures the media CDN used for video storage and delivery.
type MediaConfig struct {
	BaseURL     string `env:"BASE_URL,default=https://api.mediacdn.io"`
	CloudName   string `env:"CLOUD_NAME,required"`
	APIKey      string `env:"API_KEY,required"`
	APISecret   string `env:"API_SECRET,required"`
	RootFolder  string `env:"ROOT_FOLDER,default=courseforge"`
	MaxAttempts int    `env:"MAX_ATTEMPTS,default=3"`
}

type SMTPConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=2525"`
	User     string `env:"USER,default="`
	Password string `env:"PASSWORD,default="`
	From     string `env:"FROM,default=noreply@courseforge.io"`
}

type ElasticConfig struct {
	Addresses []string `env:"ADDRESSES,default=http://localhost:9200"`
	Index     string   `env:"INDEX,default=courses"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	EmailTokenExpiry  Duration `env:"EMAIL_TOKEN_EXPIRY,default=24h"`
	ResetTokenExpiry  Duration `env:"RESET_TOKEN_EXPIRY,default=1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// MigrateURL returns the connection URL used by the migration runner
func (p PostgresConfig) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate JWT secret length
	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
