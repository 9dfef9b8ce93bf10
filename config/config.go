package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultNumCourts = 5

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// NumCourts caps matches per round; 0 disables the cap.
	NumCourts int

	LogLevel  string
	LogFormat string

	AllowedOrigins []string

	OrganizerName     string
	OrganizerEmail    string
	OrganizerPassword string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Enabled reports whether every setting needed for publishing is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	courts, err := intFromEnv("NUM_COURTS", defaultNumCourts)
	if err != nil {
		return nil, err
	}
	if courts < 0 {
		return nil, fmt.Errorf("NUM_COURTS must not be negative, got %d", courts)
	}

	organizerEmail := strings.TrimSpace(os.Getenv("ORGANIZER_EMAIL"))
	organizerPassword := os.Getenv("ORGANIZER_PASSWORD")
	if (organizerEmail == "") != (organizerPassword == "") {
		return nil, fmt.Errorf("ORGANIZER_EMAIL and ORGANIZER_PASSWORD must be set together")
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		NumCourts:         courts,
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         strings.ToLower(os.Getenv("LOG_FORMAT")),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		OrganizerName:     valueOr(os.Getenv("ORGANIZER_NAME"), "Organizer"),
		OrganizerEmail:    organizerEmail,
		OrganizerPassword: organizerPassword,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
