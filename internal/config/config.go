// Package config reads the service configuration from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iscbashan/contact/internal/model"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverSupabase = "supabase"
	StorageDriverLocal    = "local"
)

// Config holds runtime configuration.
type Config struct {
	Port               int
	DatabaseURL        string
	CORSAllowedOrigins []string
	LogLevel           string
	Variant            model.SubmissionKind

	// Image storage
	StorageDriver   string
	SupabaseURL     string
	SupabaseAnonKey string
	StorageBucket   string
	LocalStorageDir string

	// Email transport
	EmailUser   string
	EmailPass   string
	SMTPHost    string
	SMTPPort    int
	NotifyTo    []string
	NotifyBCC   []string
	NotifyBrand string

	UploadTimeout time.Duration
	DBTimeout     time.Duration
	EmailTimeout  time.Duration
}

// Load reads configuration from environment variables. Call godotenv.Load first
// if a .env file should be honoured.
func Load() (Config, error) {
	variant, err := model.ParseSubmissionKind(strings.ToLower(getStr("CONTACT_VARIANT", "identity")))
	if err != nil {
		return Config{}, fmt.Errorf("config: CONTACT_VARIANT: %w", err)
	}

	emailUser := getStr("EMAIL_USER", "")
	cfg := Config{
		Port:               getInt("PORT", 8080),
		DatabaseURL:        getStr("DATABASE_URL", ""),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           getStr("LOG_LEVEL", "INFO"),
		Variant:            variant,

		StorageDriver:   strings.ToLower(getStr("STORAGE_DRIVER", StorageDriverSupabase)),
		SupabaseURL:     strings.TrimRight(getStr("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getStr("SUPABASE_ANON_KEY", ""),
		StorageBucket:   getStr("STORAGE_BUCKET", "identity_images"),
		LocalStorageDir: getStr("LOCAL_STORAGE_DIR", "./uploads"),

		EmailUser:   emailUser,
		EmailPass:   getStr("EMAIL_PASS", ""),
		SMTPHost:    getStr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getInt("SMTP_PORT", 587),
		NotifyTo:    getList("NOTIFY_TO", nonEmpty(emailUser)),
		NotifyBCC:   getList("NOTIFY_BCC", nil),
		NotifyBrand: getStr("NOTIFY_BRAND", "Contact Form"),

		UploadTimeout: getDuration("UPLOAD_TIMEOUT", 15*time.Second),
		DBTimeout:     getDuration("DB_TIMEOUT", 5*time.Second),
		EmailTimeout:  getDuration("EMAIL_TIMEOUT", 15*time.Second),
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that would prevent the server from starting.
// Missing storage or email credentials are not errors here; those collaborators
// decide at call time.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.StorageDriver {
	case StorageDriverSupabase, StorageDriverLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ServerAddress is the listen address for the HTTP server.
func (c Config) ServerAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// EmailConfigured reports whether both email credentials are present.
func (c Config) EmailConfigured() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

func getStr(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getInt(key string, defaultVal int) int {
	valStr := getStr(key, "")
	if valStr == "" {
		return defaultVal
	}
	valInt, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return valInt
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getStr(key, "")
	if valStr == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string, defaultVal []string) []string {
	valStr := getStr(key, "")
	if valStr == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
