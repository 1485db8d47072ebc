// Package config loads the portal configuration from the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SMTP holds the outbound mail settings. An empty Host disables delivery;
// notifications then log instead of sending.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config captures environment driven configuration for the portal service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	JWTSecret string
	UploadDir string

	SeedAdminEmail    string
	SeedAdminPassword string

	SMTP SMTP
}

// Load parses configuration from the current process environment, applying
// defaults for optional fields and accumulating missing/invalid entries into
// a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:portal.db?_pragma=busy_timeout(5000)",
		UploadDir:      "uploads",
		SeedAdminEmail: "superadmin@example.com",
		SMTP:           SMTP{Port: 587},
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PORTAL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PORTAL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("PORTAL_JWT_SECRET")); secret == "" {
		missing = append(missing, "PORTAL_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if dir := strings.TrimSpace(os.Getenv("PORTAL_UPLOAD_DIR")); dir != "" {
		cfg.UploadDir = dir
	}

	if email := strings.TrimSpace(os.Getenv("PORTAL_SEED_ADMIN_EMAIL")); email != "" {
		cfg.SeedAdminEmail = email
	}
	cfg.SeedAdminPassword = strings.TrimSpace(os.Getenv("PORTAL_SEED_ADMIN_PASSWORD"))

	cfg.SMTP.Host = strings.TrimSpace(os.Getenv("PORTAL_SMTP_HOST"))
	if portValue := strings.TrimSpace(os.Getenv("PORTAL_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PORTAL_SMTP_PORT")
		} else {
			cfg.SMTP.Port = port
		}
	}
	cfg.SMTP.Username = strings.TrimSpace(os.Getenv("PORTAL_SMTP_USER"))
	cfg.SMTP.Password = os.Getenv("PORTAL_SMTP_PASSWORD")
	cfg.SMTP.From = strings.TrimSpace(os.Getenv("PORTAL_SMTP_FROM"))
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
