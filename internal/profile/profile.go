package profile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Other configurations
	UNIXSock    string
	Mode        string
	DSN         string
	Driver      string
	Version     string
	InstanceURL string
	Addr        string
	Data        string

	// TablesDir overrides the built-in rule tables with JSON documents
	// loaded from disk. Empty means embedded tables only.
	TablesDir string

	// JWTSecret signs pairing tokens. When empty a random secret is
	// generated at startup and sessions do not survive restarts.
	JWTSecret string

	Port int

	// SessionIdleMinutes is how long an in-memory conversation session may
	// sit idle before the sweeper evicts it.
	SessionIdleMinutes int

	// Rate limiting for the message endpoints, per client key.
	RateLimitRPS   float64
	RateLimitBurst int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// SessionIdleDuration returns the idle eviction window for in-memory
// conversation sessions.
func (p *Profile) SessionIdleDuration() time.Duration {
	return time.Duration(p.SessionIdleMinutes) * time.Minute
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
// Core flags (mode, addr, port, data, driver, dsn) are bound by the CLI;
// this covers the engine-specific knobs.
func (p *Profile) FromEnv() {
	p.TablesDir = getEnvOrDefault("MINDVIBE_TABLES_DIR", "")
	p.JWTSecret = getEnvOrDefault("MINDVIBE_JWT_SECRET", "")

	p.SessionIdleMinutes = getEnvOrDefaultInt("MINDVIBE_SESSION_IDLE_MINUTES", 30)
	if p.SessionIdleMinutes <= 0 {
		slog.Warn("invalid session idle minutes, using default: 30", "value", p.SessionIdleMinutes)
		p.SessionIdleMinutes = 30
	}

	p.RateLimitRPS = getEnvOrDefaultFloat("MINDVIBE_RATE_LIMIT_RPS", 5)
	p.RateLimitBurst = getEnvOrDefaultInt("MINDVIBE_RATE_LIMIT_BURST", 10)
	if p.RateLimitRPS <= 0 {
		p.RateLimitRPS = 5
	}
	if p.RateLimitBurst <= 0 {
		p.RateLimitBurst = 10
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "mindvibe")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/mindvibe"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("mindvibe_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.TablesDir != "" {
		tablesDir, err := checkDataDir(p.TablesDir)
		if err != nil {
			slog.Error("failed to check tables dir", slog.String("tables", p.TablesDir), slog.String("error", err.Error()))
			return err
		}
		p.TablesDir = tablesDir
	}

	if p.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return errors.Wrap(err, "failed to generate session signing secret")
		}
		p.JWTSecret = hex.EncodeToString(secret)
		slog.Warn("no signing secret configured, generated an ephemeral one; pairing tokens will not survive restarts")
	}

	return nil
}
