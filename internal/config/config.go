package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"proposal-client/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	AgentPort      string
	APIBaseURL     string
	AuthProvider   string
	SupabaseURL    string
	SupabaseKey    string
	SessionDir     string
	DownloadDir    string
	MaxFileSize    int64
	LogLevel       string
	HTTPTimeout    time.Duration
	AllowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// PORT wins so the agent can run under a process manager that assigns one.
		AgentPort:    getEnvOrDefault("PORT", getEnvOrDefault("AGENT_PORT", "3100")),
		APIBaseURL:   strings.TrimRight(getEnvOrDefault("API_BASE_URL", "http://localhost:5000"), "/"),
		AuthProvider: strings.ToLower(getEnvOrDefault("AUTH_PROVIDER", "remote")),
		SupabaseURL:  getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:  getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SessionDir:   getEnvOrDefault("SESSION_DIR", defaultStateDir()),
		DownloadDir:  getEnvOrDefault("DOWNLOAD_DIR", "./downloads"),
		MaxFileSize:  getEnvInt64OrDefault("MAX_FILE_SIZE", 10*1024*1024), // 10MB default
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		// Zero disables the client timeout; uploads end on completion or cancel.
		HTTPTimeout: getEnvDurationOrDefault("HTTP_TIMEOUT", 0),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),
	}
}

// GetAgentPort returns the port the view agent listens on
func (c *AppConfig) GetAgentPort() string {
	return c.AgentPort
}

// GetAPIBaseURL returns the remote proposal service base URL
func (c *AppConfig) GetAPIBaseURL() string {
	return c.APIBaseURL
}

// GetAuthProvider returns "remote" or "supabase"
func (c *AppConfig) GetAuthProvider() string {
	return c.AuthProvider
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSessionDir returns the directory holding the persisted session
func (c *AppConfig) GetSessionDir() string {
	return c.SessionDir
}

// GetDownloadDir returns where generated proposals are saved
func (c *AppConfig) GetDownloadDir() string {
	return c.DownloadDir
}

// GetMaxFileSize returns the maximum allowed spreadsheet size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetHTTPTimeout returns the transport timeout, zero meaning none
func (c *AppConfig) GetHTTPTimeout() time.Duration {
	return c.HTTPTimeout
}

// GetAllowedOrigins returns the CORS origins for the agent
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return dir + string(os.PathSeparator) + "proposal-client"
	}
	return ".proposal-client"
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
