package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	HostURL   string
	APIKey    string
	Surface   string
	CacheFile string
	HostID    int
	Lang      string
	LangDir   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		HostURL:   getEnvOrDefault("USERDATA_HOST", "http://localhost:8080"),
		APIKey:    os.Getenv("USERDATA_API_KEY"),
		Surface:   os.Getenv("USERDATA_SERVER"),
		CacheFile: getEnvOrDefault("USERDATA_CACHE_FILE", defaultCacheFile()),
		Lang:      os.Getenv("USERDATA_LANG"),
		LangDir:   os.Getenv("USERDATA_LANG_DIR"),
		Output:    "text",
		Verbose:   false,
	}
}

func defaultCacheFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".userdata/cookies.json"
	}
	return filepath.Join(home, ".userdata", "cookies.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
