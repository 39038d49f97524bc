// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for databases (always absolute)
	Port             int
	LogLevel         string
	DevMode          bool
	MaxQubits        int    // Admission bound for dense statevector simulation (state grows as 2^n)
	DefaultShots     int    // Sampling trial count used when a request omits shots
	DefaultGroupSize int    // Qubits per node group
	AnchorURL        string // External anchoring ledger endpoint (empty disables anchoring)
	CorrectionURL    string // Error-correction metrics service endpoint (empty disables correction)
	BenchmarkCron    string // Cron spec for the periodic benchmark job (empty disables it)
	BenchmarkQubits  int    // Register size used by the periodic benchmark job
	BenchmarkShots   int    // Shot count used by the periodic benchmark job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check QBENCH_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("QBENCH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("QBENCH_PORT", 8011),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		MaxQubits:        getEnvAsInt("QBENCH_MAX_QUBITS", 24),
		DefaultShots:     getEnvAsInt("QBENCH_DEFAULT_SHOTS", 2048),
		DefaultGroupSize: getEnvAsInt("QBENCH_GROUP_SIZE", 3),
		AnchorURL:        getEnv("QBENCH_ANCHOR_URL", ""),
		CorrectionURL:    getEnv("QBENCH_CORRECTION_URL", ""),
		BenchmarkCron:    getEnv("QBENCH_BENCHMARK_CRON", ""),
		BenchmarkQubits:  getEnvAsInt("QBENCH_BENCHMARK_QUBITS", 12),
		BenchmarkShots:   getEnvAsInt("QBENCH_BENCHMARK_SHOTS", 2048),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	// Dense simulation above ~30 qubits is out of reach for commodity memory
	// (2^30 amplitudes at 16 bytes each is already 16GB).
	if c.MaxQubits < 2 || c.MaxQubits > 30 {
		return fmt.Errorf("invalid max qubits: %d (must be 2-30)", c.MaxQubits)
	}
	if c.DefaultShots < 1 {
		return fmt.Errorf("invalid default shots: %d", c.DefaultShots)
	}
	if c.DefaultGroupSize < 1 {
		return fmt.Errorf("invalid group size: %d", c.DefaultGroupSize)
	}
	if c.BenchmarkQubits < 2 || c.BenchmarkQubits > c.MaxQubits {
		return fmt.Errorf("invalid benchmark qubits: %d (must be 2-%d)", c.BenchmarkQubits, c.MaxQubits)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
