package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by PROBREACOG_ENV (or .env by
// default), then loads the corresponding .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("PROBREACOG_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; env vars may be set directly.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return ":" + strconv.Itoa(ServerPort())
}

// DatabaseURL returns the Postgres URL for snapshot persistence. Empty
// disables persistence; the engine then runs purely in memory.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// SimulatorTool returns the path of the external path simulator.
func SimulatorTool() string {
	return envOr("SIMULATOR_TOOL", "probreach-simulate")
}

// VerifierTool returns the path of the external formal verifier.
func VerifierTool() string {
	return envOr("VERIFIER_TOOL", "probreach-verify")
}

// AnalyzerTool returns the path of the external sensitivity analyzer.
func AnalyzerTool() string {
	return envOr("ANALYZER_TOOL", "probreach-analyze")
}

// OptimizerTool returns the path of the external parameter optimizer.
func OptimizerTool() string {
	return envOr("OPTIMIZER_TOOL", "probreach-optimize")
}

// ToolTimeout bounds every external tool invocation.
func ToolTimeout() time.Duration {
	seconds, err := strconv.Atoi(os.Getenv("TOOL_TIMEOUT_SECONDS"))
	if err != nil || seconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}

// RateLimitRPS returns the per-IP request rate for the API.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 20
	}
	return rps
}

// RateLimitBurst returns the per-IP burst size for the API.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 40
	}
	return burst
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
