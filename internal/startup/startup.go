package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"media-broker/internal/logging"
	"media-broker/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	WorkDir     string
	DatabaseDir string
	Port        string
	MetricsPort string

	ContainerName    string
	MountPoint       string
	TranscodeTimeout time.Duration

	Ceiling        int
	MetricsEnabled bool

	// Derived paths
	DatabasePath string
	ArtifactDir  string
	DownloadDir  string
}

// LoadConfig loads and validates configuration from environment
// variables, after seeding the environment from a .env file when one
// exists in the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logging.Info("Loaded environment from .env")
	}

	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	workDir := getEnv("WORK_DIR", "/work")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	containerName := getEnv("SANDBOX_CONTAINER", "media-sandbox")
	mountPoint := getEnv("SANDBOX_MOUNT", "/data")
	timeoutStr := getEnv("TRANSCODE_TIMEOUT", "5m")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	ceiling := workers.ForConversions()

	logging.Info("  WORK_DIR:          %s", workDir)
	logging.Info("  DATABASE_DIR:      %s", databaseDir)
	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  SANDBOX_CONTAINER: %s", containerName)
	logging.Info("  SANDBOX_MOUNT:     %s", mountPoint)
	logging.Info("  TRANSCODE_TIMEOUT: %s", timeoutStr)
	logging.Info("  CONVERT_WORKERS:   %d", ceiling)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	transcodeTimeout, err := time.ParseDuration(timeoutStr)
	if err != nil || transcodeTimeout <= 0 {
		logging.Warn("  Invalid TRANSCODE_TIMEOUT, using default: 5m")
		transcodeTimeout = 5 * time.Minute
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory path: %w", err)
	}
	logging.Info("  Working directory (absolute): %s", workDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	config := &Config{
		WorkDir:          workDir,
		DatabaseDir:      databaseDir,
		Port:             port,
		MetricsPort:      metricsPort,
		ContainerName:    containerName,
		MountPoint:       mountPoint,
		TranscodeTimeout: transcodeTimeout,
		Ceiling:          ceiling,
		MetricsEnabled:   metricsEnabled,
		DatabasePath:     filepath.Join(databaseDir, "conversions.db"),
		ArtifactDir:      filepath.Join(workDir, "artifacts"),
		DownloadDir:      filepath.Join(workDir, "downloads"),
	}

	// The working directory is shared with the sandbox container and
	// must be writable for transcode outputs.
	if err := ensureDirectory(config.ArtifactDir, "artifacts"); err != nil {
		return nil, fmt.Errorf("artifact directory error: %w", err)
	}
	if err := testWriteAccess(config.ArtifactDir); err != nil {
		return nil, fmt.Errorf("artifact directory is not writable: %w", err)
	}
	logging.Info("  [OK] Artifact directory is writable")

	if err := ensureDirectory(config.DownloadDir, "download staging"); err != nil {
		return nil, fmt.Errorf("download directory error: %w", err)
	}

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for cache): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return config, nil
}

func logSystemInfo() {
	logging.Info("media-broker %s (commit %s, built %s)", Version, Commit, BuildTime)
	logging.Info("%s on %s/%s", GoVersion, runtime.GOOS, runtime.GOARCH)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func ensureDirectory(path, name string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Info("  Creating %s directory: %s", name, path)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s directory: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path %s exists but is not a directory", name, path)
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("  failed to remove write-test file %s: %v", testFile, err)
	}
	return nil
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Conversion cache initialized in %v", duration)
}

// LogBrokerInit logs broker initialization
func LogBrokerInit(ceiling int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("BROKER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Admission ceiling: %d concurrent producers", ceiling)
}

// LogSandboxInit logs sandbox invoker initialization
func LogSandboxInit(containerName, mountPoint string, timeout time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SANDBOX INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Container:   %s", containerName)
	logging.Info("  Mount point: %s", mountPoint)
	logging.Info("  Timeout:     %v", timeout)
}

// LogServerStarted logs that the HTTP server is accepting requests
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("READY")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Listening on :%s (started in %v)", port, elapsed)
}

// LogShutdownInitiated logs the start of graceful shutdown
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN (%s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs one shutdown step
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownComplete logs the end of graceful shutdown
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
