package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fundmix/internal/common"
	"github.com/bobmcallan/fundmix/internal/interfaces"
	"github.com/bobmcallan/fundmix/internal/metrics"
	"github.com/bobmcallan/fundmix/internal/services/breakdown"
	"github.com/bobmcallan/fundmix/internal/services/report"
)

// App holds the initialized services shared by cmd/fundmix-server and cmd/fundmix.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Metrics          *metrics.Registry
	Colors           *breakdown.ColorResolver
	BreakdownService interfaces.BreakdownService
	ReportService    *report.Service
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, FUNDMIX_CONFIG,
// fundmix.toml next to the binary, then config/fundmix.toml.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("FUNDMIX_CONFIG"); env != "" {
		return env
	}
	candidate := filepath.Join(getBinaryDir(), "fundmix.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return "config/fundmix.toml"
}

// NewApp loads configuration and initializes logging, metrics and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return newAppWith(config, logger, startupStart)
}

func newAppWith(config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	policies, err := breakdown.PoliciesFromConfig(config.Colors)
	if err != nil {
		return nil, fmt.Errorf("failed to build color policies: %w", err)
	}
	colors := breakdown.NewColorResolver(policies)

	registry := metrics.NewRegistry()
	svc := breakdown.NewService(colors, registry, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Metrics:          registry,
		Colors:           colors,
		BreakdownService: svc,
		ReportService:    report.NewService(svc, logger),
		StartupTime:      startupStart,
	}

	logger.Info().
		Int("color_policies", len(policies)).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}
