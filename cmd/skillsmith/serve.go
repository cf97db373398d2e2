package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/api"
	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/telemetry"
	"github.com/skillsmith/skillsmith/pkg/version"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host           string
	Port           int
	TracingEnabled bool
	TracingSampler string
	TracingRatio   float64
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host:           "localhost",
		Port:           8080,
		TracingSampler: "always",
		TracingRatio:   0.1,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation API server",
	Long: `Start a local HTTP server exposing the validation pipeline: skill and
solution validation, document patching and JSON Schema export.

The server will be available at http://localhost:8080 by default.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)
		runServeCommand(ctx, config)
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the server to")
	serveCmd.Flags().Bool("tracing", false, "Enable OpenTelemetry tracing")
	serveCmd.Flags().String("tracing-sampler", defaults.TracingSampler, "Trace sampler (always, never, ratio)")
	serveCmd.Flags().Float64("tracing-ratio", defaults.TracingRatio, "Sampling ratio for the ratio sampler")
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}
	if enabled, err := cmd.Flags().GetBool("tracing"); err == nil {
		config.TracingEnabled = enabled
	}
	if sampler, err := cmd.Flags().GetString("tracing-sampler"); err == nil {
		config.TracingSampler = sampler
	}
	if ratio, err := cmd.Flags().GetFloat64("tracing-ratio"); err == nil {
		config.TracingRatio = ratio
	}

	return config
}

// validateServeConfig validates the serve configuration
func validateServeConfig(config *ServeConfig) error {
	if config.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	if config.Host != "localhost" && config.Host != "0.0.0.0" {
		if ip := net.ParseIP(config.Host); ip == nil {
			if strings.Contains(config.Host, " ") || strings.Contains(config.Host, ":") {
				return fmt.Errorf("invalid host: %s", config.Host)
			}
		}
	}

	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}

	if config.Port < 1024 {
		logger.G(context.Background()).WithField("port", config.Port).Warn("using privileged port (< 1024) may require elevated permissions")
	}

	return nil
}

// runServeCommand starts the validation API server
func runServeCommand(ctx context.Context, config *ServeConfig) {
	if err := validateServeConfig(config); err != nil {
		presenter.Error(err, "invalid server configuration")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        config.TracingEnabled,
		ServiceName:    "skillsmith",
		ServiceVersion: version.Get().Version,
		SamplerType:    config.TracingSampler,
		SamplerRatio:   config.TracingRatio,
	})
	if err != nil {
		presenter.Error(err, "failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.G(ctx).WithError(err).Error("failed to shut down tracer")
		}
	}()

	logger.G(ctx).WithFields(map[string]interface{}{
		"host": config.Host,
		"port": config.Port,
	}).Info("Starting validation API server")

	server, err := api.NewServer(&api.ServerConfig{
		Host: config.Host,
		Port: config.Port,
	})
	if err != nil {
		presenter.Error(err, "failed to create server")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Validation API starting on http://%s:%d", config.Host, config.Port))
	presenter.Info("Press Ctrl+C to stop the server")

	if err := server.Start(ctx); err != nil {
		logger.G(ctx).WithError(err).Error("server error")
		presenter.Error(err, "server failed")
		os.Exit(1)
	}

	presenter.Info("Server stopped")
}
