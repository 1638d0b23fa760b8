package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zafrem/data-detector/internal/config"
	"github.com/zafrem/data-detector/internal/otel"
)

// resolvedVersion returns Version unless it is "dev" and Go build info
// contains a real module version (e.g. from go install ...@v1.2.0).
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// tracer is the package-level tracer for all CLI commands
var tracer = otel.Tracer("github.com/zafrem/data-detector/internal/cmd")

var (
	// otelShutdown holds the OTel shutdown function, called from Execute()
	otelShutdown func(context.Context) error

	// Version info injected via ldflags at build time
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	// Global flags
	cfgFile      string
	verbose      bool
	logLevel     string
	logFormat    string
	traceFlag    bool
	patternPaths []string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "datadetector",
	Short: "Detect, redact, and tokenize sensitive data in text",
	Long: `datadetector scans text against a registry of country-aware detection
rules for personal and credential data.

It ships with builtin rules for Korean, US, Japanese, and Chinese
identifiers plus cross-border ones (emails, cards, IBANs, API keys) and
supports:
- Verification functions (Luhn, IBAN mod-97, entropy) gating raw matches
- Redaction strategies: mask, hash, tokenize, fake
- Reversible tokenization with an integrity digest
- Hot rule reload and an HTTP/websocket API`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		setupLogging()

		// Initialize OpenTelemetry when --trace, -v, or trace.enabled is set
		traceEnabled := traceFlag || verbose || viper.GetBool(config.KeyTrace)
		shutdown, err := otel.Setup("datadetector", resolvedVersion(), traceEnabled)
		if err != nil {
			return fmt.Errorf("initializing OpenTelemetry: %w", err)
		}

		// Store shutdown for call on exit from Execute()
		otelShutdown = shutdown

		return nil
	},
}

func setupLogging() {
	// The flag wins when passed; otherwise the config file or env decides.
	level, err := zerolog.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// All structured logs go to stderr so stdout stays clean for piping
	// (e.g. datadetector scan --json - | jq).
	if logFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().
			Timestamp().
			Logger()
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./datadetector.config.yaml or ~/.datadetector/datadetector.config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "enable OpenTelemetry (traces and metrics to stdout)")
	rootCmd.PersistentFlags().StringSliceVar(&patternPaths, "patterns", nil, "rule file or directory replacing the embedded defaults (repeatable)")

	// Bind to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyTrace, rootCmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag(config.KeyPatternPaths, rootCmd.PersistentFlags().Lookup("patterns"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search in ~/.datadetector/ and current directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".datadetector"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("datadetector.config")
		viper.SetConfigType("yaml")
	}

	// Read config (ignore errors - file may not exist yet). Env vars with the
	// DATADETECTOR_ prefix are wired up by the config package.
	_ = viper.ReadInConfig()
}

// Execute runs the root command and flushes OTel on exit
func Execute() error {
	err := rootCmd.Execute()
	if otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(ctx)
	}
	return err
}
