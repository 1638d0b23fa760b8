package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/internal/config"
)

var configShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage datadetector configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long:  "Prints the configuration after merging the config file, DATADETECTOR_* env vars, and flags. Secrets are summarized, never printed.",
	RunE:  runConfigShow,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "emit the configuration as JSON")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "config.show")
	defer span.End()

	cfg, err := configFromViper()
	if err != nil {
		return err
	}

	// API keys and the hash salt are secrets; show presence only.
	keys := "(none)"
	if n := len(cfg.APIKeys); n > 0 {
		keys = fmt.Sprintf("(%d configured)", n)
	}
	salt := "(unset)"
	if cfg.Salt != "" {
		salt = "(set)"
	}
	patterns := "(embedded defaults)"
	if len(cfg.PatternPaths) > 0 {
		patterns = strings.Join(cfg.PatternPaths, ", ")
	}

	entries := []struct {
		key   string
		value interface{}
	}{
		{config.KeyPatternPaths, patterns},
		{config.KeyPatternWatch, cfg.PatternWatch},
		{config.KeyKeywordPath, orDefault(cfg.KeywordPath, "(embedded)")},
		{config.KeyListen, cfg.Listen},
		{config.KeyAPIKeys, keys},
		{config.KeyRateLimitRPS, cfg.RateLimitRPS},
		{config.KeyCORSOrigins, cfg.CORSOrigins},
		{config.KeyMaskChar, cfg.MaskChar},
		{config.KeyDigest, cfg.Digest},
		{config.KeySalt, salt},
		{config.KeyNormalize, cfg.Normalize},
		{config.KeyWorkers, cfg.Workers},
		{config.KeyLogLevel, cfg.LogLevel},
		{config.KeyTrace, cfg.Trace},
	}

	out := cmd.OutOrStdout()
	if configShowJSON {
		m := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			m[e.key] = e.value
		}
		return writeIndentedJSON(out, m)
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-22s %v\n", e.key, e.value)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
