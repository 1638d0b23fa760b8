package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/hint"
	"github.com/zafrem/data-detector/internal/config"
	"github.com/zafrem/data-detector/internal/fakegen"
	"github.com/zafrem/data-detector/rules"
)

// configFromViper resolves the process configuration after initConfig has
// merged the config file, env vars, and bound flags into viper.
func configFromViper() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildRegistry loads the rule sources named in the configuration, or the
// embedded defaults when none are configured.
func buildRegistry(cfg *config.Config) (*rules.Registry, error) {
	if len(cfg.PatternPaths) == 0 {
		return rules.LoadDefault()
	}
	return rules.Load(cfg.PatternPaths...)
}

// engineOptions maps the resolved configuration onto engine options.
func engineOptions(cfg *config.Config) ([]detect.Option, error) {
	opts := []detect.Option{
		detect.WithMaskChar(cfg.MaskChar),
		detect.WithDigest(cfg.Digest),
		detect.WithNormalization(cfg.Normalize),
		detect.WithGenerator(fakegen.New()),
	}
	if cfg.Salt != "" {
		opts = append(opts, detect.WithHashSalt(cfg.Salt))
	}
	if cfg.KeywordPath != "" {
		idx, err := hint.LoadKeywordIndex(cfg.KeywordPath)
		if err != nil {
			return nil, fmt.Errorf("loading keyword index: %w", err)
		}
		opts = append(opts, detect.WithKeywordIndex(idx))
	}
	return opts, nil
}

// buildEngine assembles a detection engine from the resolved configuration.
func buildEngine(cfg *config.Config) (*detect.Engine, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}
	return detect.New(reg, opts...)
}

// readInput returns the text argument, reading stdin when it is "-" or
// absent. One trailing newline is stripped so `echo text | datadetector scan -`
// scans exactly the echoed text.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// buildFindOptions translates the shared selection flags into find options.
func buildFindOptions(namespaces, keywords, categories, ruleIDs []string, strategy string) ([]detect.FindOption, error) {
	var opts []detect.FindOption
	if len(namespaces) > 0 {
		opts = append(opts, detect.InNamespaces(namespaces...))
	}

	h := hint.Context{
		Keywords:   keywords,
		Categories: categories,
		RuleIDs:    ruleIDs,
	}
	switch strategy {
	case "":
	case string(hint.StrategyStrict), string(hint.StrategyLoose), string(hint.StrategyNone):
		h.Strategy = hint.Strategy(strategy)
	default:
		return nil, fmt.Errorf("unknown hint strategy %q (strict, loose, or none)", strategy)
	}
	if !h.Empty() {
		opts = append(opts, detect.WithHint(h))
	} else if strategy != "" {
		return nil, fmt.Errorf("--strategy-hint needs --keywords, --categories, or --rules")
	}
	return opts, nil
}
