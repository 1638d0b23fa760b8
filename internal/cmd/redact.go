package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/detect"
)

var (
	redactStrategy     string
	redactMaskChar     string
	redactNamespaces   []string
	redactKeywords     []string
	redactCategories   []string
	redactRules        []string
	redactHintStrategy string
	redactJSON         bool
)

var redactCmd = &cobra.Command{
	Use:   "redact [text]",
	Short: "Redact sensitive data from text",
	Long: `Scans the argument (or stdin when the argument is "-" or absent) and
prints the text with every match replaced.

Strategies: mask substitutes the rule's declared mask, hash a salted digest
reference, tokenize a positional reference, and fake a synthetic value of the
same shape. Only the redacted text goes to stdout; counts are logged to
stderr so the output pipes cleanly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().StringVar(&redactStrategy, "strategy", "mask", "redaction strategy: mask, hash, tokenize, or fake")
	redactCmd.Flags().StringVar(&redactMaskChar, "mask-char", "", "mask character override for rules without a declared mask")
	redactCmd.Flags().StringSliceVar(&redactNamespaces, "namespaces", nil, "restrict scanning to these namespaces (e.g. kr,us)")
	redactCmd.Flags().StringSliceVar(&redactKeywords, "keywords", nil, "context keywords hinting which rules apply")
	redactCmd.Flags().StringSliceVar(&redactCategories, "categories", nil, "context categories hinting which rules apply")
	redactCmd.Flags().StringSliceVar(&redactRules, "rules", nil, "explicit rule ids to apply (namespace/id, * wildcards allowed)")
	redactCmd.Flags().StringVar(&redactHintStrategy, "strategy-hint", "", "hint strategy: strict, loose, or none")
	redactCmd.Flags().BoolVar(&redactJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "redact")
	defer span.End()

	strategy := detect.Strategy(redactStrategy)
	if !strategy.Valid() {
		return fmt.Errorf("unknown strategy %q (mask, hash, tokenize, or fake)", redactStrategy)
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := configFromViper()
	if err != nil {
		return err
	}
	if redactMaskChar != "" {
		cfg.MaskChar = redactMaskChar
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	opts, err := buildFindOptions(redactNamespaces, redactKeywords, redactCategories, redactRules, redactHintStrategy)
	if err != nil {
		return err
	}

	res, err := engine.Redact(ctx, text, strategy, opts...)
	if err != nil {
		return fmt.Errorf("redacting: %w", err)
	}

	log.Info().Int("replaced", res.Count).Str("strategy", string(strategy)).Msg("redaction complete")

	out := cmd.OutOrStdout()
	if redactJSON {
		return writeIndentedJSON(out, res)
	}
	fmt.Fprintln(out, res.Redacted)
	return nil
}
