package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <rule-id> [value]",
	Short: "Validate a value against one rule",
	Long: `Checks whether the value (or stdin when the value is "-" or absent)
fully matches the rule's expression and passes its verification function.
Exits 1 when the value is invalid.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "validate")
	defer span.End()

	ruleID := args[0]
	value, err := readInput(cmd, args[1:])
	if err != nil {
		return err
	}

	cfg, err := configFromViper()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	res, err := engine.Validate(ctx, value, ruleID)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	out := cmd.OutOrStdout()
	if !res.Valid {
		fmt.Fprintf(out, "✗ Not a valid %s value\n", ruleID)
		return fmt.Errorf("validation failed: value does not match %s", ruleID)
	}

	log.Debug().Str("rule", ruleID).Msg("value validated")
	fmt.Fprintf(out, "✓ Valid %s value\n", ruleID)
	if res.Match != nil {
		fmt.Fprintf(out, "  Category: %s\n", res.Match.Category)
		fmt.Fprintf(out, "  Severity: %s\n", res.Match.Severity)
	}
	return nil
}
