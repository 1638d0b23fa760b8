package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/detect"
)

var (
	scanNamespaces   []string
	scanKeywords     []string
	scanCategories   []string
	scanRules        []string
	scanHintStrategy string
	scanIncludeRaw   bool
	scanOverlaps     bool
	scanJSON         bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [text]",
	Short: "Scan text for sensitive data",
	Long: `Scans the argument (or stdin when the argument is "-" or absent) and
prints every detected span with its rule, category, and severity.

Selection flags narrow the scan: --namespaces restricts by rule namespace,
while --keywords, --categories, and --rules feed the context filter the way a
caller who knows the field name would (e.g. --keywords ssn for a column named
user_ssn).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanNamespaces, "namespaces", nil, "restrict scanning to these namespaces (e.g. kr,us)")
	scanCmd.Flags().StringSliceVar(&scanKeywords, "keywords", nil, "context keywords hinting which rules apply")
	scanCmd.Flags().StringSliceVar(&scanCategories, "categories", nil, "context categories hinting which rules apply")
	scanCmd.Flags().StringSliceVar(&scanRules, "rules", nil, "explicit rule ids to apply (namespace/id, * wildcards allowed)")
	scanCmd.Flags().StringVar(&scanHintStrategy, "strategy-hint", "", "hint strategy: strict, loose, or none")
	scanCmd.Flags().BoolVar(&scanIncludeRaw, "include-raw", false, "include matched values where the rule policy permits")
	scanCmd.Flags().BoolVar(&scanOverlaps, "overlaps", false, "report overlapping matches instead of resolving them by priority")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "scan")
	defer span.End()

	text, err := readInput(cmd, args)
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

	opts, err := buildFindOptions(scanNamespaces, scanKeywords, scanCategories, scanRules, scanHintStrategy)
	if err != nil {
		return err
	}
	if scanIncludeRaw {
		opts = append(opts, detect.IncludeRaw())
	}
	if scanOverlaps {
		opts = append(opts, detect.AllowOverlaps())
	}

	res, err := engine.Find(ctx, text, opts...)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	log.Debug().Int("chars", len(text)).Int("matches", len(res.Matches)).Msg("scan complete")

	out := cmd.OutOrStdout()
	if scanJSON {
		return writeIndentedJSON(out, res)
	}
	if !res.HasMatches() {
		fmt.Fprintln(out, "No sensitive data found.")
		return nil
	}
	fmt.Fprintf(out, "%d match(es):\n", len(res.Matches))
	renderMatches(out, res.Matches)
	return nil
}
