package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/hint"
	"github.com/zafrem/data-detector/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run preflight checks (config, rule sources, keywords, engine)",
	Long:  "Verifies the configuration resolves, every rule source loads and self-tests, the keyword index parses, verification functions bind, and an engine can be built.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "doctor")
	defer span.End()

	out := cmd.OutOrStdout()
	ok := true

	// 1. Configuration resolves
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "✗ Config: %v\n", err)
		return fmt.Errorf("preflight checks failed")
	}
	fmt.Fprintf(out, "✓ Config: resolved (listen %s, digest %s)\n", cfg.Listen, cfg.Digest)

	// 2. Rule sources exist and load
	for _, p := range cfg.PatternPaths {
		if _, err := os.Stat(p); err != nil {
			fmt.Fprintf(out, "✗ Rule source: %s — not found\n", p)
			ok = false
		} else {
			fmt.Fprintf(out, "✓ Rule source: %s\n", p)
		}
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		fmt.Fprintf(out, "✗ Rules: %v\n", err)
		ok = false
	} else {
		fmt.Fprintf(out, "✓ Rules: %d loaded across %d namespaces\n", reg.Len(), len(reg.Namespaces()))

		// 3. Verification bindings resolved
		unresolved := 0
		for _, id := range reg.IDs() {
			r, _ := reg.Lookup(id)
			if r.VerifyName != "" && r.Verify == nil {
				fmt.Fprintf(out, "⚠ Verify: %s names unknown function %q (rule degrades to match-only)\n", id, r.VerifyName)
				unresolved++
			}
		}
		if unresolved == 0 {
			fmt.Fprintf(out, "✓ Verify: all declared functions resolved\n")
		}
	}

	// 4. Keyword index parses
	if cfg.KeywordPath != "" {
		idx, err := hint.LoadKeywordIndex(cfg.KeywordPath)
		if err != nil {
			fmt.Fprintf(out, "✗ Keywords: %s — %v\n", cfg.KeywordPath, err)
			ok = false
		} else {
			fmt.Fprintf(out, "✓ Keywords: %s (%d keywords, %d categories)\n", cfg.KeywordPath, len(idx.Keywords()), len(idx.Categories()))
		}
	} else {
		idx, err := hint.DefaultKeywordIndex()
		if err != nil {
			fmt.Fprintf(out, "✗ Keywords: embedded index — %v\n", err)
			ok = false
		} else {
			fmt.Fprintf(out, "✓ Keywords: embedded index (%d keywords, %d categories)\n", len(idx.Keywords()), len(idx.Categories()))
		}
	}

	// 5. Engine builds with the resolved options
	if reg != nil {
		opts, err := engineOptions(cfg)
		if err == nil {
			_, err = detect.New(reg, opts...)
		}
		if err != nil {
			fmt.Fprintf(out, "✗ Engine: %v\n", err)
			ok = false
		} else {
			fmt.Fprintf(out, "✓ Engine: builds (normalize %v, mask %q)\n", cfg.Normalize, cfg.MaskChar)
		}
	}

	if !ok {
		return fmt.Errorf("preflight checks failed")
	}
	fmt.Fprintf(out, "\nAll checks passed.\n")
	return nil
}
