package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/rules"
)

var (
	rulesNamespace      string
	rulesVerifyExamples bool
	rulesJSON           bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List loaded detection rules",
	Long: `Lists every rule in the active registry: the embedded defaults or the
sources named by --patterns / the config file.

--verify-examples replays each rule's bundled examples through the compiled
expression and its verification function, the same checks a load performs
plus the verification gate, and exits 1 when any rule fails.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesNamespace, "namespace", "", "list one namespace only (e.g. kr)")
	rulesCmd.Flags().BoolVar(&rulesVerifyExamples, "verify-examples", false, "replay bundled examples through expression and verification")
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "emit the listing as JSON")
	rootCmd.AddCommand(rulesCmd)
}

// ruleListing is the JSON shape of one listed rule.
type ruleListing struct {
	ID          string         `json:"id"`
	Category    rules.Category `json:"category"`
	Severity    rules.Severity `json:"severity"`
	Action      rules.Action   `json:"action"`
	Priority    int            `json:"priority"`
	Verify      string         `json:"verify,omitempty"`
	Description string         `json:"description,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "rules")
	defer span.End()

	cfg, err := configFromViper()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	var list []*rules.Rule
	if rulesNamespace != "" {
		list = reg.Namespace(rulesNamespace)
		if len(list) == 0 {
			return fmt.Errorf("no rules in namespace %q", rulesNamespace)
		}
	} else {
		for _, id := range reg.IDs() {
			r, _ := reg.Lookup(id)
			list = append(list, r)
		}
	}

	out := cmd.OutOrStdout()
	if rulesVerifyExamples {
		return verifyRuleExamples(out, list)
	}

	if rulesJSON {
		listing := make([]ruleListing, 0, len(list))
		for _, r := range list {
			listing = append(listing, ruleListing{
				ID:          r.FullID(),
				Category:    r.Category,
				Severity:    r.Policy.Severity,
				Action:      r.Policy.Action,
				Priority:    r.Priority,
				Verify:      r.VerifyName,
				Description: r.Description,
			})
		}
		return writeIndentedJSON(out, map[string]interface{}{
			"rules":   listing,
			"count":   len(listing),
			"version": reg.Version(),
		})
	}

	fmt.Fprintf(out, "%-28s %-13s %-8s %-6s %4s  %s\n", "ID", "CATEGORY", "SEVERITY", "ACTION", "PRI", "VERIFY")
	for _, r := range list {
		verifyName := "-"
		if r.VerifyName != "" {
			verifyName = r.VerifyName
		}
		fmt.Fprintf(out, "%-28s %-13s %-8s %-6s %4d  %s\n",
			r.FullID(), r.Category, r.Policy.Severity, r.Policy.Action, r.Priority, verifyName)
	}
	fmt.Fprintf(out, "\n%d rules (registry version %d)\n", len(list), reg.Version())
	return nil
}

// verifyRuleExamples replays each rule's bundled examples. Match examples
// must fully match and pass the rule's verification function; nomatch
// examples must not match at all.
func verifyRuleExamples(w io.Writer, list []*rules.Rule) error {
	checked, failed := 0, 0
	for _, r := range list {
		total := len(r.Examples.Match) + len(r.Examples.NoMatch)
		if total == 0 {
			fmt.Fprintf(w, "- %s: no examples\n", r.FullID())
			continue
		}
		checked++

		var problems []string
		for _, ex := range r.Examples.Match {
			switch {
			case !r.FullMatch(ex):
				problems = append(problems, fmt.Sprintf("match example %q does not match the expression", ex))
			case !r.Verified(ex):
				problems = append(problems, fmt.Sprintf("match example %q fails verification (%s)", ex, r.VerifyName))
			}
		}
		for _, ex := range r.Examples.NoMatch {
			if r.FullMatch(ex) {
				problems = append(problems, fmt.Sprintf("nomatch example %q matches the expression", ex))
			}
		}

		if len(problems) == 0 {
			fmt.Fprintf(w, "✓ %s (%d examples)\n", r.FullID(), total)
			continue
		}
		failed++
		for _, p := range problems {
			fmt.Fprintf(w, "✗ %s: %s\n", r.FullID(), p)
		}
	}

	fmt.Fprintf(w, "\n%d rules checked, %d failed\n", checked, failed)
	if failed > 0 {
		return fmt.Errorf("%d rules failed example checks", failed)
	}
	return nil
}
