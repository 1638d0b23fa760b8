package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

const configTemplate = `# datadetector configuration
# Every key can also be set via DATADETECTOR_* env vars,
# e.g. DATADETECTOR_SERVER_LISTEN=":9090".
patterns:
  # Rule sources replacing the embedded defaults. Uncomment to customize.
  # paths: [./patterns.custom.yml]
  watch: false
server:
  listen: ":8080"
  # api_keys: [change-me]
  rate_limit_rps: 0
redact:
  mask_char: "*"
  digest: sha256
  # salt: set-me-for-stable-hashes
normalize:
  enabled: true
log:
  level: info
`

const patternTemplate = `namespace: custom
description: Project-specific detection rules
patterns:
  - id: employee_id_01
    category: custom
    pattern: 'EMP-\d{6}'
    mask: 'EMP-******'
    policy: {action: redact, store_raw: false, severity: medium}
    examples:
      match: ['EMP-123456']
      nomatch: ['EMP-12']
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write starter configuration files",
	Long:  "Creates datadetector.config.yaml and patterns.custom.yml in the current directory as commented starting points.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "init")
	defer span.End()

	out := cmd.OutOrStdout()
	files := []struct {
		name    string
		content string
	}{
		{"datadetector.config.yaml", configTemplate},
		{"patterns.custom.yml", patternTemplate},
	}

	for _, f := range files {
		if _, err := os.Stat(f.name); err == nil && !initForce {
			fmt.Fprintf(out, "- %s exists, skipping (use --force to overwrite)\n", f.name)
			continue
		}
		if err := os.WriteFile(f.name, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		fmt.Fprintf(out, "✓ Wrote %s\n", f.name)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  datadetector doctor")
	fmt.Fprintln(out, "  datadetector scan \"your text\"")
	return nil
}
