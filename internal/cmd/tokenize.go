package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/token"
)

var (
	tokenizeStable     bool
	tokenizeNamespaces []string
	tokenizeMapOut     string

	detokenizeMapIn   string
	detokenizePartial bool
)

// tokenMapFile is the on-disk shape of a token map: the pairs plus an
// integrity digest detokenize verifies before restoring.
type tokenMapFile struct {
	Tokens map[string]string `json:"tokens"`
	Digest string            `json:"digest,omitempty"`
}

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text]",
	Short: "Replace sensitive data with reversible tokens",
	Long: `Scans the argument (or stdin when the argument is "-" or absent) and
replaces every match with a token reference.

With --map-out the tokenized text goes to stdout and the token map (the only
way back to the originals, so treat it as sensitive) is written to the given
file. Without it the text, map, and digest are emitted together as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

var detokenizeCmd = &cobra.Command{
	Use:   "detokenize [text]",
	Short: "Restore tokenized text from a token map",
	Long: `Replaces token references in the argument (or stdin) with their
original values from the map written by tokenize. The map's digest is
verified first. --partial marks the text as a fragment of the tokenized
output, silencing warnings for map tokens it does not contain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetokenize,
}

func init() {
	tokenizeCmd.Flags().BoolVar(&tokenizeStable, "stable", false, "derive tokens from value digests so equal values get equal tokens")
	tokenizeCmd.Flags().StringSliceVar(&tokenizeNamespaces, "namespaces", nil, "restrict scanning to these namespaces (e.g. kr,us)")
	tokenizeCmd.Flags().StringVar(&tokenizeMapOut, "map-out", "", "write the token map as JSON to this file")
	rootCmd.AddCommand(tokenizeCmd)

	detokenizeCmd.Flags().StringVar(&detokenizeMapIn, "map-in", "", "token map file written by tokenize (required)")
	detokenizeCmd.Flags().BoolVar(&detokenizePartial, "partial", false, "treat the text as a fragment, skipping warnings for absent tokens")
	_ = detokenizeCmd.MarkFlagRequired("map-in")
	rootCmd.AddCommand(detokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "tokenize")
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
	tk, err := token.New(engine, token.WithStableTokens(tokenizeStable))
	if err != nil {
		return fmt.Errorf("building tokenizer: %w", err)
	}

	var opts []detect.FindOption
	if len(tokenizeNamespaces) > 0 {
		opts = append(opts, detect.InNamespaces(tokenizeNamespaces...))
	}

	tokenized, m, err := tk.Tokenize(ctx, text, opts...)
	if err != nil {
		return fmt.Errorf("tokenizing: %w", err)
	}

	log.Info().Int("tokens", m.Len()).Bool("stable", tokenizeStable).Msg("tokenization complete")

	out := cmd.OutOrStdout()
	if tokenizeMapOut == "" {
		return writeIndentedJSON(out, map[string]interface{}{
			"text":   tokenized,
			"tokens": m.Pairs(),
			"digest": m.Digest(),
			"count":  m.Len(),
		})
	}

	data, err := json.MarshalIndent(tokenMapFile{Tokens: m.Pairs(), Digest: m.Digest()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token map: %w", err)
	}
	// The map holds the original values, so keep it owner-only.
	if err := os.WriteFile(tokenizeMapOut, data, 0o600); err != nil {
		return fmt.Errorf("writing token map: %w", err)
	}
	fmt.Fprintln(out, tokenized)
	return nil
}

func runDetokenize(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "detokenize")
	defer span.End()

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(detokenizeMapIn)
	if err != nil {
		return fmt.Errorf("reading token map: %w", err)
	}
	var mf tokenMapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parsing token map: %w", err)
	}
	if len(mf.Tokens) == 0 {
		return fmt.Errorf("token map %s holds no tokens", detokenizeMapIn)
	}

	m := token.FromPairs(mf.Tokens)
	if mf.Digest != "" && !m.Verify(mf.Digest) {
		return fmt.Errorf("token map does not match its digest, refusing to restore")
	}

	fmt.Fprintln(cmd.OutOrStdout(), token.Detokenize(text, m, detokenizePartial))
	return nil
}
