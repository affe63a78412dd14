// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubcite/internal/annotate"
	"github.com/pdiddy/pubcite/internal/sanitize"
	"github.com/pdiddy/pubcite/internal/store"
	"github.com/pdiddy/pubcite/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <document>",
	Short: "Annotate a document body with citation validity markup",
	Long: `Annotate reads a rendered document body, locates every supplied citation
occurrence, and wraps it with semantic markup reflecting its validity state.
Citation, reference, and change-record snapshots come from a fixture YAML
file (--fixtures) or from the snapshot database.

The annotated markup passes through the allow-list sanitizer before output
unless --no-sanitize is given. A summary of unmatched and orphaned citations
is printed to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("fixtures", "", "fixture YAML with citations, references, and changes")
	annotateCmd.Flags().String("out", "", "output file (default: stdout)")
	annotateCmd.Flags().Bool("no-sanitize", false, "skip the allow-list sanitizer")
	annotateCmd.Flags().Bool("verbose", false, "print per-citation diagnostics to stderr")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document %s: %w", args[0], err)
	}

	citations, refs, changes, err := loadInputs(cmd)
	if err != nil {
		return err
	}

	tracer := annotate.NopTracer
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		tracer = annotate.NewWriterTracer(os.Stderr)
	}

	out := annotate.Annotate(string(body), citations, refs, changes, tracer)

	if noSanitize, _ := cmd.Flags().GetBool("no-sanitize"); !noSanitize {
		out, err = sanitize.Clean(out)
		if err != nil {
			return fmt.Errorf("sanitizing output: %w", err)
		}
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		fmt.Fprint(os.Stdout, out)
	} else if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output %s: %w", outPath, err)
	}

	summary := annotate.Summarize(citations, refs, changes)
	fmt.Fprintf(os.Stderr, "annotated: %d unmatched, %d orphaned\n",
		summary.UnmatchedCount, summary.OrphanedCount)
	return nil
}

// loadInputs reads the citation, reference, and change snapshots from the
// fixture file when given, otherwise from the snapshot database.
func loadInputs(cmd *cobra.Command) ([]types.Citation, []types.ReferenceEntry, []types.ChangeRecord, error) {
	if path, _ := cmd.Flags().GetString("fixtures"); path != "" {
		f, err := store.ReadFixture(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return f.Citations, f.References, f.Changes, nil
	}

	s, err := store.Open(types.StoreConfig{DBPath: dbPath()})
	if err != nil {
		return nil, nil, nil, err
	}
	defer s.Close()

	ctx := context.Background()
	citations, refs, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	changes, err := s.LoadChanges(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return citations, refs, changes, nil
}
