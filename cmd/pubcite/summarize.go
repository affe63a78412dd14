// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubcite/internal/annotate"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print unmatched/orphaned citation counts for UI badges",
	Long: `Summarize re-runs the validity classifier over the citation snapshot
without rewriting any markup and prints the unmatched and orphaned counts
as YAML on stdout.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("fixtures", "", "fixture YAML with citations, references, and changes")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	citations, refs, changes, err := loadInputs(cmd)
	if err != nil {
		return err
	}

	summary := annotate.Summarize(citations, refs, changes)
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	fmt.Fprint(os.Stdout, string(data))
	return nil
}
