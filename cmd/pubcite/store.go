// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubcite/internal/store"
	"github.com/pdiddy/pubcite/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage citation, reference, and change-record snapshots",
	Long: `Store manages the SQLite snapshot database that stands in for the
upstream detection service, reference store, and change tracker. Import
replaces all snapshots from a fixture YAML file; show prints what is
stored; clear-changes discards the transient change records after a
render has consumed them.`,
}

var storeImportCmd = &cobra.Command{
	Use:   "import <fixtures.yaml>",
	Short: "Replace stored snapshots from a fixture YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(types.StoreConfig{DBPath: dbPath()})
		if err != nil {
			return err
		}
		defer s.Close()

		citations, refs, changes, err := s.ImportYAML(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d citations, %d references, %d changes\n",
			citations, refs, changes)
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(types.StoreConfig{DBPath: dbPath()})
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		citations, refs, err := s.LoadSnapshot(ctx)
		if err != nil {
			return err
		}
		changes, err := s.LoadChanges(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("citations (%d):\n", len(citations))
		for _, c := range citations {
			fmt.Printf("  %-12s %q\n", c.ID, c.RawText)
		}
		fmt.Printf("references (%d):\n", len(refs))
		for _, r := range refs {
			fmt.Printf("  %3d. %v (%s)\n", r.Number, r.Authors, r.Year)
		}
		fmt.Printf("changes (%d):\n", len(changes))
		for _, ch := range changes {
			fmt.Printf("  %-12s %s: %q -> %q\n", ch.CitationID, ch.ChangeType, ch.OldText, ch.NewText)
		}
		return nil
	},
}

var storeClearChangesCmd = &cobra.Command{
	Use:   "clear-changes",
	Short: "Discard the transient change records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(types.StoreConfig{DBPath: dbPath()})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ClearChanges(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "change records cleared")
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeClearChangesCmd)

	rootCmd.AddCommand(storeCmd)
}
