package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [files...]",
	Short: "Remove files from the staging area (index)",
	Long:  `Unstage files from the index. Files on disk are left untouched, but they will not be part of the next commit.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		out := cmd.OutOrStdout()

		count := 0
		for _, path := range args {
			rel, err := repoRelative(path)
			if err != nil {
				return err
			}
			if _, ok := TV.Index.Get(rel); !ok {
				fmt.Fprintf(out, "not staged: %s\n", rel)
				continue
			}
			TV.Index.Remove(rel)
			fmt.Fprintf(out, "Unstaged: %s\n", rel)
			count++
		}

		if count == 0 {
			return nil
		}
		if err := TV.Index.Save(); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
		fmt.Fprintf(out, "✅ Removed %d files from index.\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
