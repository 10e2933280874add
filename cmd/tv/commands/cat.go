package commands

import (
	"fmt"

	"hashvault/pkg/exporter"
	"hashvault/pkg/storage"

	"github.com/spf13/cobra"
)

var catPretty bool

var catCmd = &cobra.Command{
	Use:   "cat [hash]",
	Short: "Show file content or object structure by hash",
	Long: `Restore the file content of a FileNode to stdout (redirect to save binaries).
With -p, print the structure of any object (commit, tree, filenode or chunk) instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmdContext(cmd)

		hash, err := storage.Resolve(ctx, TV.Store, args[0])
		if err != nil {
			return fmt.Errorf("invalid object '%s': %w", args[0], err)
		}

		exp := exporter.NewExporter(TV.Store)
		if catPretty {
			return exp.PrintObject(ctx, hash, cmd.OutOrStdout())
		}
		if err := exp.ExportFile(ctx, hash, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVarP(&catPretty, "pretty", "p", false, "pretty-print the object structure")
}
