package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"hashvault/pkg/refs"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show HEAD and the staged files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmdContext(cmd)
		out := cmd.OutOrStdout()

		head, _, err := TV.Refs.GetHead(ctx)
		switch {
		case errors.Is(err, refs.ErrNoHead):
			fmt.Fprintln(out, "HEAD:  (no commits yet)")
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "HEAD:  %s\n", head)
		}

		if TV.Index.IsEmpty() {
			fmt.Fprintln(out, "nothing staged")
			return nil
		}
		// 暂存区状态根：路径集合与内容都相同时才相等
		fmt.Fprintf(out, "State: %s\n\n", TV.Index.StateRoot())

		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "HASH\tSIZE\tPATH")
		for _, p := range TV.Index.Paths() {
			e, _ := TV.Index.Get(p)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Hash.Short(), humanize.IBytes(uint64(e.Size)), p)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
