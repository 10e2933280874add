package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"hashvault/pkg/core"
	"hashvault/pkg/meta"
	"hashvault/pkg/refs"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/spf13/cobra"
)

var (
	logLimit  int
	logAuthor string
	logFromDB bool
)

var logCmd = &cobra.Command{
	Use:   "log [commit-hash]",
	Short: "Show commit logs",
	Long: `Display the commit history starting from the specified commit (or HEAD).
With --db or --author the history is queried from the metadata database instead of walking the object chain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmdContext(cmd)
		out := cmd.OutOrStdout()

		if logFromDB || logAuthor != "" {
			// gorm 里 -1 表示不限制
			limit := logLimit
			if limit <= 0 {
				limit = -1
			}
			var (
				models []meta.CommitModel
				err    error
			)
			if logAuthor != "" {
				models, err = TV.Meta.FindCommitsByAuthor(ctx, logAuthor, limit)
			} else {
				models, err = TV.Meta.ListCommits(ctx, limit)
			}
			if err != nil {
				return err
			}
			printCommitModels(out, models)
			return nil
		}

		var current types.Hash
		if len(args) > 0 {
			h, err := storage.Resolve(ctx, TV.Store, args[0])
			if err != nil {
				return fmt.Errorf("invalid commit argument '%s': %w", args[0], err)
			}
			current = h
		} else {
			head, _, err := TV.Refs.GetHead(ctx)
			if errors.Is(err, refs.ErrNoHead) {
				fmt.Fprintln(out, "No commits yet.")
				return nil
			}
			if err != nil {
				return err
			}
			current = head
		}

		// 只跟随第一个父节点，与 git log 的默认行为一致
		for n := 0; !current.IsZero() && (logLimit <= 0 || n < logLimit); n++ {
			c, err := loadCommit(ctx, current)
			if err != nil {
				return err
			}
			printCommitLog(out, c)

			current = types.Hash{}
			if len(c.Parents) > 0 {
				current = c.Parents[0].Hash
			}
		}
		return nil
	},
}

// loadCommit 读取并解码 Commit，类型不对时返回 *core.TypeMismatchError
func loadCommit(ctx context.Context, h types.Hash) (*core.Commit, error) {
	data, err := storage.ReadAll(ctx, TV.Store, h)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commit object %s: %w", h.Short(), err)
	}
	c, err := core.DecodeCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s is corrupted or not a commit: %w", h.Short(), err)
	}
	return c, nil
}

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func printCommitLog(w io.Writer, c *core.Commit) {
	fmt.Fprintf(w, "%scommit %s%s\n", colorYellow, c.ID(), colorReset)
	fmt.Fprintf(w, "Author: %s\n", c.Author)
	fmt.Fprintf(w, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format(time.RFC1123))
	fmt.Fprintf(w, "\n    %s\n\n", c.Message)
}

func printCommitModels(w io.Writer, models []meta.CommitModel) {
	for _, m := range models {
		fmt.Fprintf(w, "%scommit %s%s\n", colorYellow, m.Hash, colorReset)
		fmt.Fprintf(w, "Author: %s\n", m.Author)
		fmt.Fprintf(w, "Date:   %s\n", m.CreatedAt.Format(time.RFC1123))
		fmt.Fprintf(w, "\n    %s\n\n", m.Message)
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "max-count", "n", 0, "limit the number of commits to output")
	logCmd.Flags().StringVar(&logAuthor, "author", "", "only show commits by this author")
	logCmd.Flags().BoolVar(&logFromDB, "db", false, "list commits from the metadata database")
}
