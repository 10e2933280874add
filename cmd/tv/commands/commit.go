package commands

import (
	"errors"
	"fmt"
	"time"

	"hashvault/pkg/core"
	"hashvault/pkg/refs"
	"hashvault/pkg/treebuilder"
	"hashvault/pkg/types"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var commitMsg string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record changes to the repository",
	Long:  `Create a new commit containing the current contents of the index and the given log message describing the changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("application not initialized")
		}
		if commitMsg == "" {
			return fmt.Errorf("commit message cannot be empty (use -m)")
		}
		out := cmd.OutOrStdout()

		if TV.Index.IsEmpty() {
			fmt.Fprintln(out, "nothing to commit, working tree clean")
			return nil
		}

		ctx := cmdContext(cmd)
		start := time.Now()

		// Phase 1: 构建 Merkle Tree
		rootTreeHash, err := treebuilder.NewBuilder(TV.Store).Build(ctx, TV.Index)
		if err != nil {
			return fmt.Errorf("failed to build tree: %w", err)
		}
		log.Debug().Str("tree", rootTreeHash.String()).Msg("tree built")

		// Phase 2: Parent (HEAD)
		var parents []types.Hash
		parentHash, headVersion, err := TV.Refs.GetHead(ctx)
		switch {
		case err == nil:
			parents = []types.Hash{parentHash}
		case errors.Is(err, refs.ErrNoHead):
			fmt.Fprintln(out, "🌱 Initial Commit")
		default:
			return fmt.Errorf("failed to resolve HEAD: %w", err)
		}

		author := viper.GetString("user.name")
		if author == "" {
			author = "hashvault user"
		}

		// Phase 3: 创建并存储 Commit 对象
		commitObj, err := core.NewCommit(rootTreeHash, parents, author, commitMsg)
		if err != nil {
			return fmt.Errorf("failed to create commit object: %w", err)
		}
		if err := TV.Store.Put(ctx, commitObj); err != nil {
			return fmt.Errorf("failed to store commit: %w", err)
		}
		if err := TV.Meta.IndexCommit(ctx, commitObj); err != nil {
			return fmt.Errorf("failed to index commit: %w", err)
		}

		// Phase 4: 移动 HEAD (乐观锁)
		if err := TV.Refs.UpdateHead(ctx, commitObj.ID(), headVersion); err != nil {
			if errors.Is(err, refs.ErrStaleHead) {
				return fmt.Errorf("commit %s was stored but not recorded: %w", commitObj.ID().Short(), err)
			}
			return fmt.Errorf("failed to update HEAD: %w", err)
		}

		// Phase 5: 清空暂存区
		TV.Index.Reset()
		if err := TV.Index.Save(); err != nil {
			// Commit 已经成功，只打印警告
			log.Warn().Err(err).Msg("failed to clear index")
		}

		fmt.Fprintf(out, "✅ [%s] %s\n", commitObj.ID().Short(), commitMsg)
		fmt.Fprintf(out, "   Time: %s | Author: %s\n", time.Since(start).Round(time.Millisecond), author)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "commit message")
}
