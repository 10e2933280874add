package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hashvault/pkg/exporter"
	"hashvault/pkg/index"
	"hashvault/pkg/refs"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errDirtyIndex 暂存区里有尚未提交的内容
var errDirtyIndex = errors.New("index has changes not in HEAD; commit them or use --force")

var checkoutForce bool

var checkoutCmd = &cobra.Command{
	Use:   "checkout [commit-hash]",
	Short: "Restore working tree files",
	Long: `Overwrite the working tree with the content from the specified commit. The index is reset to match the commit.
Refuses to run while the index holds changes that HEAD does not have, unless --force is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmdContext(cmd)
		out := cmd.OutOrStdout()
		start := time.Now()

		if !checkoutForce {
			if err := ensureIndexClean(ctx); err != nil {
				return err
			}
		}

		commitHash, err := storage.Resolve(ctx, TV.Store, args[0])
		if err != nil {
			return fmt.Errorf("invalid commit '%s': %w", args[0], err)
		}
		commit, err := loadCommit(ctx, commitHash)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "🔄 Checking out %s (Author: %s)...\n", commitHash.Short(), commit.Author)

		// 覆盖工作区，还原过程中重建 Index
		TV.Index.Reset()

		root := workTree()
		var restoreErr error
		onRestore := func(path string, hash types.Hash, size int64) {
			rel, err := repoRelative(path)
			if err != nil {
				restoreErr = errors.Join(restoreErr, err)
				return
			}
			TV.Index.Add(rel, hash, size)
		}

		exp := exporter.NewExporter(TV.Store)
		if err := exp.RestoreTree(ctx, commit.TreeCid.Hash, root, onRestore); err != nil {
			return fmt.Errorf("checkout failed: %w", err)
		}
		if restoreErr != nil {
			return restoreErr
		}
		if err := TV.Index.Save(); err != nil {
			return fmt.Errorf("failed to update index: %w", err)
		}

		// Detached HEAD
		_, ver, err := TV.Refs.GetHead(ctx)
		if err != nil && !errors.Is(err, refs.ErrNoHead) {
			return err
		}
		if err := TV.Refs.UpdateHead(ctx, commitHash, ver); err != nil {
			return fmt.Errorf("failed to update HEAD: %w", err)
		}
		log.Debug().Str("commit", commitHash.String()).Msg("HEAD moved")

		fmt.Fprintf(out, "✅ Switched to commit %s in %s\n", commitHash.Short(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// ensureIndexClean 暂存区为空，或者与 HEAD 的树完全一致
func ensureIndexClean(ctx context.Context) error {
	if TV.Index.IsEmpty() {
		return nil
	}
	head, _, err := TV.Refs.GetHead(ctx)
	if errors.Is(err, refs.ErrNoHead) {
		return errDirtyIndex
	}
	if err != nil {
		return err
	}
	c, err := loadCommit(ctx, head)
	if err != nil {
		return err
	}
	files, err := exporter.NewExporter(TV.Store).ListFiles(ctx, c.TreeCid.Hash)
	if err != nil {
		return fmt.Errorf("failed to list HEAD tree: %w", err)
	}
	if index.StateRootOf(files) != TV.Index.StateRoot() {
		return errDirtyIndex
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	checkoutCmd.Flags().BoolVarP(&checkoutForce, "force", "f", false, "discard staged changes")
}
