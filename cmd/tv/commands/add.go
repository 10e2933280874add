package commands

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"hashvault/pkg/ignore"
	"hashvault/pkg/types"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Add file contents to the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmdContext(cmd)
		out := cmd.OutOrStdout()
		start := time.Now()

		matcher, err := ignore.NewMatcher(workTree())
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", ignore.IgnoreFile, err)
		}

		var (
			addedCount int
			reused     int
			totalSize  int64
		)

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := repoRelative(path)
			if err != nil {
				return err
			}

			if matcher.Matches(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			// 目录本身不需要 add，TreeBuilder 会根据文件路径重建目录
			if d.IsDir() {
				return nil
			}

			res, err := stageFile(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", rel, err)
			}
			TV.Index.Add(rel, res.root, res.size)

			addedCount++
			totalSize += res.size
			if res.reused {
				reused++
			}
			fmt.Fprintf(out, "add %s %s (%s)\n", res.root.Short(), rel, humanize.IBytes(uint64(res.size)))
			return nil
		}

		for _, target := range args {
			if err := filepath.WalkDir(target, walkFn); err != nil {
				return fmt.Errorf("walk failed: %w", err)
			}
		}

		if addedCount == 0 {
			fmt.Fprintln(out, "⚠️  No files added.")
			return nil
		}
		if err := TV.Index.Save(); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
		fmt.Fprintf(out, "✅ Added %d files (%s, %d unchanged) in %s\n",
			addedCount, humanize.IBytes(uint64(totalSize)), reused, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

type stageResult struct {
	root   types.Hash
	size   int64
	reused bool
}

// stageFile 先算整个文件的 SHA-256 去元数据库查索引：命中就跳过切分与上传
func stageFile(ctx context.Context, path string) (stageResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return stageResult{}, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return stageResult{}, err
	}
	sum, err := types.FromBytes(h.Sum(nil))
	if err != nil {
		return stageResult{}, err
	}
	linear := types.LinearHash(sum)

	if root, ok := lookupFileIndex(ctx, linear, size); ok {
		return stageResult{root: root, size: size, reused: true}, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return stageResult{}, err
	}
	res, err := TV.Ingester.Ingest(ctx, f)
	if err != nil {
		return stageResult{}, err
	}

	// 索引写失败只影响下次的秒传
	if err := TV.Meta.SaveFileIndex(ctx, res.Linear, res.Node.ID(), res.Node.TotalSize); err != nil {
		log.Warn().Err(err).Str("linear", res.Linear.String()).Msg("failed to save file index")
	}
	return stageResult{root: res.Node.ID(), size: res.Node.TotalSize}, nil
}

// lookupFileIndex 索引存在、大小一致且对象仍在存储中才算命中
func lookupFileIndex(ctx context.Context, linear types.LinearHash, size int64) (types.Hash, bool) {
	idx, err := TV.Meta.GetFileIndex(ctx, linear)
	if err != nil {
		log.Warn().Err(err).Msg("file index lookup failed")
		return types.Hash{}, false
	}
	if idx == nil {
		return types.Hash{}, false
	}
	if idx.SizeBytes != size {
		log.Warn().
			Str("linear", linear.String()).
			Int64("indexed", idx.SizeBytes).
			Int64("actual", size).
			Msg("file index size mismatch, re-ingesting")
		return types.Hash{}, false
	}
	ok, err := TV.Store.Has(ctx, idx.MerkleRoot)
	if err != nil || !ok {
		log.Warn().Err(err).Str("root", idx.MerkleRoot.String()).Msg("indexed file node missing from store")
		return types.Hash{}, false
	}
	return idx.MerkleRoot, true
}

func init() {
	rootCmd.AddCommand(addCmd)
}
