package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"
)

// ErrCorruptChunk 读出的块内容与其哈希不符
var ErrCorruptChunk = errors.New("chunk content does not match its hash")

// ErrPathEscape 还原路径跑出了目标目录
var ErrPathEscape = errors.New("restore path escapes target directory")

type Exporter struct {
	store storage.Store
}

func NewExporter(store storage.Store) *Exporter {
	return &Exporter{store: store}
}

func (e *Exporter) readFileNode(ctx context.Context, hash types.Hash) (*core.FileNode, error) {
	data, err := storage.ReadAll(ctx, e.store, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get filenode %s: %w", hash.Short(), err)
	}
	node, err := core.DecodeFileNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode filenode %s: %w", hash.Short(), err)
	}
	return node, nil
}

// ExportFile 根据 FileNode 的 Hash，将还原的文件写入 writer
// 每个块在写出前都会校验哈希
func (e *Exporter) ExportFile(ctx context.Context, hash types.Hash, writer io.Writer) error {
	fileNode, err := e.readFileNode(ctx, hash)
	if err != nil {
		return err
	}

	for i, link := range fileNode.Chunks {
		data, err := storage.ReadAll(ctx, e.store, link.Cid.Hash)
		if err != nil {
			return fmt.Errorf("failed to get chunk %d: %w", i, err)
		}
		if core.CalculateBlobHash(data) != link.Cid.Hash {
			return fmt.Errorf("chunk %d (%s): %w", i, link.Cid.Hash.Short(), ErrCorruptChunk)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("failed to write chunk %d data: %w", i, err)
		}
	}

	return nil
}

type RestoreCallback func(path string, hash types.Hash, size int64)

func (e *Exporter) readTree(ctx context.Context, treeHash types.Hash) (*core.Tree, error) {
	treeBytes, err := storage.ReadAll(ctx, e.store, treeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s: %w", treeHash.Short(), err)
	}
	tree, err := core.DecodeTree(treeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tree %s: %w", treeHash.Short(), err)
	}
	return tree, nil
}

// RestoreTree 递归地将 Merkle Tree 还原到目标目录
// 任何条目都不能写到 targetDir 之外
func (e *Exporter) RestoreTree(ctx context.Context, treeHash types.Hash, targetDir string, onRestore RestoreCallback) error {
	tree, err := e.readTree(ctx, treeHash)
	if err != nil {
		return err
	}

	for _, entry := range tree.Entries {
		fullPath, err := joinWithin(targetDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.Type == core.EntryDir {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", fullPath, err)
			}
			if err := e.RestoreTree(ctx, entry.Cid.Hash, fullPath, onRestore); err != nil {
				return err
			}
			continue
		}

		if err := e.restoreFile(ctx, entry.Cid.Hash, fullPath); err != nil {
			return err
		}
		// 通知上层更新 Index
		if onRestore != nil {
			onRestore(fullPath, entry.Cid.Hash, entry.Size)
		}
	}

	return nil
}

// ListFiles 展开整棵树，返回 "a/b.txt" 形式的相对路径到 FileNode Hash 的映射
func (e *Exporter) ListFiles(ctx context.Context, treeHash types.Hash) (map[string]types.Hash, error) {
	files := make(map[string]types.Hash)
	var walk func(h types.Hash, prefix string) error
	walk = func(h types.Hash, prefix string) error {
		tree, err := e.readTree(ctx, h)
		if err != nil {
			return err
		}
		for _, entry := range tree.Entries {
			p := path.Join(prefix, entry.Name)
			if entry.Type == core.EntryDir {
				if err := walk(entry.Cid.Hash, p); err != nil {
					return err
				}
				continue
			}
			files[p] = entry.Cid.Hash
		}
		return nil
	}
	if err := walk(treeHash, ""); err != nil {
		return nil, err
	}
	return files, nil
}

// joinWithin 拼接路径并确认结果仍在 dir 之下
func joinWithin(dir, name string) (string, error) {
	if err := core.ValidateEntryName(name); err != nil {
		return "", err
	}
	full := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, name)
	}
	return full, nil
}

func (e *Exporter) restoreFile(ctx context.Context, hash types.Hash, dst string) error {
	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", dst, err)
	}
	if err := e.ExportFile(ctx, hash, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
