package index

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"hashvault/pkg/interop"
	"hashvault/pkg/smt"
	"hashvault/pkg/types"
)

// Entry 代表暂存区中的一条记录
type Entry struct {
	Path       string     `json:"path"`        // 相对路径 (如 "data/model.bin")
	Hash       types.Hash `json:"hash"`        // FileNode 的 Hash (Merkle Root)
	Size       int64      `json:"size"`        // 文件大小
	ModifiedAt time.Time  `json:"modified_at"` // 修改时间
}

// Index 管理暂存区状态
type Index struct {
	path    string           // 物理文件路径 (.tv/index)
	Entries map[string]Entry `json:"entries"`
	mu      sync.RWMutex
}

// NewIndex 加载或创建一个新的 Index
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{
		path:    indexPath,
		Entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(indexPath)
	switch {
	case os.IsNotExist(err):
		return idx, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("corrupted index file: %w", err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]Entry)
	}
	return idx, nil
}

// Add 更新一条记录
func (i *Index) Add(path string, hash types.Hash, size int64) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	i.Entries[key] = Entry{
		Path:       key,
		Hash:       hash,
		Size:       size,
		ModifiedAt: time.Now(),
	}
}

// Get 查询一条记录
func (i *Index) Get(path string) (Entry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.Entries[CleanPath(path)]
	return e, ok
}

// Save 将暂存区持久化到磁盘 (Indented JSON，方便人工查看)
func (i *Index) Save() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(i.path, data, 0644)
}

// Snapshot 返回当前 Entry 的副本，用于并发安全的读取
func (i *Index) Snapshot() map[string]Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(map[string]Entry, len(i.Entries))
	maps.Copy(snap, i.Entries)
	return snap
}

// Paths 返回排序后的全部路径
func (i *Index) Paths() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	paths := make([]string, 0, len(i.Entries))
	for p := range i.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Entries = make(map[string]Entry)
}

// IsEmpty 检查暂存区是否有内容
func (i *Index) IsEmpty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.Entries) == 0
}

func (i *Index) Remove(path string) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Entries, key)
}

// StateRoot 返回暂存区的稀疏 Merkle 根
// 与 Tree 对象不同，它不需要写入存储就能比较两个暂存区是否一致。
func (i *Index) StateRoot() types.Hash {
	i.mu.RLock()
	files := make(map[string]types.Hash, len(i.Entries))
	for path, e := range i.Entries {
		files[path] = e.Hash
	}
	i.mu.RUnlock()
	return StateRootOf(files)
}

// StateRootOf 对任意 路径 -> FileNode Hash 集合计算同样的根
// 叶子: Sum256(path) -> Hash。空集合得到零哈希。
func StateRootOf(files map[string]types.Hash) types.Hash {
	tree := smt.New[interop.TreeValue]()
	for path, h := range files {
		tree.Update(interop.ToTreeHash(types.Sum256(path)), interop.NewTreeValue(h))
	}
	return interop.FromTreeHash(tree.Root())
}

func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
