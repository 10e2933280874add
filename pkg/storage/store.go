package storage

import (
	"context"
	"errors"
	"io"

	"hashvault/pkg/core"
	"hashvault/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
)

// Store defines the interface for a storage backend.
// Implementations can be local disk, cloud storage, or in-memory storage.
type Store interface {
	// Put 将一个核心对象持久化
	// 它不需要返回 Hash，因为 Hash 已经在 core.Object 里了
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始数据
	// 返回 io.ReadCloser 以支持大文件的流式读取
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把短哈希扩展成完整哈希
	// 没有匹配返回 ErrNotFound，多个匹配返回 ErrAmbiguousHash
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)
}

// ReadAll 读取对象的全部字节
func ReadAll(ctx context.Context, s Store, hash types.Hash) ([]byte, error) {
	rc, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Resolve 接受完整哈希或短哈希
func Resolve(ctx context.Context, s Store, input string) (types.Hash, error) {
	prefix, err := types.ParseHashPrefix(input)
	if err != nil {
		return types.Hash{}, err
	}
	if prefix.IsFull() {
		return types.ParseHash(prefix.String())
	}
	return s.ExpandHash(ctx, prefix)
}
