package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/klauspost/compress/zstd"
)

// Adapter 实现了 storage.Store 接口
type Adapter struct {
	rootPath string // 比如: /home/user/.tv/objects
	compress bool
}

type Option func(*Adapter)

// WithCompression 写入时使用 zstd 压缩，读取时透明解压
// 同一个仓库必须始终使用同一种设置
func WithCompression() Option {
	return func(a *Adapter) { a.compress = true }
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string, opts ...Option) (*Adapter, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	a := &Adapter{rootPath: root}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// layout 返回哈希对应的物理路径
// 策略：使用前 2 个字符作为子目录 (Sharding)
// Example: hash "AABBCC..." -> root/AA/BBCC...
func (s *Adapter) layout(hash types.Hash) string {
	str := hash.String()
	return filepath.Join(s.rootPath, str[:2], str[2:])
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	targetPath := s.layout(obj.ID())

	// 1. 已存在直接跳过 (幂等)
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	}

	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 2. 原子写入：先写临时文件再 Rename
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if err := s.writeTo(tempFile, obj.Bytes()); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) writeTo(w io.Writer, data []byte) error {
	if !s.compress {
		_, err := w.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	f, err := os.Open(s.layout(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.compress {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (r *zstdReadCloser) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *zstdReadCloser) Close() error {
	r.dec.Close()
	return r.f.Close()
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 在分片目录中按前缀查找
func (s *Adapter) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	p := prefix.String()
	if len(p) < types.MinPrefixSize {
		return types.Hash{}, types.ErrPrefixTooShort
	}

	entries, err := os.ReadDir(filepath.Join(s.rootPath, p[:2]))
	if os.IsNotExist(err) {
		return types.Hash{}, fmt.Errorf("%w: %s", storage.ErrNotFound, p)
	}
	if err != nil {
		return types.Hash{}, err
	}

	var found []types.Hash
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		// 忽略临时文件等非哈希文件名
		h, err := types.ParseHash(p[:2] + e.Name())
		if err != nil || !prefix.Match(h) {
			continue
		}
		found = append(found, h)
		if len(found) > 1 {
			return types.Hash{}, fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, p)
		}
	}

	if len(found) == 0 {
		return types.Hash{}, fmt.Errorf("%w: %s", storage.ErrNotFound, p)
	}
	return found[0], nil
}
