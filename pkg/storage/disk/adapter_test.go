package disk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 模拟一个简单的 Object 实现，用于测试
type mockObject struct {
	id   types.Hash
	data []byte
}

func (m mockObject) ID() types.Hash        { return m.id }
func (m mockObject) Bytes() []byte         { return m.data }
func (m mockObject) Type() core.ObjectType { return core.TypeChunk }

func mustHash(t *testing.T, s string) types.Hash {
	t.Helper()
	h, err := types.ParseHash(s)
	require.NoError(t, err)
	return h
}

func TestDiskAdapter(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	obj := mockObject{
		id:   mustHash(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"),
		data: []byte("hello world"),
	}

	require.NoError(t, store.Put(ctx, obj))
	// 重复写入是幂等的
	require.NoError(t, store.Put(ctx, obj))

	// 路径使用大写渲染: tmpDir/2C/F24DBA...
	expectedPath := filepath.Join(tmpDir, "2C", "F24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824")
	_, err = os.Stat(expectedPath)
	assert.NoError(t, err, "文件应该存在于 Sharding 目录中")

	exists, err := store.Has(ctx, obj.id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Has(ctx, types.Sum256("missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	reader, err := store.Get(ctx, obj.id)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), content)

	_, err = store.Get(ctx, types.Sum256("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiskAdapter_Compression(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir, WithCompression())
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte(strings.Repeat("compress me ", 1000))
	obj := mockObject{id: types.Sum256(data), data: data}
	require.NoError(t, store.Put(ctx, obj))

	info, err := os.Stat(store.layout(obj.id))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(data)), "落盘数据应被压缩")

	got, err := storage.ReadAll(ctx, store, obj.id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDiskAdapter_ExpandHash(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	// 构造两个 Hash 前缀相似的对象
	objA := mockObject{id: mustHash(t, "1111aaaa00000000000000000000000000000000000000000000000000000000"), data: []byte("A")}
	objB := mockObject{id: mustHash(t, "1111bbbb00000000000000000000000000000000000000000000000000000000"), data: []byte("B")}
	objC := mockObject{id: mustHash(t, "2222cccc00000000000000000000000000000000000000000000000000000000"), data: []byte("C")}

	require.NoError(t, store.Put(ctx, objA))
	require.NoError(t, store.Put(ctx, objB))
	require.NoError(t, store.Put(ctx, objC))

	tests := []struct {
		name     string
		input    string
		wantHash types.Hash
		wantErr  error
	}{
		{"Exact match", objC.id.String(), objC.id, nil},
		{"Unique prefix (4 chars)", "2222", objC.id, nil},
		{"Unique prefix lowercase", "2222cccc", objC.id, nil},
		{"Ambiguous prefix", "1111", types.Hash{}, storage.ErrAmbiguousHash},
		{"Not found", "ffff", types.Hash{}, storage.ErrNotFound},
		{"Too short", "123", types.Hash{}, types.ErrPrefixTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.Resolve(ctx, store, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHash, got)
		})
	}
}
