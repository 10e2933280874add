package core

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"hashvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 1. Link 测试
// -----------------------------------------------------------------------------

func TestLink_Marshal_Compliance(t *testing.T) {
	link := NewLink(mockHash("test-content"))

	data, err := link.MarshalCBOR()
	require.NoError(t, err)

	// Tag 42 (0xd82a) + ByteString 33 bytes (0x5821) + Prefix (0x00)
	encodedHex := hex.EncodeToString(data)
	assert.Equal(t, "d82a582100", encodedHex[:10], "Link 序列化必须包含 Tag 42 和 0x00 前缀")
	assert.Equal(t, strings.ToLower(link.Hash.String()), encodedHex[10:])
}

func TestLink_Unmarshal_RoundTrip(t *testing.T) {
	original := mockHash("round-trip-test")
	data, err := NewLink(original).MarshalCBOR()
	require.NoError(t, err)

	var l2 Link
	require.NoError(t, l2.UnmarshalCBOR(data))
	assert.Equal(t, original, l2.Hash)
}

func TestLink_Unmarshal_Strictness(t *testing.T) {
	hashHex := strings.ToLower(mockHash("bad").String())

	tests := []struct {
		name    string
		input   string
		wantErr error
		errText string
	}{
		// Tag 42 + Bytes 32 (5820)，缺少 0x00
		{"Missing prefix", "d82a5820" + hashHex, ErrInvalidLink, "missing 0x00 multibase prefix"},
		// Tag 43
		{"Wrong tag", "d82b582100" + hashHex, ErrInvalidLink, "expected tag 42"},
		// 0x00 + 31 字节
		{"Short hash", "d82a582000" + hashHex[:62], types.ErrLengthMismatch, "unexpected hash length 31"},
		// 0x00 + 33 字节
		{"Long hash", "d82a582200" + hashHex + "ff", types.ErrLengthMismatch, "unexpected hash length 33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.input)
			require.NoError(t, err)

			var l Link
			err = l.UnmarshalCBOR(data)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

// -----------------------------------------------------------------------------
// 2. 确定性哈希测试 (Canonical Encoding)
// -----------------------------------------------------------------------------

func TestCanonical_Encoding(t *testing.T) {
	c := mustNewCommit(t,
		mockHash("tree_root"),
		[]types.Hash{mockHash("parent1"), mockHash("parent2")},
		"author_test",
		"message_test",
	)

	hash1, bytes1, err := CalculateHash(c)
	require.NoError(t, err)
	assert.Equal(t, c.ID(), hash1)

	c2, err := DecodeCommit(bytes1)
	require.NoError(t, err)

	hash2, _, err := CalculateHash(c2)
	require.NoError(t, err)

	assert.Equal(t, hash1, hash2, "Merkle DAG 哈希计算必须具备确定性")
	assert.Equal(t, hash1, c2.ID(), "解码后的 ID 与原始字节的哈希一致")
}

func TestCommit_Validation(t *testing.T) {
	_, err := NewCommit(types.Zero(), nil, "me", "msg")
	assert.ErrorIs(t, err, ErrEmptyTree)

	// 零哨兵父节点被忽略
	c := mustNewCommit(t, mockHash("tree"), []types.Hash{types.Zero()}, "me", "msg")
	assert.Empty(t, c.Parents)
}

func TestCommit_ParentHashes(t *testing.T) {
	parents := []types.Hash{mockHash("p1"), mockHash("p2")}
	c := mustNewCommit(t, mockHash("tree"), parents, "me", "msg")
	assert.Equal(t, parents, c.ParentHashes())
}

// -----------------------------------------------------------------------------
// 3. 完整对象 Round-Trip 测试
// -----------------------------------------------------------------------------

func TestFileNode_RoundTrip(t *testing.T) {
	chunks := []ChunkLink{
		{Cid: NewLink(mockHash("chunk1")), Size: 1024},
		{Cid: NewLink(mockHash("chunk2")), Size: 2048},
	}

	node, err := NewFileNode(3072, chunks)
	require.NoError(t, err)
	assert.NotEmpty(t, node.Bytes())

	node2, err := DecodeFileNode(node.Bytes())
	require.NoError(t, err)

	assert.Equal(t, TypeFileNode, node2.TypeVal)
	assert.Equal(t, int64(3072), node2.TotalSize)
	assert.Equal(t, chunks, node2.Chunks)
	assert.Equal(t, node.ID(), node2.ID())
}

func TestFileNode_SizeMismatch(t *testing.T) {
	chunks := []ChunkLink{{Cid: NewLink(mockHash("c")), Size: 10}}
	_, err := NewFileNode(11, chunks)
	assert.Error(t, err)
}

func TestFileNodeBuilder(t *testing.T) {
	b := NewFileNodeBuilder()
	c1 := NewChunk([]byte("hello "))
	c2 := NewChunk([]byte("world"))
	b.Add(c1)
	b.Add(c2)

	node, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, int64(11), node.TotalSize)
	assert.Equal(t, c1.ID(), node.Chunks[0].Cid.Hash)
	assert.Equal(t, c2.ID(), node.Chunks[1].Cid.Hash)
}

func TestChunk_ID(t *testing.T) {
	c := NewChunk([]byte("raw"))
	assert.Equal(t, types.Sum256("raw"), c.ID())
	assert.Equal(t, TypeChunk, c.Type())
	assert.Equal(t, int64(3), c.Size())
}

func TestTree_SortedAndUnique(t *testing.T) {
	a := NewFileEntry("a.txt", mockHash("a"), 1)
	b := NewFileEntry("b.txt", mockHash("b"), 2)

	t1, err := NewTree([]TreeEntry{b, a})
	require.NoError(t, err)
	t2, err := NewTree([]TreeEntry{a, b})
	require.NoError(t, err)
	assert.Equal(t, t1.ID(), t2.ID(), "条目顺序不影响 Hash")
	assert.Equal(t, "a.txt", t1.Entries[0].Name)

	_, err = NewTree([]TreeEntry{a, a})
	assert.Error(t, err)

	decoded, err := DecodeTree(t1.Bytes())
	require.NoError(t, err)
	assert.Equal(t, t1.Entries, decoded.Entries)
}

func TestTree_RejectsInvalidEntryNames(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"Empty", ""},
		{"Dot", "."},
		{"Parent", ".."},
		{"Parent prefix", "../escaped.txt"},
		{"Slash", "a/b"},
		{"Absolute", "/etc/passwd"},
		{"Backslash", "..\\x"},
		{"NUL", "a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree([]TreeEntry{NewFileEntry(tt.entry, mockHash("f"), 1)})
			assert.ErrorIs(t, err, ErrInvalidEntryName)

			// 绕过 NewTree 直接编码，解码时同样要拒绝
			raw := Tree{TypeVal: TypeTree, Entries: []TreeEntry{NewFileEntry(tt.entry, mockHash("f"), 1)}}
			_, data, err := CalculateHash(&raw)
			require.NoError(t, err)
			_, err = DecodeTree(data)
			assert.ErrorIs(t, err, ErrInvalidEntryName)
		})
	}

	for _, ok := range []string{"a.txt", "...", ".hidden", "名字"} {
		_, err := NewTree([]TreeEntry{NewFileEntry(ok, mockHash("f"), 1)})
		assert.NoError(t, err, ok)
	}
}

func TestNewTreeEntryFromObject(t *testing.T) {
	chunk := NewChunk([]byte("data"))
	node, err := NewFileNode(4, []ChunkLink{NewChunkLink(chunk)})
	require.NoError(t, err)
	tree, err := NewTree(nil)
	require.NoError(t, err)
	commit := mustNewCommit(t, tree.ID(), nil, "me", "msg")

	e, err := NewTreeEntryFromObject("file", node)
	require.NoError(t, err)
	assert.Equal(t, EntryFile, e.Type)
	assert.Equal(t, int64(4), e.Size)

	e, err = NewTreeEntryFromObject("dir", tree)
	require.NoError(t, err)
	assert.Equal(t, EntryDir, e.Type)

	_, err = NewTreeEntryFromObject("c", commit)
	assert.Error(t, err)
}

func TestDecode_TypeMismatch(t *testing.T) {
	tree, err := NewTree(nil)
	require.NoError(t, err)

	_, err = DecodeCommit(tree.Bytes())
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, TypeTree, mismatch.Got)
}

func TestCommit_Timestamp_Type(t *testing.T) {
	c := mustNewCommit(t, mockHash("tree"), nil, "me", "msg")

	assert.Greater(t, c.Timestamp, int64(1700000000))
	assert.Less(t, c.Timestamp, time.Now().Unix()+100)
}

func TestMustMode(t *testing.T) {
	assert.NotNil(t, em)
	assert.NotNil(t, dm)

	// 非法选项在构造时就要暴露出来
	assert.PanicsWithValue(t, "core: invalid cbor options: boom", func() {
		mustMode[cbor.EncMode](nil, errors.New("boom"))
	})
	assert.Panics(t, func() {
		mustMode(cbor.EncOptions{Sort: cbor.SortMode(99)}.EncMode())
	})
}
