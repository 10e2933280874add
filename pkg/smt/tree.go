// Package smt 实现一棵 256 层的稀疏 Merkle 树 (Sparse Merkle Tree)
//
// 空子树的哈希恒为全零，叶子哈希为 SHA-256(key || value)，
// 内部节点为 SHA-256(left || right)，两侧都为空时仍为全零。
// 因此根哈希只取决于叶子集合，与插入顺序无关。
package smt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Depth 树高 (key 的比特数)
const Depth = 256

// H256 是树使用的 32 字节哈希
type H256 [32]byte

func (h H256) IsZero() bool { return h == H256{} }

// String 大写 Hex，与系统其他哈希的文本形式一致
func (h H256) String() string { return strings.ToUpper(hex.EncodeToString(h[:])) }

// bit 返回 key 的第 i 位 (高位在前)
func (h H256) bit(i int) byte {
	return (h[i/8] >> (7 - uint(i%8))) & 1
}

// Value 是可以作为叶子存储的值
// Zero 返回该类型的零值哨兵；写入零值等同于删除叶子。
type Value[V any] interface {
	AsSlice() []byte
	Zero() V
}

// Tree 内存中的稀疏 Merkle 树，非并发安全
type Tree[V Value[V]] struct {
	leaves map[H256]V
}

func New[V Value[V]]() *Tree[V] {
	return &Tree[V]{leaves: make(map[H256]V)}
}

func zeroOf[V Value[V]]() V {
	var v V
	return v.Zero()
}

func isZero[V Value[V]](v V) bool {
	return bytes.Equal(v.AsSlice(), zeroOf[V]().AsSlice())
}

// Update 写入叶子，写入零值时删除
func (t *Tree[V]) Update(key H256, value V) {
	if isZero(value) {
		delete(t.leaves, key)
		return
	}
	t.leaves[key] = value
}

// Get 读取叶子，不存在时返回零值
func (t *Tree[V]) Get(key H256) V {
	if v, ok := t.leaves[key]; ok {
		return v
	}
	return zeroOf[V]()
}

func (t *Tree[V]) Len() int { return len(t.leaves) }

// Root 计算根哈希，空树为全零
func (t *Tree[V]) Root() H256 {
	keys := make([]H256, 0, len(t.leaves))
	for k := range t.leaves {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return t.subtreeRoot(keys, 0)
}

// subtreeRoot keys 已排序，且在 depth 之前的比特全部相同
func (t *Tree[V]) subtreeRoot(keys []H256, depth int) H256 {
	if len(keys) == 0 {
		return H256{}
	}
	if depth == Depth {
		return leafHash(keys[0], t.leaves[keys[0]].AsSlice())
	}

	// 排好序后，第 depth 位为 0 的都在前面
	split := sort.Search(len(keys), func(i int) bool {
		return keys[i].bit(depth) == 1
	})
	left := t.subtreeRoot(keys[:split], depth+1)
	right := t.subtreeRoot(keys[split:], depth+1)
	return merge(left, right)
}

func leafHash(key H256, value []byte) H256 {
	hasher := sha256.New()
	hasher.Write(key[:])
	hasher.Write(value)
	var out H256
	copy(out[:], hasher.Sum(nil))
	return out
}

func merge(left, right H256) H256 {
	if left.IsZero() && right.IsZero() {
		return H256{}
	}
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return H256(sha256.Sum256(buf[:]))
}
