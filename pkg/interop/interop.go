// Package interop 把 types.Hash 转换为外部系统的哈希类型
//
// 每个目标类型对应一个纯函数，types 包本身不依赖任何消费方。
package interop

import (
	"hashvault/pkg/consensus"
	"hashvault/pkg/smt"
	"hashvault/pkg/types"
)

// ToTreeHash 转为稀疏 Merkle 树的哈希 (布局相同，不会失败)
func ToTreeHash(h types.Hash) smt.H256 {
	return smt.H256(h)
}

func FromTreeHash(h smt.H256) types.Hash {
	return types.Hash(h)
}

// TreeValue 让 types.Hash 可以直接作为 smt 的叶子值
type TreeValue types.Hash

var _ smt.Value[TreeValue] = TreeValue{}

func NewTreeValue(h types.Hash) TreeValue { return TreeValue(h) }

func (v TreeValue) AsSlice() []byte { return v[:] }

func (TreeValue) Zero() TreeValue { return TreeValue(types.Zero()) }

func (v TreeValue) Hash() types.Hash { return types.Hash(v) }

// ToConsensusHash 转为共识引擎哈希，标记为 SHA-256 变体
func ToConsensusHash(h types.Hash) consensus.Hash {
	return consensus.NewSHA256Hash(h.Array())
}

// ToTxHash 转为交易哈希
func ToTxHash(h types.Hash) consensus.TxHash {
	return consensus.NewTxHash(h.Array())
}
