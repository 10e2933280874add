// Package consensus 定义共识引擎侧的哈希类型
//
// 共识引擎的哈希是一个带算法标签的联合类型，目前只有 SHA-256 一种变体；
// 交易哈希是独立的 32 字节类型。
package consensus

import (
	"encoding/hex"
	"strings"
)

// Algorithm 标记哈希是由哪种算法产生的
type Algorithm uint8

const (
	AlgorithmNone Algorithm = iota
	AlgorithmSHA256
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA256:
		return "SHA256"
	default:
		return "NONE"
	}
}

// Hash 带算法标签的哈希，零值为 None
type Hash struct {
	algorithm Algorithm
	sum       [32]byte
}

// NewSHA256Hash 构造 SHA-256 变体
func NewSHA256Hash(sum [32]byte) Hash {
	return Hash{algorithm: AlgorithmSHA256, sum: sum}
}

func (h Hash) Algorithm() Algorithm { return h.algorithm }

func (h Hash) IsEmpty() bool { return h.algorithm == AlgorithmNone }

// Bytes None 变体返回空切片
func (h Hash) Bytes() []byte {
	if h.IsEmpty() {
		return []byte{}
	}
	return h.sum[:]
}

// String 形如 "SHA256:ABCD..."
func (h Hash) String() string {
	if h.IsEmpty() {
		return h.algorithm.String()
	}
	return h.algorithm.String() + ":" + strings.ToUpper(hex.EncodeToString(h.sum[:]))
}

// TxHash 交易哈希
type TxHash [32]byte

func NewTxHash(sum [32]byte) TxHash {
	return TxHash(sum)
}

func (h TxHash) Bytes() []byte { return h[:] }

func (h TxHash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}
