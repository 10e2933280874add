package core

import (
	"errors"
	"time"

	"hashvault/pkg/types"
)

var ErrEmptyTree = errors.New("commit must reference a non-zero tree hash")

type Commit struct {
	sealed `cbor:"-"`

	TypeVal ObjectType `cbor:"t"`

	TreeCid Link   `cbor:"th"`
	Parents []Link `cbor:"p"`

	Author  string `cbor:"a"`
	Message string `cbor:"m"`

	Timestamp int64 `cbor:"ts"`
}

func NewCommit(treeHash types.Hash, parents []types.Hash, author, msg string) (*Commit, error) {
	if treeHash.IsZero() {
		return nil, ErrEmptyTree
	}

	parentLinks := make([]Link, 0, len(parents))
	for _, p := range parents {
		// 零哨兵表示"没有父节点"，不写入
		if p.IsZero() {
			continue
		}
		parentLinks = append(parentLinks, NewLink(p))
	}

	c := &Commit{
		TypeVal:   TypeCommit,
		TreeCid:   NewLink(treeHash),
		Parents:   parentLinks,
		Author:    author,
		Message:   msg,
		Timestamp: time.Now().Unix(),
	}
	if err := c.seal(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeCommit 从存储的原始字节还原 Commit
func DecodeCommit(data []byte) (*Commit, error) {
	var c Commit
	if err := DecodeObject(data, &c); err != nil {
		return nil, err
	}
	if c.TypeVal != TypeCommit {
		return nil, &TypeMismatchError{Want: TypeCommit, Got: c.TypeVal}
	}
	c.restore(data)
	return &c, nil
}

// ParentHashes 返回所有父节点的哈希
func (c *Commit) ParentHashes() []types.Hash {
	out := make([]types.Hash, len(c.Parents))
	for i, p := range c.Parents {
		out[i] = p.Hash
	}
	return out
}

func (c *Commit) Type() ObjectType { return TypeCommit }
