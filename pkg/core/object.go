package core

import (
	"fmt"

	"hashvault/pkg/types"
)

// ObjectType 定义了存储中的对象类型
type ObjectType string

const (
	TypeChunk    ObjectType = "chunk"    // 原始数据块 (L1)
	TypeFileNode ObjectType = "filenode" // 大文件索引 (L2, ADL)
	TypeTree     ObjectType = "tree"     // 目录树 (L3)
	TypeCommit   ObjectType = "commit"   // 版本快照 (L4)
)

// Object 是所有 Merkle DAG 节点的通用接口
type Object interface {
	Type() ObjectType

	// ID 返回对象的哈希值 (CID)
	ID() types.Hash

	// Bytes 返回对象的序列化数据 (用于存储)
	Bytes() []byte
}

// sealed 保存对象序列化后的身份信息，不参与编码
type sealed struct {
	hash     types.Hash
	rawBytes []byte
}

func (s *sealed) seal(v any) error {
	h, b, err := CalculateHash(v)
	if err != nil {
		return err
	}
	s.hash = h
	s.rawBytes = b
	return nil
}

// restore 从存储读出的原始字节恢复身份 (CID 即原始字节的哈希)
func (s *sealed) restore(data []byte) {
	s.hash = types.Sum256(data)
	s.rawBytes = data
}

func (s *sealed) ID() types.Hash { return s.hash }
func (s *sealed) Bytes() []byte  { return s.rawBytes }

// TypeMismatchError 解码出的对象类型与预期不符
type TypeMismatchError struct {
	Want ObjectType
	Got  ObjectType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("object is not a %s, got: %q", e.Want, e.Got)
}
