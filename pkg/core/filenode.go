package core

import "fmt"

// ChunkLink 描述了 FileNode 对底层 Chunk 的引用
type ChunkLink struct {
	Cid  Link `cbor:"h"`
	Size int  `cbor:"s"` // 用于计算 offset
}

func NewChunkLink(c *Chunk) ChunkLink {
	return ChunkLink{Cid: NewLink(c.ID()), Size: int(c.Size())}
}

// FileNode (ADL) 将散乱的 Chunk 组装成一个逻辑上的大文件
type FileNode struct {
	sealed `cbor:"-"`

	TypeVal   ObjectType  `cbor:"t"`
	TotalSize int64       `cbor:"ts"`
	Chunks    []ChunkLink `cbor:"cs"`
}

func NewFileNode(totalSize int64, chunks []ChunkLink) (*FileNode, error) {
	var sum int64
	for _, c := range chunks {
		sum += int64(c.Size)
	}
	if sum != totalSize {
		return nil, fmt.Errorf("chunk sizes add up to %d, expected %d", sum, totalSize)
	}

	node := &FileNode{
		TypeVal:   TypeFileNode,
		TotalSize: totalSize,
		Chunks:    chunks,
	}
	if err := node.seal(node); err != nil {
		return nil, err
	}
	return node, nil
}

func DecodeFileNode(data []byte) (*FileNode, error) {
	var f FileNode
	if err := DecodeObject(data, &f); err != nil {
		return nil, err
	}
	if f.TypeVal != TypeFileNode {
		return nil, &TypeMismatchError{Want: TypeFileNode, Got: f.TypeVal}
	}
	f.restore(data)
	return &f, nil
}

func (f *FileNode) Type() ObjectType { return TypeFileNode }
func (f *FileNode) Size() int64      { return f.TotalSize }

// FileNodeBuilder 按顺序收集 Chunk
type FileNodeBuilder struct {
	chunks []ChunkLink
	total  int64
}

func NewFileNodeBuilder() *FileNodeBuilder {
	return &FileNodeBuilder{}
}

func (b *FileNodeBuilder) Add(c *Chunk) {
	b.AddLink(NewChunkLink(c))
}

func (b *FileNodeBuilder) AddLink(link ChunkLink) {
	b.chunks = append(b.chunks, link)
	b.total += int64(link.Size)
}

func (b *FileNodeBuilder) Build() (*FileNode, error) {
	return NewFileNode(b.total, b.chunks)
}
