package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hashvault/pkg/types"
)

// ErrInvalidEntryName 条目名必须是单个路径分量
var ErrInvalidEntryName = errors.New("invalid tree entry name")

type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

type TreeEntry struct {
	Name string    `cbor:"n"`
	Type EntryType `cbor:"t"`
	Cid  Link      `cbor:"h"`
	Size int64     `cbor:"s"`
}

func NewFileEntry(name string, hash types.Hash, size int64) TreeEntry {
	return TreeEntry{Name: name, Type: EntryFile, Cid: NewLink(hash), Size: size}
}

func NewDirEntry(name string, hash types.Hash) TreeEntry {
	return TreeEntry{Name: name, Type: EntryDir, Cid: NewLink(hash)}
}

type Tree struct {
	sealed `cbor:"-"`

	TypeVal ObjectType  `cbor:"t"`
	Entries []TreeEntry `cbor:"e"`
}

// NewTree 创建一个新的目录树节点
// 条目按名字排序，保证相同内容得到相同的 Hash
func NewTree(entries []TreeEntry) (*Tree, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if err := checkEntries(sorted); err != nil {
		return nil, err
	}

	t := &Tree{
		TypeVal: TypeTree,
		Entries: sorted,
	}
	if err := t.seal(t); err != nil {
		return nil, err
	}
	return t, nil
}

func DecodeTree(data []byte) (*Tree, error) {
	var t Tree
	if err := DecodeObject(data, &t); err != nil {
		return nil, err
	}
	if t.TypeVal != TypeTree {
		return nil, &TypeMismatchError{Want: TypeTree, Got: t.TypeVal}
	}
	// 存储可能是共享的，读出来的名字同样要校验
	if err := checkEntries(t.Entries); err != nil {
		return nil, err
	}
	t.restore(data)
	return &t, nil
}

// checkEntries 要求条目已按名字排序
func checkEntries(entries []TreeEntry) error {
	for i, e := range entries {
		if err := ValidateEntryName(e.Name); err != nil {
			return err
		}
		if i > 0 && entries[i-1].Name == e.Name {
			return fmt.Errorf("duplicate tree entry: %s", e.Name)
		}
	}
	return nil
}

// ValidateEntryName 拒绝空名、"."、".."、含分隔符或 NUL 的名字
func ValidateEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
	case strings.ContainsAny(name, "/\\\x00"):
	default:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
}

// NewTreeEntryFromObject 自动根据子对象生成条目
func NewTreeEntryFromObject(name string, child Object) (TreeEntry, error) {
	switch n := child.(type) {
	case *FileNode:
		return NewFileEntry(name, n.ID(), n.TotalSize), nil
	case *Chunk:
		return NewFileEntry(name, n.ID(), n.Size()), nil
	case *Tree:
		return NewDirEntry(name, n.ID()), nil
	case *Commit:
		return TreeEntry{}, fmt.Errorf("commit cannot be an entry inside a tree")
	default:
		return TreeEntry{}, fmt.Errorf("unsupported object type: %s", child.Type())
	}
}

func (t *Tree) Type() ObjectType { return TypeTree }
