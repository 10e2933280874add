package core

import (
	"errors"
	"fmt"

	"hashvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// Link 代表 Merkle DAG 中的一条边 (指向子节点的哈希引用)
// 在 CBOR 层面序列化为 Tag 42(0x00 + 32 字节哈希)，与 IPFS CID 的写法一致
type Link struct {
	Hash types.Hash
}

const (
	linkTagNumber = 42
	// multibase identity 前缀
	linkPrefix = 0x00
)

var ErrInvalidLink = errors.New("invalid link")

func NewLink(hash types.Hash) Link {
	return Link{Hash: hash}
}

func (l Link) String() string { return l.Hash.String() }

// MarshalCBOR Tag 42, Content = [0x00, byte1, byte2...]
func (l Link) MarshalCBOR() ([]byte, error) {
	cidBytes := make([]byte, 0, 1+types.Size)
	cidBytes = append(cidBytes, linkPrefix)
	cidBytes = append(cidBytes, l.Hash.Bytes()...)

	return em.Marshal(cbor.Tag{
		Number:  linkTagNumber,
		Content: cidBytes,
	})
}

// UnmarshalCBOR 严格校验 Tag、前缀与哈希长度
func (l *Link) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := dm.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != linkTagNumber {
		return fmt.Errorf("%w: expected tag 42, got %d", ErrInvalidLink, tag.Number)
	}

	content, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("%w: content must be byte string", ErrInvalidLink)
	}
	if len(content) < 1 {
		return fmt.Errorf("%w: empty content", ErrInvalidLink)
	}
	if content[0] != linkPrefix {
		return fmt.Errorf("%w: missing 0x00 multibase prefix", ErrInvalidLink)
	}

	// 长度由 FromBytes 统一把关
	h, err := types.FromBytes(content[1:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	l.Hash = h
	return nil
}
