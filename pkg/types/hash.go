package types

import (
	"bytes"
	"crypto/sha256"
	"database/sql/driver"
	"fmt"
)

const (
	// Size 哈希的字节长度 (SHA-256)
	Size = 32
	// HexSize 哈希的 Hex 文本长度
	HexSize = Size * 2
)

const upperHex = "0123456789ABCDEF"

// Hash 是整个系统的内容寻址原语 (32 字节定长值)
// 这是一个"值对象"：按值传递、不可变，可以直接作为 map 的 key。
// 零值即"空/未设置"哨兵，用 IsZero 判断，不要手动比较。
type Hash [Size]byte

// FromBytes 是从变长字节构造 Hash 的唯一入口
// 长度必须恰好是 32，否则返回 *LengthMismatchError
func FromBytes(b []byte) (Hash, error) {
	if len(b) != Size {
		return Hash{}, &LengthMismatchError{Got: len(b), Want: Size}
	}

	var h Hash
	// 长度已经校验过，这里理论上不会失败；失败说明底层转换有问题，不 panic
	if n := copy(h[:], b); n != Size {
		return Hash{}, &ConversionError{Err: fmt.Errorf("copied %d of %d bytes", n, Size)}
	}
	return h, nil
}

// Sum256 计算任意输入的 SHA-256
func Sum256[T ~[]byte | ~string](data T) Hash {
	return Hash(sha256.Sum256([]byte(data)))
}

// Zero 返回全零哨兵 (同时也是 Hash 的默认值)
func Zero() Hash {
	return Hash{}
}

// IsZero 判断是否为全零哨兵
func (h Hash) IsZero() bool {
	return h == Zero()
}

// Bytes 返回字节切片视图 (副本，修改它不会影响 h)
func (h Hash) Bytes() []byte {
	return h[:]
}

// Array 返回定长数组视图
func (h Hash) Array() [Size]byte {
	return h
}

// Compare 按字节序比较，语义同 bytes.Compare
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}

// String 渲染为 64 个大写 Hex 字符，高位字节在前，无前缀无分隔符。
// 这是日志、调试、跨系统比对使用的规范文本形式。
func (h Hash) String() string {
	buf := h.appendHex(make([]byte, 0, HexSize))
	return string(buf)
}

// Short 返回前 8 个字符，用于 CLI 展示
func (h Hash) Short() string {
	return h.String()[:8]
}

func (h Hash) appendHex(dst []byte) []byte {
	for _, b := range h {
		dst = append(dst, upperHex[b>>4], upperHex[b&0x0f])
	}
	return dst
}

// ParseHash 解析 64 位 Hex 文本 (大小写不敏感)
func ParseHash(s string) (Hash, error) {
	x, err := ParseHexHash(s)
	if err != nil {
		return Hash{}, err
	}
	return x.Hash(), nil
}

// MarshalText 让 JSON 等文本格式使用规范渲染
func (h Hash) MarshalText() ([]byte, error) {
	return h.appendHex(make([]byte, 0, HexSize)), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	x, err := ParseHexHashBytes(text)
	if err != nil {
		return fmt.Errorf("unmarshaling hash: %w", err)
	}
	*h = x.Hash()
	return nil
}

// Value 实现 driver.Valuer，数据库里存 64 位文本
func (h Hash) Value() (driver.Value, error) {
	return h.String(), nil
}

// Scan 实现 sql.Scanner
func (h *Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return h.UnmarshalText([]byte(v))
	case []byte:
		return h.UnmarshalText(v)
	case nil:
		*h = Zero()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into types.Hash", src)
	}
}
