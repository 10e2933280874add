package types

import (
	"database/sql/driver"
	"errors"
	"strings"
)

// MinPrefixSize 短哈希的最小长度
const MinPrefixSize = 4

var ErrPrefixTooShort = errors.New("hash prefix too short")

// HashPrefix 用户输入的短哈希 (统一为大写)
type HashPrefix string

// ParseHashPrefix 校验并规范化短哈希
func ParseHashPrefix(s string) (HashPrefix, error) {
	if len(s) < MinPrefixSize {
		return "", ErrPrefixTooShort
	}
	if len(s) > HexSize {
		return "", ErrNotHexEncoded
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return "", ErrNotHexEncoded
		}
	}
	return HashPrefix(strings.ToUpper(s)), nil
}

func (p HashPrefix) String() string { return string(p) }

// IsFull 前缀已经是完整哈希
func (p HashPrefix) IsFull() bool { return len(p) == HexSize }

func (p HashPrefix) Match(h Hash) bool {
	return strings.HasPrefix(h.String(), string(p))
}

// LinearHash 是整个文件内容的 SHA-256 (区别于 Merkle Root)
type LinearHash Hash

func (h LinearHash) String() string { return Hash(h).String() }
func (h LinearHash) IsZero() bool   { return Hash(h).IsZero() }

// 辅助转换 (显式转换，提醒开发者注意)
func (h LinearHash) ToHash() Hash { return Hash(h) }

func (h LinearHash) MarshalText() ([]byte, error) { return Hash(h).MarshalText() }

func (h *LinearHash) UnmarshalText(text []byte) error {
	return (*Hash)(h).UnmarshalText(text)
}

func (h LinearHash) Value() (driver.Value, error) { return Hash(h).Value() }

func (h *LinearHash) Scan(src any) error { return (*Hash)(h).Scan(src) }
