package types

// HexHash 是经过校验的 64 位 Hex 文本 (对应一个 Hash)
// 只能通过 ParseHexHash / ParseHexHashBytes 构造，构造后不可变。
//
// 它不会随 Hash 自动生成：需要文本时请用 Hash.String()。
type HexHash struct {
	// 每个字符相对 '0' 的偏移，零值即 64 个 '0'
	digits [HexSize]byte
}

// ParseHexHash 从字符串解析
func ParseHexHash(s string) (HexHash, error) {
	return parseHex(s)
}

// ParseHexHashBytes 从字节切片解析，校验规则与 ParseHexHash 完全一致
func ParseHexHashBytes(b []byte) (HexHash, error) {
	return parseHex(b)
}

// parseHex 逐字符扫描：遇到非 Hex 字符立即失败；
// 不足 64 个或超过 64 个字符同样返回 ErrNotHexEncoded。
func parseHex[T ~string | ~[]byte](in T) (HexHash, error) {
	var x HexHash
	n := 0
	for i := 0; i < len(in); i++ {
		if n == HexSize {
			return HexHash{}, ErrNotHexEncoded
		}
		ch := in[i]
		if !isHexDigit(ch) {
			return HexHash{}, ErrNotHexEncoded
		}
		x.digits[n] = ch - '0'
		n++
	}
	if n != HexSize {
		return HexHash{}, ErrNotHexEncoded
	}
	return x, nil
}

// String 返回 64 个字符的文本视图，保留输入的大小写
func (x HexHash) String() string {
	var buf [HexSize]byte
	for i, d := range x.digits {
		buf[i] = d + '0'
	}
	return string(buf[:])
}

// Hash 解码为定长哈希。构造时已经校验过，这里不会失败。
func (x HexHash) Hash() Hash {
	var h Hash
	for i := range h {
		h[i] = fromHexDigit(x.digits[2*i]+'0')<<4 | fromHexDigit(x.digits[2*i+1]+'0')
	}
	return h
}

func isHexDigit(ch byte) bool {
	switch {
	case '0' <= ch && ch <= '9':
		return true
	case 'a' <= ch && ch <= 'f':
		return true
	case 'A' <= ch && ch <= 'F':
		return true
	}
	return false
}

func fromHexDigit(ch byte) byte {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0'
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}
