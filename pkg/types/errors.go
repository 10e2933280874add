package types

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch 输入字节长度不是 Size
	ErrLengthMismatch = errors.New("hash length mismatch")
	// ErrConversionFailed 长度校验通过后定长数组转换仍然失败
	ErrConversionFailed = errors.New("failed trying to convert slice to a hash")
	// ErrNotHexEncoded 文本不是合法的 64 位 Hex
	ErrNotHexEncoded = errors.New("the string is not valid hex encoded data")
)

// LengthMismatchError 携带实际长度与期望长度，方便排查
type LengthMismatchError struct {
	Got  int
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("unexpected hash length %d, expected %d", e.Got, e.Want)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// ConversionError 包装底层的数组转换错误
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConversionFailed, e.Err)
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionFailed
}

func (e *ConversionError) Unwrap() error { return e.Err }
