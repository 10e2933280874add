package core

import (
	"fmt"

	"hashvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// DAG-CBOR 编码选项: 规范化 Map 排序，同一对象只有一种字节表示
var encOptions = cbor.EncOptions{
	Sort: cbor.SortCanonical,
	// 浮点数一律 64 位
	ShortestFloat: cbor.ShortestFloatNone,
	// 时间编码为 Unix 整数，不加 Tag 0/1
	Time:          cbor.TimeUnix,
	TimeTag:       cbor.EncTagNone,
	IndefLength:   cbor.IndefLengthForbidden,
	BigIntConvert: cbor.BigIntConvertShortest,
}

// 解码选项: 限制容器大小与嵌套深度，拒绝重复 Key 和不定长编码
var decOptions = cbor.DecOptions{
	MaxArrayElements: 10000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  100,
	IndefLength:      cbor.IndefLengthForbidden,
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	BignumTag:        cbor.BignumTagForbidden,
	TimeTag:          cbor.DecTagIgnored,
}

// 包级共享的编解码模式 (link.go 也用 dm)
var (
	em = mustMode(encOptions.EncMode())
	dm = mustMode(decOptions.DecMode())
)

// mustMode 选项非法属于编程错误，启动时直接 panic
func mustMode[M any](mode M, err error) M {
	if err != nil {
		panic(fmt.Sprintf("core: invalid cbor options: %v", err))
	}
	return mode
}

// CalculateHash 计算对象的 Hash (CID) 和序列化数据
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return types.Hash{}, nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return types.Sum256(data), data, nil
}

// CalculateBlobHash 计算原始数据块的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	return types.Sum256(data)
}

// DecodeObject 通用的解码函数 (供外部使用)
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v) // 使用 dm 解码
}
