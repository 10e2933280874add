package chunker

import (
	"math"
)

// 针对 AI 大文件场景的配置 (单位: 字节)
const (
	MinSize   = 4 * 1024  // 4KB
	AvgSize   = 8 * 1024  // 8KB (生产环境建议设为 2MB-4MB，测试环境用小一点方便观察)
	MaxSize   = 64 * 1024 // 64KB
	NormLevel = 2
)

// Chunker 是一个无状态的切分工具 (FastCDC)
type Chunker struct {
	maskS uint64
	maskL uint64
}

func NewChunker() *Chunker {
	bits := int(math.Round(math.Log2(float64(AvgSize))))
	return &Chunker{
		maskS: uint64(1<<(bits+NormLevel)) - 1,
		maskL: uint64(1<<(bits-NormLevel)) - 1,
	}
}

// Next 返回 data 开头第一个块的长度
// ok=false 表示在 data 结束前既没有找到切点也没有达到 MaxSize，
// 调用方应补充数据；如果已经到达流末尾，剩余部分整体作为最后一块。
func (c *Chunker) Next(data []byte) (n int, ok bool) {
	size := len(data)
	if size <= MinSize {
		return size, false
	}

	fp := uint64(0)
	idx := MinSize
	normLimit := min(AvgSize, size)
	maxLimit := min(MaxSize, size)

	// A. 归一化区域 (严掩码)
	for ; idx < normLimit; idx++ {
		fp = (fp << 1) + gearTable[data[idx]]
		if fp&c.maskS == 0 {
			return idx + 1, true
		}
	}

	// B. 普通区域 (宽掩码)
	for ; idx < maxLimit; idx++ {
		fp = (fp << 1) + gearTable[data[idx]]
		if fp&c.maskL == 0 {
			return idx + 1, true
		}
	}

	// C. 强制切分
	if maxLimit == MaxSize {
		return MaxSize, true
	}
	return size, false
}

// Cut 将完整的数据切分成一系列块
// 返回所有块的结束 offset，最后一个总是 len(data)。
func (c *Chunker) Cut(data []byte) []int {
	var cutPoints []int
	offset := 0
	for offset < len(data) {
		n, _ := c.Next(data[offset:])
		offset += n
		cutPoints = append(cutPoints, offset)
	}
	return cutPoints
}
