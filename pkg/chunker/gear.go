package chunker

// gearTable 是 Gear 滚动哈希的 256 项随机表
// 由固定种子的 splitmix64 生成，任何进程得到的表都相同，切点因此可复现
var gearTable = func() [256]uint64 {
	var table [256]uint64
	state := uint64(0x5456_4741_5254_4142) // "TVGARTAB"
	for i := range table {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		table[i] = z ^ (z >> 31)
	}
	return table
}()
