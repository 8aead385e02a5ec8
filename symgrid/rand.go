package symgrid

import "math/rand/v2"

// Rand 随机整数来源，*rand.Rand 满足该接口；测试里传入固定种子的实现即可复现.
type Rand interface {
	// IntN 返回 [0, n) 内的均匀随机整数.
	IntN(n int) int
}

// NewSeededRand 返回固定种子的 PCG 随机源.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newDefaultRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
