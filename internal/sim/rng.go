package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

const golden = 0x9e3779b97f4a7c15

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// TrajectorySeed derives the seed of trajectory index from the run seed.
// Each trajectory owns an independent stream, so trajectory i of an N-run
// batch is identical to a single run with this seed.
func TrajectorySeed(runSeed int64, index int) uint64 {
	return splitmix64(splitmix64(uint64(runSeed)) + uint64(index)*golden)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, splitmix64(seed)))
}

// randomSeed draws a run seed for configs that do not pin one.
func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
