package remote

import (
	"math/rand/v2"
	"sync"
	"time"
)

// PushKeyChars is the alphabet of push keys, in ascending sort order.
const PushKeyChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// PushKeyLen is the length of every generated key.
const PushKeyLen = 20

// KeyGen generates 20-character keys whose lexical order follows creation
// order: 8 characters of millisecond time, then 12 random characters that
// are incremented instead of re-rolled within the same millisecond.
type KeyGen struct {
	mu       sync.Mutex
	lastTime int64
	lastRand [12]int
	rnd      *rand.Rand
}

// NewKeyGen returns a generator seeded from the runtime's random source.
func NewKeyGen() *KeyGen {
	return &KeyGen{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewKeyGenSeeded returns a deterministic generator, for tests.
func NewKeyGenSeeded(seed uint64) *KeyGen {
	return &KeyGen{rnd: rand.New(rand.NewPCG(seed, seed))}
}

// Next returns the key for a record created at now.
func (g *KeyGen) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	same := ms == g.lastTime
	g.lastTime = ms

	var key [PushKeyLen]byte
	for i := 7; i >= 0; i-- {
		key[i] = PushKeyChars[ms%64]
		ms /= 64
	}

	if !same {
		for i := range g.lastRand {
			g.lastRand[i] = g.rnd.IntN(64)
		}
	} else {
		i := len(g.lastRand) - 1
		for ; i >= 0 && g.lastRand[i] == 63; i-- {
			g.lastRand[i] = 0
		}
		if i >= 0 {
			g.lastRand[i]++
		}
	}
	for i, v := range g.lastRand {
		key[8+i] = PushKeyChars[v]
	}
	return string(key[:])
}

// KeyTime recovers the creation millisecond from a push key.
func KeyTime(key string) (time.Time, bool) {
	if len(key) < 8 {
		return time.Time{}, false
	}
	var ms int64
	for i := 0; i < 8; i++ {
		idx := indexOf(key[i])
		if idx < 0 {
			return time.Time{}, false
		}
		ms = ms*64 + int64(idx)
	}
	return time.UnixMilli(ms), true
}

func indexOf(c byte) int {
	for i := 0; i < len(PushKeyChars); i++ {
		if PushKeyChars[i] == c {
			return i
		}
	}
	return -1
}
