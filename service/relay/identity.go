package relay

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Identity is the ephemeral display identity assigned per connection. Labels
// carry no uniqueness guarantee, only low collision probability; collisions
// across connections are permitted.
type Identity struct {
	Label string
	Color string
}

var adjectives = []string{
	"brave", "calm", "clever", "eager", "gentle", "happy",
	"jolly", "keen", "lively", "merry", "nimble", "proud",
	"quick", "quiet", "sunny", "swift", "vivid", "witty",
}

var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff",
}

// Allocator produces anonymous identities. Pure generation, no shared state
// beyond the random source.
type Allocator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAllocator() *Allocator {
	return NewAllocatorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewAllocatorWithRand is for tests wanting a deterministic source.
func NewAllocatorWithRand(rnd *rand.Rand) *Allocator {
	return &Allocator{rnd: rnd}
}

func (a *Allocator) Allocate() Identity {
	a.mu.Lock()
	adj := adjectives[a.rnd.Intn(len(adjectives))]
	suffix := a.rnd.Intn(10000)
	color := palette[a.rnd.Intn(len(palette))]
	a.mu.Unlock()

	return Identity{
		Label: fmt.Sprintf("%s-%04d", adj, suffix),
		Color: color,
	}
}
