package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_MonotonicAndDistinct(t *testing.T) {
	req := require.New(t)

	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := Generate()
		req.Greater(id, prev, "ids are strictly increasing within one process")
		_, dup := seen[id]
		req.False(dup)
		seen[id] = struct{}{}
		prev = id
	}
}
