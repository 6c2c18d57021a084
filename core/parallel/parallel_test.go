package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelize_CoversAllItems(t *testing.T) {
	const items = 1000
	var touched [items]int32

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&touched[i], 1)
		}
	})

	for i, v := range touched {
		if v != 1 {
			t.Fatalf("item %d visited %d times, want 1", i, v)
		}
	}
}

func TestParallelize_ZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	if called {
		t.Error("fn should not be called with zero items")
	}
}

func TestParallelizeWithThreshold_Sequential(t *testing.T) {
	var ranges [][2]int
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})

	// しきい値以下なら単一の逐次呼び出しになる
	if len(ranges) != 1 || ranges[0] != [2]int{0, 5} {
		t.Errorf("ranges = %v, want single [0,5)", ranges)
	}
}

func TestParallelizeWithThreshold_AboveThreshold(t *testing.T) {
	var total int64
	ParallelizeWithThreshold(100, 10, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	if total != 100 {
		t.Errorf("processed %d items, want 100", total)
	}
}
