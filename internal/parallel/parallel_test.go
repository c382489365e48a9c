package parallel

import (
	"sync/atomic"
	"testing"
)

func TestChunksCoversRange(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	for _, n := range []int{0, 1, 15, 16, 17, 100, 1001} {
		seen := make([]int32, n)
		var calls int64
		Chunks(n, cfg, func(lo, hi int) {
			atomic.AddInt64(&calls, 1)
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
		if n == 0 && calls != 0 {
			t.Errorf("n=0: f called %d times", calls)
		}
	}
}

func TestChunksSmallInputStaysSequential(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}

	var calls int
	Chunks(100, cfg, func(lo, hi int) {
		calls++
		if lo != 0 || hi != 100 {
			t.Errorf("got range [%d,%d), want [0,100)", lo, hi)
		}
	})
	if calls != 1 {
		t.Errorf("f called %d times, want 1", calls)
	}
}

func TestChunksDisabled(t *testing.T) {
	var calls int64
	Chunks(1<<16, Sequential(), func(_, _ int) {
		atomic.AddInt64(&calls, 1)
	})
	if calls != 1 {
		t.Errorf("f called %d times, want 1", calls)
	}
}

func TestMap(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 4}
	src := make([]float64, 50)
	for i := range src {
		src[i] = float64(i)
	}
	dst := make([]float64, len(src))

	Map(dst, src, cfg, func(v float64) float64 { return 2 * v })

	for i, v := range dst {
		if v != 2*float64(i) {
			t.Fatalf("dst[%d] = %g, want %g", i, v, 2*float64(i))
		}
	}
}

func TestMapInPlace(t *testing.T) {
	data := []float64{-1, 0, 1, 2}
	Map(data, data, DefaultConfig(), func(v float64) float64 { return v * v })

	want := []float64{1, 0, 1, 4}
	for i := range data {
		if data[i] != want[i] {
			t.Errorf("data[%d] = %g, want %g", i, data[i], want[i])
		}
	}
}

func BenchmarkMap(b *testing.B) {
	src := make([]float64, 1<<18)
	dst := make([]float64, len(src))
	cfg := DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Map(dst, src, cfg, func(v float64) float64 { return v + 1 })
	}
}
