package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNumberFormat(t *testing.T) {
	cfg := BatchNumberConfig()
	period := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "production:202603", cfg.Key(period))
	assert.Equal(t, "202603-0001", cfg.Format(period, 1))
	assert.Equal(t, "202603-12345", cfg.Format(period, 12345))
}

func TestMemory_ResetsPerMonth(t *testing.T) {
	gen := NewMemory()
	cfg := BatchNumberConfig()
	ctx := context.Background()

	jan := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	n1, _ := gen.Next(ctx, cfg, jan)
	n2, _ := gen.Next(ctx, cfg, jan)
	n3, _ := gen.Next(ctx, cfg, feb)

	assert.Equal(t, "202601-0001", n1)
	assert.Equal(t, "202601-0002", n2)
	assert.Equal(t, "202602-0001", n3)
}

func TestMemory_ConcurrentUnique(t *testing.T) {
	gen := NewMemory()
	cfg := BatchNumberConfig()
	period := time.Now()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := gen.Next(context.Background(), cfg, period)
			require.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
