package extract

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterEnforcesMinimumInterval(t *testing.T) {
	rl := NewRateLimiter(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))
	start := time.Now()
	require.NoError(t, rl.Wait(ctx))
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestRateLimiterCountsEveryConcurrentRequest(t *testing.T) {
	rl := NewRateLimiter(5 * time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rl.Wait(ctx)
		}()
	}
	wg.Wait()

	m := rl.Metrics()
	require.EqualValues(t, 10, m.TotalRequests)
}

func TestRateLimiterRespectsCancellation(t *testing.T) {
	rl := NewRateLimiter(time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rl.Wait(ctx)
	require.Error(t, err)
}
