package monitoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeSource) PhaseCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMap(f.counts)
}

func (f *fakeSource) set(phase string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[phase] = n
}

func TestSample(t *testing.T) {
	src := &fakeSource{counts: map[string]int{"Running": 2, "Setup": 1}}
	m := NewMonitor(src, WithLogger(zerolog.Nop()))

	assert.False(t, m.Sample())
	metrics := m.GetMetrics()
	assert.Equal(t, map[string]int{"Running": 2, "Setup": 1}, metrics.Phases)
	assert.Positive(t, metrics.Goroutines)
	assert.GreaterOrEqual(t, metrics.PeakGoroutines, metrics.Goroutines)
	assert.False(t, metrics.SampledAt.IsZero())

	metrics.Phases["Running"] = 99
	assert.Equal(t, 2, m.GetMetrics().Phases["Running"], "metrics must be a copy")
}

func TestSample_CorruptionAlertCooldown(t *testing.T) {
	src := &fakeSource{counts: map[string]int{"Corrupted": 1}}
	m := NewMonitor(src, WithLogger(zerolog.Nop()), WithAlertCooldown(time.Hour))

	assert.True(t, m.Sample())
	assert.False(t, m.Sample(), "second alert inside the cooldown")

	m.alertCooldown = 0
	m.lastAlert = time.Time{}
	src.set("Corrupted", 0)
	assert.False(t, m.Sample())
}

func TestRun(t *testing.T) {
	src := &fakeSource{counts: map[string]int{"Running": 1}}
	m := NewMonitor(src, WithLogger(zerolog.Nop()), WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return !m.GetMetrics().SampledAt.IsZero()
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
