package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/chesstx/internal/game/states"
)

// Source reports how many games are in each lifecycle phase
type Source interface {
	PhaseCounts() map[string]int
}

// Monitor samples game and goroutine counts and warns while games are stuck
// in the corrupted phase
type Monitor struct {
	source Source
	logger zerolog.Logger

	mu            sync.RWMutex
	baseline      int
	goroutines    int
	peak          int
	phases        map[string]int
	sampledAt     time.Time
	lastAlert     time.Time
	checkInterval time.Duration
	alertCooldown time.Duration
}

// Option configures a Monitor
type Option func(*Monitor)

// WithInterval sets how often Run samples
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.checkInterval = d }
}

// WithAlertCooldown sets the minimum time between corruption warnings
func WithAlertCooldown(d time.Duration) Option {
	return func(m *Monitor) { m.alertCooldown = d }
}

// WithLogger sets the monitor logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// NewMonitor creates a monitor over source
func NewMonitor(source Source, opts ...Option) *Monitor {
	baseline := runtime.NumGoroutine()
	m := &Monitor{
		source:        source,
		logger:        log.With().Str("component", "monitor").Logger(),
		baseline:      baseline,
		goroutines:    baseline,
		peak:          baseline,
		phases:        make(map[string]int),
		checkInterval: 30 * time.Second,
		alertCooldown: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run samples until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.logger.Info().Int("baseline_goroutines", m.baseline).Msg("Started monitoring")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sample()
		}
	}
}

// Sample takes one measurement. It reports whether a corruption warning was
// logged.
func (m *Monitor) Sample() bool {
	phases := m.source.PhaseCounts()
	current := runtime.NumGoroutine()
	now := time.Now()

	m.mu.Lock()
	m.goroutines = current
	if current > m.peak {
		m.peak = current
	}
	peak := m.peak
	m.phases = phases
	m.sampledAt = now
	corrupted := phases[states.PhaseCorrupted.String()]
	shouldAlert := corrupted > 0 && now.Sub(m.lastAlert) > m.alertCooldown
	if shouldAlert {
		m.lastAlert = now
	}
	m.mu.Unlock()

	m.logger.Debug().
		Int("goroutines", current).
		Int("peak_goroutines", peak).
		Interface("phases", phases).
		Msg("Server metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("corrupted_games", corrupted).
			Msg("Games waiting for recovery")
	}
	return shouldAlert
}

// Metrics is a point-in-time view of the last sample
type Metrics struct {
	Goroutines         int            `json:"goroutines"`
	BaselineGoroutines int            `json:"baseline_goroutines"`
	PeakGoroutines     int            `json:"peak_goroutines"`
	Phases             map[string]int `json:"phases"`
	SampledAt          time.Time      `json:"sampled_at"`
}

// GetMetrics returns the last sample
func (m *Monitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Metrics{
		Goroutines:         m.goroutines,
		BaselineGoroutines: m.baseline,
		PeakGoroutines:     m.peak,
		Phases:             copyMap(m.phases),
		SampledAt:          m.sampledAt,
	}
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
