package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Outcome labels recorded for finished simulations.
const (
	OutcomeTie     = "tie"
	OutcomeAborted = "aborted"
)

const (
	defaultCheckInterval  = 30 * time.Second
	defaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// Monitor tracks goroutine growth of the server process and counts the
// simulations and batches it has served.
type Monitor struct {
	mu             sync.RWMutex
	logger         zerolog.Logger
	started        time.Time
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	outcomes       map[string]int
	batches        int
	batchGames     int
}

// Metrics is a point-in-time copy of the monitor's counters.
type Metrics struct {
	UptimeSeconds int64          `json:"uptime_seconds"`
	Goroutines    int            `json:"goroutines"`
	Baseline      int            `json:"goroutine_baseline"`
	Peak          int            `json:"goroutine_peak"`
	Simulations   int            `json:"simulations"`
	Outcomes      map[string]int `json:"outcomes"`
	Batches       int            `json:"batches"`
	BatchGames    int            `json:"batch_games"`
}

// NewMonitor creates a monitor; checkInterval <= 0 uses 30s.
func NewMonitor(logger zerolog.Logger, checkInterval time.Duration) *Monitor {
	if checkInterval <= 0 {
		checkInterval = defaultCheckInterval
	}
	baseline := runtime.NumGoroutine()
	return &Monitor{
		logger:         logger.With().Str("component", "Monitor").Logger(),
		started:        time.Now(),
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  checkInterval,
		alertThreshold: defaultAlertThreshold,
		alertCooldown:  defaultAlertCooldown,
		stopChan:       make(chan struct{}),
		outcomes:       make(map[string]int),
	}
}

// Start begins periodic goroutine sampling.
func (m *Monitor) Start() {
	go m.run()
	m.logger.Info().
		Int("baseline", m.baseline).
		Dur("interval", m.checkInterval).
		Msg("Started runtime monitoring")
}

// Stop ends sampling. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sample()
		case <-m.stopChan:
			return
		}
	}
}

// sample records the current goroutine count and warns on high counts.
func (m *Monitor) sample() int {
	current := runtime.NumGoroutine()

	m.mu.Lock()
	m.current = current
	if current > m.peak {
		m.peak = current
	}
	shouldAlert := current > m.alertThreshold && time.Since(m.lastAlert) > m.alertCooldown
	if shouldAlert {
		m.lastAlert = time.Now()
	}
	peak := m.peak
	m.mu.Unlock()

	m.logger.Debug().
		Int("current", current).
		Int("baseline", m.baseline).
		Int("peak", peak).
		Msg("Goroutine metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("current", current).
			Int("threshold", m.alertThreshold).
			Msg("High goroutine count detected - possible leak")
	}
	return current
}

// RecordSimulation counts a single finished or aborted simulation. outcome
// is the winner token, OutcomeTie or OutcomeAborted.
func (m *Monitor) RecordSimulation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

// RecordBatch counts a completed batch of games.
func (m *Monitor) RecordBatch(games int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.batchGames += games
}

// Snapshot samples goroutines and returns a copy of all counters.
func (m *Monitor) Snapshot() Metrics {
	m.sample()

	m.mu.RLock()
	defer m.mu.RUnlock()

	outcomes := make(map[string]int, len(m.outcomes))
	total := 0
	for k, v := range m.outcomes {
		outcomes[k] = v
		total += v
	}

	return Metrics{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Goroutines:    m.current,
		Baseline:      m.baseline,
		Peak:          m.peak,
		Simulations:   total,
		Outcomes:      outcomes,
		Batches:       m.batches,
		BatchGames:    m.batchGames,
	}
}
