package simulation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// BatchConfig describes a series of independent simulations between the
// same two strategies.
type BatchConfig struct {
	Rules     core.Rules
	PlayerOne string
	PlayerTwo string
	// StartingPlayer pins the first mover of every game; nil draws it per game.
	StartingPlayer *core.Player
	Games          int
	// Workers <= 0 uses runtime.NumCPU().
	Workers  int
	Seed     uint64
	MaxTurns int
	Logger   zerolog.Logger
}

// GameJob represents a single simulation job
type GameJob struct {
	SimID int
	Seed  uint64
}

// GameResult holds the outcome of a single game
type GameResult struct {
	SimID    int
	Seed     uint64
	GameID   string
	Winner   *core.Player
	Turns    int
	Duration time.Duration
	Err      error
}

// AggregatedStats summarizes multiple game results
type AggregatedStats struct {
	TotalGames    int           `json:"total_games"`
	PlayerOneWins int           `json:"player_one_wins"`
	PlayerTwoWins int           `json:"player_two_wins"`
	Ties          int           `json:"ties"`
	AvgTurns      float64       `json:"avg_turns"`
	MedianTurns   int           `json:"median_turns"`
	AvgDuration   time.Duration `json:"avg_duration_ns"`
	Errors        int           `json:"errors"`
}

// RunBatch plays cfg.Games simulations on a worker pool. Per-game seeds are
// drawn from cfg.Seed, so a batch is reproducible regardless of the number
// of workers.
func RunBatch(ctx context.Context, cfg BatchConfig) (AggregatedStats, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return AggregatedStats{}, err
	}
	for _, name := range []string{cfg.PlayerOne, cfg.PlayerTwo} {
		if _, err := strategy.New(name, nil); err != nil {
			return AggregatedStats{}, err
		}
	}
	if cfg.Games < 0 {
		return AggregatedStats{}, fmt.Errorf("batch needs a non-negative game count, got %d", cfg.Games)
	}

	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	logger := cfg.Logger.With().Str("component", "BatchRunner").Logger()
	logger.Info().
		Int("games", cfg.Games).
		Int("workers", numWorkers).
		Uint64("seed", cfg.Seed).
		Str("player_one", cfg.PlayerOne).
		Str("player_two", cfg.PlayerTwo).
		Msg("Starting batch")

	jobs := make(chan GameJob, cfg.Games)
	results := make(chan GameResult, cfg.Games)

	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go worker(ctx, &wg, jobs, results, cfg)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.Games; i++ {
		jobs <- GameJob{
			SimID: i,
			Seed:  rng.Uint64(),
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]GameResult, 0, cfg.Games)
	for result := range results {
		if result.Err != nil {
			logger.Warn().Err(result.Err).Int("sim_id", result.SimID).Msg("Game failed")
		}
		all = append(all, result)
	}

	stats := aggregateResults(all)
	logger.Info().
		Int("player_one_wins", stats.PlayerOneWins).
		Int("player_two_wins", stats.PlayerTwoWins).
		Int("ties", stats.Ties).
		Int("errors", stats.Errors).
		Float64("avg_turns", stats.AvgTurns).
		Msg("Batch finished")

	return stats, ctx.Err()
}

// worker processes simulation jobs from the jobs channel
func worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan GameJob, results chan<- GameResult, cfg BatchConfig) {
	defer wg.Done()

	for job := range jobs {
		results <- RunSingleGame(ctx, cfg, job)
	}
}

// RunSingleGame plays one seeded game to termination. The seed drives both
// strategies and the starting player draw.
func RunSingleGame(ctx context.Context, cfg BatchConfig, job GameJob) GameResult {
	start := time.Now()
	result := GameResult{SimID: job.SimID, Seed: job.Seed}

	rng := rand.New(rand.NewSource(job.Seed))
	one, err := strategy.New(cfg.PlayerOne, rng)
	if err != nil {
		result.Err = err
		return result
	}
	two, err := strategy.New(cfg.PlayerTwo, rng)
	if err != nil {
		result.Err = err
		return result
	}

	loop, err := NewLoop(ctx, Config{
		Rules:          cfg.Rules,
		Strategies:     map[core.Player]strategy.Strategy{core.PlayerOne: one, core.PlayerTwo: two},
		StartingPlayer: cfg.StartingPlayer,
		Rng:            rng,
		MaxTurns:       cfg.MaxTurns,
		Logger:         cfg.Logger.Level(zerolog.WarnLevel),
	})
	if err != nil {
		result.Err = err
		return result
	}

	result.GameID = loop.GameID()
	result.Err = loop.Run(ctx)
	result.Winner = loop.Winner()
	result.Turns = loop.TurnCount()
	result.Duration = time.Since(start)
	return result
}

// aggregateResults collects all results and computes aggregate statistics
func aggregateResults(results []GameResult) AggregatedStats {
	stats := AggregatedStats{TotalGames: len(results)}

	turnCounts := make([]int, 0, len(results))
	var totalDuration time.Duration

	for _, result := range results {
		if result.Err != nil {
			stats.Errors++
			continue
		}

		switch {
		case result.Winner == nil:
			stats.Ties++
		case *result.Winner == core.PlayerOne:
			stats.PlayerOneWins++
		default:
			stats.PlayerTwoWins++
		}

		turnCounts = append(turnCounts, result.Turns)
		totalDuration += result.Duration
	}

	if len(turnCounts) > 0 {
		sum := 0
		for _, tc := range turnCounts {
			sum += tc
		}
		stats.AvgTurns = float64(sum) / float64(len(turnCounts))
		stats.MedianTurns = median(turnCounts)
		stats.AvgDuration = totalDuration / time.Duration(len(turnCounts))
	}

	return stats
}

func median(values []int) int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
