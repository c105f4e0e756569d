package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/mancala/internal/config"
	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/mitchelldurbincs/mancala/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/mancala/internal/simulation"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

type options struct {
	playerOne string
	playerTwo string
	start     *core.Player
	seed      uint64
	maxTurns  int
	trace     bool
	color     bool
	asJSON    bool
	query     string
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	p1 := flag.String("p1", "", "Strategy for player one (empty to use config default)")
	p2 := flag.String("p2", "", "Strategy for player two (empty to use config default)")
	start := flag.String("start", "", "Starting player: one or two (empty to use config default)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 to use config default, then time)")
	maxTurns := flag.Int("max-turns", -1, "Turn limit before aborting (-1 to use config default)")
	batch := flag.Bool("batch", false, "Run a batch of games and print aggregate stats")
	games := flag.Int("games", -1, "Number of games in batch mode (-1 to use config default)")
	workers := flag.Int("workers", -1, "Batch workers (-1 to use config default, 0 for NumCPU)")
	capture := flag.Bool("capture", false, "Enable the capture rule")
	trace := flag.Bool("trace", false, "Print the board after every turn")
	color := flag.Bool("color", false, "Use ANSI colors when printing boards")
	asJSON := flag.Bool("json", false, "Print the full report (or batch stats) as JSON")
	query := flag.String("query", "", "gjson path evaluated against the JSON output, e.g. boards.#")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	list := flag.Bool("list", false, "List available strategies and exit")
	flag.Parse()

	if *list {
		for _, name := range strategy.Names() {
			fmt.Println(name)
		}
		return
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *p1 == "" {
		*p1 = cfg.Simulation.PlayerOne
	}
	if *p2 == "" {
		*p2 = cfg.Simulation.PlayerTwo
	}
	if *start == "" {
		*start = cfg.Simulation.StartingPlayer
	}
	if *seed == 0 {
		*seed = cfg.Simulation.Seed
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	if *maxTurns == -1 {
		*maxTurns = cfg.Simulation.MaxTurns
	}
	if *games == -1 {
		*games = cfg.Batch.Games
	}
	if *workers == -1 {
		*workers = cfg.Batch.Workers
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.HTTP.LogLevel
	}
	if *capture {
		config.Set("game.capture_enabled", true)
	}

	setupLogging(*logLevel)

	opts := options{
		playerOne: *p1,
		playerTwo: *p2,
		seed:      *seed,
		maxTurns:  *maxTurns,
		trace:     *trace,
		color:     *color,
		asJSON:    *asJSON,
		query:     *query,
	}
	if *start != "" {
		p, err := core.ParsePlayer(*start)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid starting player")
		}
		opts.start = &p
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if *batch {
		err = runBatch(ctx, cfg, opts, *games, *workers)
	} else {
		err = runGame(ctx, cfg, opts)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}
}

func runGame(ctx context.Context, cfg *config.Config, opts options) error {
	rng := rand.New(rand.NewSource(opts.seed))
	one, err := strategy.New(opts.playerOne, rng)
	if err != nil {
		return err
	}
	two, err := strategy.New(opts.playerTwo, rng)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(log.Logger)
	if cfg.Development.VerboseLogging {
		sub := subscribers.NewLoggerSubscriber("cli-event-logger", log.Logger, zerolog.DebugLevel)
		sub.SetDevMode(true)
		bus.Subscribe(sub)
	}

	loop, err := simulation.NewLoop(ctx, simulation.Config{
		Rules:          cfg.Rules(),
		Strategies:     map[core.Player]strategy.Strategy{core.PlayerOne: one, core.PlayerTwo: two},
		StartingPlayer: opts.start,
		Rng:            rng,
		MaxTurns:       opts.maxTurns,
		EventBus:       bus,
		Logger:         log.Logger,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("game_id", loop.GameID()).
		Uint64("seed", opts.seed).
		Str("player_one", opts.playerOne).
		Str("player_two", opts.playerTwo).
		Msg("Starting simulation")

	var runErr error
	if opts.trace {
		fmt.Print(loop.Render(opts.color))
		for !loop.Phase().IsTerminal() {
			if runErr = loop.Step(ctx); runErr != nil {
				break
			}
			fmt.Println()
			fmt.Print(loop.Render(opts.color))
		}
	} else {
		runErr = loop.Run(ctx)
	}

	if opts.asJSON || opts.query != "" {
		report, err := loop.Report()
		if err != nil {
			return err
		}
		if err := printJSON(report, opts.query); err != nil {
			return err
		}
	} else if !opts.trace {
		fmt.Print(loop.Render(opts.color))
	}

	return runErr
}

func runBatch(ctx context.Context, cfg *config.Config, opts options, games, workers int) error {
	stats, err := simulation.RunBatch(ctx, simulation.BatchConfig{
		Rules:          cfg.Rules(),
		PlayerOne:      opts.playerOne,
		PlayerTwo:      opts.playerTwo,
		StartingPlayer: opts.start,
		Games:          games,
		Workers:        workers,
		Seed:           opts.seed,
		MaxTurns:       opts.maxTurns,
		Logger:         log.Logger,
	})
	if err != nil {
		return err
	}

	if opts.asJSON || opts.query != "" {
		return printJSON(stats, opts.query)
	}

	fmt.Printf("%s vs %s, %d games (seed %d)\n", opts.playerOne, opts.playerTwo, stats.TotalGames, opts.seed)
	fmt.Printf("  one wins: %d\n", stats.PlayerOneWins)
	fmt.Printf("  two wins: %d\n", stats.PlayerTwoWins)
	fmt.Printf("  ties:     %d\n", stats.Ties)
	fmt.Printf("  errors:   %d\n", stats.Errors)
	fmt.Printf("  turns:    avg %.1f, median %d\n", stats.AvgTurns, stats.MedianTurns)
	return nil
}

// printJSON writes v as indented JSON, or only the value at query when set.
func printJSON(v any, query string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if query != "" {
		result := gjson.GetBytes(data, query)
		if !result.Exists() {
			return fmt.Errorf("query %q matched nothing", query)
		}
		fmt.Println(result.String())
		return nil
	}

	pretty, err := json.MarshalIndent(json.RawMessage(data), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
