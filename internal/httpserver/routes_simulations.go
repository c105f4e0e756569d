package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/monitoring"
	"github.com/mitchelldurbincs/mancala/internal/serialize"
	"github.com/mitchelldurbincs/mancala/internal/simulation"
	"github.com/mitchelldurbincs/mancala/internal/store"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// simulationReq is the payload of POST /simulations.
type simulationReq struct {
	PlayerOne      string  `json:"player_one"`
	PlayerTwo      string  `json:"player_two"`
	StartingPlayer *string `json:"starting_player"` // "one" | "two"; drawn when absent
	Seed           *uint64 `json:"seed"`            // time based when absent
}

// simulationRes is the stored report plus the abort reason of a run that
// did not finish.
type simulationRes struct {
	simulation.Report
	Error string `json:"error,omitempty"`
}

type simulationSummary struct {
	ID               string            `json:"id"`
	PlayerStrategies map[string]string `json:"player_strategies"`
	StartingPlayer   string            `json:"starting_player"`
	WinningPlayer    *string           `json:"winning_player"`
	TurnCount        int               `json:"turn_count"`
}

// batchReq is the payload of POST /batches.
type batchReq struct {
	PlayerOne      string  `json:"player_one"`
	PlayerTwo      string  `json:"player_two"`
	StartingPlayer *string `json:"starting_player"`
	Games          int     `json:"games"`
	Seed           *uint64 `json:"seed"`
}

type batchRes struct {
	PlayerOne string                     `json:"player_one"`
	PlayerTwo string                     `json:"player_two"`
	Seed      uint64                     `json:"seed"`
	Stats     simulation.AggregatedStats `json:"stats"`
}

func (s *Server) mountSimulations() {
	s.r.Route("/simulations", func(r chi.Router) {
		r.Post("/", s.handleCreateSimulation)
		r.Get("/", s.handleListSimulations)
		r.Get("/{id}", s.handleGetSimulation)
	})
	s.r.Post("/batches", s.handleBatch)
}

// handleCreateSimulation plays one game to termination, stores its report
// and returns it. A run aborted by the turn limit is still stored.
func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	start, err := parseStartingPlayer(req.StartingPlayer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_starting_player", err.Error())
		return
	}

	rng := rand.New(rand.NewSource(seedOrNow(req.Seed)))
	one, err := strategy.New(req.PlayerOne, rng)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_strategy", err.Error())
		return
	}
	two, err := strategy.New(req.PlayerTwo, rng)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_strategy", err.Error())
		return
	}

	loop, err := simulation.NewLoop(r.Context(), simulation.Config{
		Rules:          s.opts.Rules,
		Strategies:     map[core.Player]strategy.Strategy{core.PlayerOne: one, core.PlayerTwo: two},
		StartingPlayer: start,
		Rng:            rng,
		MaxTurns:       s.opts.MaxTurns,
		Logger:         s.logger,
	})
	if r.Context().Err() != nil {
		// the timeout middleware answers
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create simulation")
		writeError(w, http.StatusInternalServerError, "simulation_failed", err.Error())
		return
	}

	runErr := loop.Run(r.Context())
	if r.Context().Err() != nil {
		return
	}

	report, err := loop.Report()
	if err != nil {
		s.logger.Error().Err(err).Str("game_id", loop.GameID()).Msg("Failed to build report")
		writeError(w, http.StatusInternalServerError, "report_failed", err.Error())
		return
	}
	if err := s.store.Save(r.Context(), report); err != nil {
		s.logger.Error().Err(err).Str("game_id", report.ID).Msg("Failed to save report")
		writeError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	res := simulationRes{Report: report}
	switch {
	case runErr != nil:
		s.logger.Warn().Err(runErr).Str("game_id", report.ID).Msg("Simulation aborted")
		res.Error = runErr.Error()
		s.monitor.RecordSimulation(monitoring.OutcomeAborted)
	case report.WinningPlayer != nil:
		s.monitor.RecordSimulation(*report.WinningPlayer)
	default:
		s.monitor.RecordSimulation(monitoring.OutcomeTie)
	}
	w.Header().Set("Location", "/simulations/"+report.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}

	out := make([]simulationSummary, 0, len(reports))
	for _, rep := range reports {
		out = append(out, simulationSummary{
			ID:               rep.ID,
			PlayerStrategies: rep.PlayerStrategies,
			StartingPlayer:   rep.StartingPlayer,
			WinningPlayer:    rep.WinningPlayer,
			TurnCount:        len(rep.Turns),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"simulations": out})
}

// handleBatch runs independent seeded games and returns aggregate stats.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.Games < 1 || req.Games > s.opts.MaxBatchGames {
		writeError(w, http.StatusBadRequest, "invalid_games",
			fmt.Sprintf("games must be between 1 and %d, got %d", s.opts.MaxBatchGames, req.Games))
		return
	}
	start, err := parseStartingPlayer(req.StartingPlayer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_starting_player", err.Error())
		return
	}

	seed := seedOrNow(req.Seed)
	stats, err := simulation.RunBatch(r.Context(), simulation.BatchConfig{
		Rules:          s.opts.Rules,
		PlayerOne:      req.PlayerOne,
		PlayerTwo:      req.PlayerTwo,
		StartingPlayer: start,
		Games:          req.Games,
		Workers:        s.opts.BatchWorkers,
		Seed:           seed,
		MaxTurns:       s.opts.MaxTurns,
		Logger:         s.logger,
	})
	if r.Context().Err() != nil {
		return
	}
	if errors.Is(err, strategy.ErrUnknownStrategy) {
		writeError(w, http.StatusBadRequest, "unknown_strategy", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "batch_failed", err.Error())
		return
	}

	s.monitor.RecordBatch(stats.TotalGames)
	writeJSON(w, http.StatusOK, batchRes{
		PlayerOne: req.PlayerOne,
		PlayerTwo: req.PlayerTwo,
		Seed:      seed,
		Stats:     stats,
	})
}

func parseStartingPlayer(token *string) (*core.Player, error) {
	if token == nil || *token == "" {
		return nil, nil
	}
	p, err := serialize.DecodePlayer(*token)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func seedOrNow(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return uint64(time.Now().UnixNano())
}
