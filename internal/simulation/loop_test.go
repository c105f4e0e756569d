package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/mitchelldurbincs/mancala/internal/game/rules"
	"github.com/mitchelldurbincs/mancala/internal/game/states"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
	"github.com/mitchelldurbincs/mancala/internal/testutil"
)

// scriptedStrategy always answers with the same bin and error.
type scriptedStrategy struct {
	bin int
	err error
}

func (s scriptedStrategy) Name() string { return "scripted" }

func (s scriptedStrategy) ChooseBin(core.PlayerRow, *core.PlayerRow) (int, error) {
	return s.bin, s.err
}

func newTestLoop(t *testing.T, r core.Rules, one, two strategy.Strategy, start core.Player) *Loop {
	t.Helper()
	loop, err := NewLoop(context.Background(), Config{
		Rules:          r,
		Strategies:     map[core.Player]strategy.Strategy{core.PlayerOne: one, core.PlayerTwo: two},
		StartingPlayer: &start,
		Rng:            testutil.NewTestRNG(1),
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return loop
}

func byName(t *testing.T, name string) strategy.Strategy {
	t.Helper()
	s, err := strategy.New(name, testutil.NewTestRNG(3))
	require.NoError(t, err)
	return s
}

func TestLoop_DeterministicOutcomes(t *testing.T) {
	const (
		lo        = strategy.AlwaysMinimumName
		hi        = strategy.AlwaysMaximumName
		even      = strategy.EvenGoalOrPiecesOnOtherSideName
		evenSteal = strategy.EvenGoalStealAndPiecesOnOtherSideName
	)
	one, two := core.PlayerOne, core.PlayerTwo

	tests := []struct {
		name      string
		capture   bool
		p1, p2    string
		start     core.Player
		winner    *core.Player
		turns     int
		goalOne   int
		goalTwo   int
		stalemate bool
	}{
		{"minimum mirror", false, lo, lo, one, &one, 97, 25, 22, false},
		{"minimum against maximum", false, lo, hi, one, &one, 90, 28, 20, false},
		{"minimum against maximum, two starts", false, lo, hi, two, &one, 90, 25, 19, false},
		{"maximum against minimum", false, hi, lo, one, &two, 90, 19, 25, false},
		{"maximum mirror", false, hi, hi, one, &one, 84, 25, 22, false},
		{"even goal mirror", false, even, even, one, &one, 35, 25, 8, false},
		{"even goal steal mirror", false, evenSteal, evenSteal, one, &one, 64, 25, 16, false},
		{"capture minimum mirror ties", true, lo, lo, one, nil, 50, 24, 24, true},
		{"capture minimum mirror ties, two starts", true, lo, lo, two, nil, 50, 24, 24, true},
		{"capture minimum against maximum", true, lo, hi, one, &one, 31, 25, 11, false},
		{"capture maximum against minimum", true, hi, lo, one, &two, 39, 15, 25, false},
		{"capture maximum against minimum, two starts", true, hi, lo, two, &two, 31, 11, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := core.DefaultRules()
			r.Capture = tt.capture
			loop := newTestLoop(t, r, byName(t, tt.p1), byName(t, tt.p2), tt.start)

			require.NoError(t, loop.Run(context.Background()))
			assert.Equal(t, states.PhaseFinished, loop.Phase())
			assert.Equal(t, tt.turns, loop.TurnCount())

			if tt.winner == nil {
				assert.Nil(t, loop.Winner())
				assert.True(t, loop.IsTie())
			} else {
				require.NotNil(t, loop.Winner())
				assert.Equal(t, *tt.winner, *loop.Winner())
				assert.False(t, loop.IsTie())
			}

			final := loop.LastBoard()
			assert.Equal(t, tt.goalOne, final.Goal(core.PlayerOne))
			assert.Equal(t, tt.goalTwo, final.Goal(core.PlayerTwo))
			assert.Equal(t, r.TotalPieces(), final.TotalPieces())
			if tt.stalemate {
				assert.False(t, final.Row(core.PlayerOne).HasMoves())
				assert.False(t, final.Row(core.PlayerTwo).HasMoves())
			}

			boards, turns := loop.Boards(), loop.Turns()
			assert.Len(t, boards, len(turns)+1)
			assert.True(t, boards[0].Equal(r.NewBoard()))
			assert.Equal(t, tt.start, turns[0].Player)
		})
	}
}

func TestLoop_HistoryReplays(t *testing.T) {
	for _, capture := range []bool{false, true} {
		r := core.DefaultRules()
		r.Capture = capture

		for seed := uint64(1); seed <= 25; seed++ {
			loop, err := NewLoop(context.Background(), Config{
				Rules: r,
				Strategies: map[core.Player]strategy.Strategy{
					core.PlayerOne: strategy.NewRandomSelection(testutil.NewTestRNG(seed)),
					core.PlayerTwo: strategy.NewRandomSelection(testutil.NewTestRNG(seed + 1000)),
				},
				Rng:    testutil.NewTestRNG(seed),
				Logger: zerolog.Nop(),
			})
			require.NoError(t, err)
			require.NoError(t, loop.Run(context.Background()), "seed %d", seed)
			require.Equal(t, states.PhaseFinished, loop.Phase())

			boards, turns := loop.Boards(), loop.Turns()
			require.Len(t, boards, len(turns)+1)

			current := loop.StartingPlayer()
			for i, turn := range turns {
				require.Equal(t, current, turn.Player, "seed %d turn %d", seed, i)
				assert.Equal(t, r.TotalPieces(), boards[i].TotalPieces())

				move, err := rules.ResolveMove(r, boards[i], turn)
				require.NoError(t, err)
				if !move.Board.Equal(boards[i+1]) {
					// Only the final entry may differ: the sweep after a stalemate.
					require.Equal(t, len(turns)-1, i, "seed %d turn %d", seed, i)
					require.False(t, boards[i+1].Row(core.PlayerOne).HasMoves())
					require.False(t, boards[i+1].Row(core.PlayerTwo).HasMoves())
				}

				next, err := rules.NextPlayer(r, boards[i], turn, move.Board)
				require.NoError(t, err)
				current = next
			}
		}
	}
}

func TestLoop_StepAfterFinish(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(),
		byName(t, strategy.EvenGoalOrPiecesOnOtherSideName),
		byName(t, strategy.EvenGoalOrPiecesOnOtherSideName), core.PlayerOne)

	require.NoError(t, loop.Run(context.Background()))

	err := loop.Step(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyFinished)
	err = loop.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyFinished)
	assert.Equal(t, 35, loop.TurnCount())
}

func TestLoop_StepByStep(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(),
		byName(t, strategy.EvenGoalOrPiecesOnOtherSideName),
		byName(t, strategy.AlwaysMinimumName), core.PlayerOne)

	assert.Equal(t, states.PhaseNotStarted, loop.Phase())
	assert.Equal(t, core.PlayerOne, loop.CurrentPlayer())
	require.Len(t, loop.Boards(), 1)

	// Bin 3 holds four pieces and ends in the goal.
	require.NoError(t, loop.Step(context.Background()))
	assert.Equal(t, states.PhaseRunning, loop.Phase())
	assert.Equal(t, []core.Turn{{Player: core.PlayerOne, SelectedBin: 3}}, loop.Turns())
	assert.Equal(t, core.PlayerOne, loop.CurrentPlayer())
	assert.Equal(t, []int{5, 5, 5, 0, 4, 4}, loop.LastBoard().Row(core.PlayerOne).Bins())
	assert.Equal(t, 1, loop.LastBoard().Goal(core.PlayerOne))
}

func TestLoop_TurnLimit(t *testing.T) {
	start := core.PlayerOne
	loop, err := NewLoop(context.Background(), Config{
		Rules: core.DefaultRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMinimum{},
		},
		StartingPlayer: &start,
		MaxTurns:       5,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	err = loop.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Equal(t, states.PhaseAborted, loop.Phase())
	assert.Equal(t, 5, loop.TurnCount())
	assert.Nil(t, loop.Winner())
	assert.False(t, loop.IsTie())
	assert.ErrorIs(t, loop.Err(), ErrTurnLimit)
	assert.Len(t, loop.Boards(), 6)
}

func TestLoop_ContextCancelled(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(), strategy.AlwaysMinimum{}, strategy.AlwaysMaximum{}, core.PlayerTwo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, states.PhaseAborted, loop.Phase())
	assert.Equal(t, 0, loop.TurnCount())

	_, err = NewLoop(ctx, Config{Rules: core.DefaultRules(), Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoop_FatalStrategyErrors(t *testing.T) {
	boom := errors.New("strategy exploded")

	tests := []struct {
		name    string
		one     strategy.Strategy
		wantErr error
	}{
		{"strategy error", scriptedStrategy{err: boom}, boom},
		{"missing opponent is fatal", scriptedStrategy{err: strategy.ErrMissingOpponentRow}, strategy.ErrMissingOpponentRow},
		{"bin out of range", scriptedStrategy{bin: 6}, core.ErrInvalidBin},
		{"false stalemate", scriptedStrategy{err: strategy.ErrNoLegalMove}, strategy.ErrNoLegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := newTestLoop(t, core.DefaultRules(), tt.one, strategy.AlwaysMinimum{}, core.PlayerOne)

			err := loop.Run(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, states.PhaseAborted, loop.Phase())
			assert.Len(t, loop.Boards(), 1)
			assert.Empty(t, loop.Turns())
		})
	}
}

func TestLoop_EmptyBinChoiceAborts(t *testing.T) {
	start := core.PlayerOne
	loop := newTestLoop(t, core.DefaultRules(), scriptedStrategy{bin: 3}, strategy.AlwaysMinimum{}, start)

	// The first move empties bin 3 and earns a bonus turn; the second pick of
	// bin 3 is illegal.
	err := loop.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrEmptyBin)
	assert.Equal(t, states.PhaseAborted, loop.Phase())
	assert.Equal(t, 1, loop.TurnCount())
}

func TestLoop_TurnFailuresCarryMoveAndPlayer(t *testing.T) {
	tests := []struct {
		name      string
		one       strategy.Strategy
		wantMove  int
		wantOp    string
		wantCause error
	}{
		{"strategy error", scriptedStrategy{err: strategy.ErrMissingOpponentRow}, 1, "choose bin", strategy.ErrMissingOpponentRow},
		{"bin out of range", scriptedStrategy{bin: 6}, 1, "build turn", core.ErrInvalidBin},
		{"empty bin on bonus turn", scriptedStrategy{bin: 3}, 2, "resolve move", core.ErrEmptyBin},
		{"false stalemate", scriptedStrategy{err: strategy.ErrNoLegalMove}, 1, "choose bin", strategy.ErrNoLegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := newTestLoop(t, core.DefaultRules(), tt.one, strategy.AlwaysMinimum{}, core.PlayerOne)

			err := loop.Run(context.Background())
			var ge *core.GameError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.wantMove, ge.Move)
			assert.Equal(t, core.PlayerOne, ge.Player)
			assert.Equal(t, tt.wantOp, ge.Operation)
			assert.ErrorIs(t, err, tt.wantCause)
			assert.Equal(t, err, loop.Err())
		})
	}
}

func TestLoop_TurnLimitIsNotAGameError(t *testing.T) {
	start := core.PlayerOne
	loop, err := NewLoop(context.Background(), Config{
		Rules: core.DefaultRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMaximum{},
		},
		StartingPlayer: &start,
		MaxTurns:       2,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	err = loop.Run(context.Background())
	require.ErrorIs(t, err, ErrTurnLimit)
	var ge *core.GameError
	assert.False(t, errors.As(err, &ge))
}

// recordingBus implements events.Bus and keeps every published event type.
type recordingBus struct {
	published []string
	subs      map[string]events.Subscriber
}

func (b *recordingBus) Publish(e events.Event) {
	b.published = append(b.published, e.Type())
	for _, s := range b.subs {
		if s.InterestedIn(e.Type()) {
			s.HandleEvent(e)
		}
	}
}

func (b *recordingBus) Subscribe(s events.Subscriber) {
	if b.subs == nil {
		b.subs = map[string]events.Subscriber{}
	}
	b.subs[s.ID()] = s
}

func (b *recordingBus) Unsubscribe(id string) { delete(b.subs, id) }

func (b *recordingBus) SubscribeFunc(string, events.EventHandler) string { return "" }

func TestLoop_PublishesToAnyBus(t *testing.T) {
	bus := &recordingBus{}
	start := core.PlayerOne
	loop, err := NewLoop(context.Background(), Config{
		Rules: testutil.CaptureRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMinimum{},
		},
		StartingPlayer: &start,
		EventBus:       bus,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Same(t, bus, loop.EventBus())

	require.NoError(t, loop.Run(context.Background()))

	require.NotEmpty(t, bus.published)
	assert.Equal(t, events.TypeStateTransition, bus.published[0])
	assert.Equal(t, events.TypeGameStarted, bus.published[1])
	assert.Contains(t, bus.published, events.TypeStalemate)
	assert.Equal(t, events.TypeGameEnded, bus.published[len(bus.published)-1])

	turns := 0
	for _, typ := range bus.published {
		if typ == events.TypeTurnTaken {
			turns++
		}
	}
	assert.Equal(t, 50, turns)
}

func TestLoop_DefaultBusAcceptsSubscribers(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(), strategy.AlwaysMinimum{}, strategy.AlwaysMaximum{}, core.PlayerOne)
	require.NotNil(t, loop.EventBus())

	ended := 0
	loop.EventBus().SubscribeFunc(events.TypeGameEnded, func(events.Event) { ended++ })
	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, 1, ended)
}

func TestLoop_Reset(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(), strategy.AlwaysMinimum{}, strategy.AlwaysMaximum{}, core.PlayerTwo)
	firstID := loop.GameID()

	require.NoError(t, loop.Run(context.Background()))
	finalBoards := loop.Boards()
	finalCopy := make([]core.Board, len(finalBoards))
	for i, b := range finalBoards {
		finalCopy[i] = b.Clone()
	}

	require.NoError(t, loop.Reset())
	assert.NotEqual(t, firstID, loop.GameID())
	assert.Equal(t, states.PhaseNotStarted, loop.Phase())
	assert.Equal(t, core.PlayerTwo, loop.StartingPlayer())
	assert.Equal(t, core.PlayerTwo, loop.CurrentPlayer())
	assert.Len(t, loop.Boards(), 1)
	assert.Empty(t, loop.Turns())
	assert.Nil(t, loop.Winner())

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, 90, loop.TurnCount())

	for i := range finalBoards {
		assert.True(t, finalCopy[i].Equal(finalBoards[i]), "board %d of the previous run changed", i)
	}
}

func TestLoop_ResetWhileRunning(t *testing.T) {
	loop := newTestLoop(t, core.DefaultRules(), strategy.AlwaysMinimum{}, strategy.AlwaysMaximum{}, core.PlayerOne)
	require.NoError(t, loop.Step(context.Background()))

	err := loop.Reset()
	assert.ErrorIs(t, err, states.ErrInvalidTransition)
	assert.Equal(t, states.PhaseRunning, loop.Phase())
}

func TestLoop_ResetDrawsStartingPlayer(t *testing.T) {
	loop, err := NewLoop(context.Background(), Config{
		Rules: core.DefaultRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMinimum{},
		},
		Rng:    testutil.NewTestRNG(42),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	seen := map[core.Player]bool{loop.StartingPlayer(): true}
	for i := 0; i < 50; i++ {
		require.NoError(t, loop.Reset())
		seen[loop.StartingPlayer()] = true
	}
	assert.Len(t, seen, 2)
}

func TestNewLoop_InvalidConfig(t *testing.T) {
	bad := core.Player(4)
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"invalid rules", Config{
			Rules:      core.Rules{Bins: 0, StartingPieces: 4, VictoryThreshold: 24},
			Strategies: map[core.Player]strategy.Strategy{core.PlayerOne: strategy.AlwaysMinimum{}, core.PlayerTwo: strategy.AlwaysMinimum{}},
		}, core.ErrInvalidRules},
		{"missing strategy", Config{
			Rules:      core.DefaultRules(),
			Strategies: map[core.Player]strategy.Strategy{core.PlayerOne: strategy.AlwaysMinimum{}},
		}, core.ErrMissingPlayer},
		{"extra strategy", Config{
			Rules: core.DefaultRules(),
			Strategies: map[core.Player]strategy.Strategy{
				core.PlayerOne: strategy.AlwaysMinimum{}, core.PlayerTwo: strategy.AlwaysMinimum{}, bad: strategy.AlwaysMinimum{},
			},
		}, core.ErrInvalidPlayer},
		{"invalid starting player", Config{
			Rules:          core.DefaultRules(),
			Strategies:     map[core.Player]strategy.Strategy{core.PlayerOne: strategy.AlwaysMinimum{}, core.PlayerTwo: strategy.AlwaysMinimum{}},
			StartingPlayer: &bad,
		}, core.ErrInvalidPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = zerolog.Nop()
			_, err := NewLoop(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoop_Events(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	counts := map[string]int{}
	var ended *events.GameEndedEvent
	var transitions []string
	for _, typ := range []string{events.TypeGameStarted, events.TypeTurnTaken, events.TypeBonusTurn, events.TypeGameEnded, events.TypeStalemate} {
		typ := typ
		bus.SubscribeFunc(typ, func(e events.Event) {
			counts[typ]++
			if ge, ok := e.(*events.GameEndedEvent); ok {
				ended = ge
			}
		})
	}
	bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
		transitions = append(transitions, e.(*events.StateTransitionEvent).ToPhase)
	})

	start := core.PlayerOne
	loop, err := NewLoop(context.Background(), Config{
		Rules: core.DefaultRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMaximum{},
		},
		StartingPlayer: &start,
		EventBus:       bus,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, loop.Run(context.Background()))

	turns := loop.Turns()
	bonus := 0
	for i := 0; i+1 < len(turns); i++ {
		if turns[i+1].Player == turns[i].Player {
			bonus++
		}
	}

	assert.Equal(t, 1, counts[events.TypeGameStarted])
	assert.Equal(t, len(turns), counts[events.TypeTurnTaken])
	assert.Equal(t, bonus, counts[events.TypeBonusTurn])
	assert.Equal(t, 0, counts[events.TypeStalemate])
	assert.Equal(t, 1, counts[events.TypeGameEnded])
	assert.Equal(t, []string{"Running", "Finished"}, transitions)

	require.NotNil(t, ended)
	require.NotNil(t, ended.Winner)
	assert.Equal(t, core.PlayerOne, *ended.Winner)
	assert.Equal(t, "victory", ended.Reason)
	assert.Equal(t, 90, ended.FinalTurn)
	assert.Equal(t, 28, ended.GoalOne)
	assert.Equal(t, 20, ended.GoalTwo)
	assert.Equal(t, loop.GameID(), ended.GameID())
}

func TestLoop_StalemateEvent(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	var stalemate *events.StalemateEvent
	var reason string
	bus.SubscribeFunc(events.TypeStalemate, func(e events.Event) { stalemate = e.(*events.StalemateEvent) })
	bus.SubscribeFunc(events.TypeGameEnded, func(e events.Event) { reason = e.(*events.GameEndedEvent).Reason })

	start := core.PlayerOne
	loop, err := NewLoop(context.Background(), Config{
		Rules: testutil.CaptureRules(),
		Strategies: map[core.Player]strategy.Strategy{
			core.PlayerOne: strategy.AlwaysMinimum{},
			core.PlayerTwo: strategy.AlwaysMinimum{},
		},
		StartingPlayer: &start,
		EventBus:       bus,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, loop.Run(context.Background()))

	require.NotNil(t, stalemate)
	assert.Equal(t, 24, stalemate.GoalOne)
	assert.Equal(t, 24, stalemate.GoalTwo)
	assert.Equal(t, "stalemate", reason)
}

func TestHistory_ReplaceLastKeepsEarlierViews(t *testing.T) {
	r := core.DefaultRules()
	h := newHistory(r, r.NewBoard())

	next := testutil.MustBoard(core.PlayerOne,
		testutil.MustRow([]int{5, 5, 5, 0, 4, 4}, 1), testutil.FreshRow())
	h.record(testutil.MustTurn(core.PlayerOne, 3), next)
	held := h.last()

	swept := testutil.MustBoard(core.PlayerOne,
		testutil.MustRow([]int{0, 0, 0, 0, 0, 0}, 24), testutil.MustRow([]int{0, 0, 0, 0, 0, 0}, 24))
	h.replaceLast(swept)

	assert.Equal(t, 2, h.boardCount())
	assert.Equal(t, 1, h.turnCount())
	assert.True(t, h.last().Equal(swept))
	assert.True(t, held.Equal(next), "a board handed out before the sweep must not change")
	assert.True(t, h.board(0).Equal(r.NewBoard()))

	h.reset(r.NewBoard())
	assert.Equal(t, 1, h.boardCount())
	assert.Equal(t, 0, h.turnCount())
	assert.True(t, held.Equal(next))
}
