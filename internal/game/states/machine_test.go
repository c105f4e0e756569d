package states

import (
	"errors"
	"testing"
	"time"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamePhase_String(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		expected string
	}{
		{PhaseNotStarted, "NotStarted"},
		{PhaseRunning, "Running"},
		{PhaseFinished, "Finished"},
		{PhaseAborted, "Aborted"},
		{GamePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range []GamePhase{PhaseNotStarted, PhaseRunning, PhaseFinished, PhaseAborted} {
		parsed, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParsePhase("Paused")
	assert.Error(t, err)
}

func TestGamePhase_Properties(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		assert.True(t, PhaseFinished.IsTerminal())
		assert.True(t, PhaseAborted.IsTerminal())
		assert.False(t, PhaseRunning.IsTerminal())
		assert.False(t, PhaseNotStarted.IsTerminal())
	})

	t.Run("CanReceiveMoves", func(t *testing.T) {
		assert.True(t, PhaseNotStarted.CanReceiveMoves())
		assert.True(t, PhaseRunning.CanReceiveMoves())
		assert.False(t, PhaseFinished.CanReceiveMoves())
		assert.False(t, PhaseAborted.CanReceiveMoves())
	})
}

func TestGamePhase_Transitions(t *testing.T) {
	allPhases := []GamePhase{PhaseNotStarted, PhaseRunning, PhaseFinished, PhaseAborted}
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseNotStarted, []GamePhase{PhaseRunning, PhaseAborted}},
		{PhaseRunning, []GamePhase{PhaseFinished, PhaseAborted}},
		{PhaseFinished, []GamePhase{PhaseNotStarted}},
		{PhaseAborted, []GamePhase{PhaseNotStarted}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())

			for _, target := range allPhases {
				shouldAllow := false
				for _, allowed := range tt.allowed {
					if target == allowed {
						shouldAllow = true
						break
					}
				}
				assert.Equal(t, shouldAllow, tt.from.CanTransitionTo(target))
			}
		})
	}

	assert.Empty(t, GamePhase(42).AllowedTransitions())
}

func TestGameContext(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("NewGameContext", func(t *testing.T) {
		ctx := NewGameContext("test-game", logger)
		assert.Equal(t, "test-game", ctx.GameID)
		assert.Nil(t, ctx.Winner)
	})

	t.Run("GetElapsedTime", func(t *testing.T) {
		ctx := NewGameContext("test-game", logger)
		assert.Equal(t, time.Duration(0), ctx.GetElapsedTime())

		ctx.StartTime = time.Now().Add(-10 * time.Second)
		elapsed := ctx.GetElapsedTime()
		assert.Greater(t, elapsed, 9*time.Second)
		assert.Less(t, elapsed, 11*time.Second)

		ctx.EndTime = ctx.StartTime.Add(5 * time.Second)
		assert.Equal(t, 5*time.Second, ctx.GetElapsedTime())
	})
}

func TestStateMachine(t *testing.T) {
	setup := func() (*StateMachine, *GameContext, *[]string) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		bus := events.NewEventBus(zerolog.Nop())
		var seen []string
		bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
			st := e.(*events.StateTransitionEvent)
			seen = append(seen, st.FromPhase+"->"+st.ToPhase)
		})
		return NewStateMachine(ctx, bus), ctx, &seen
	}

	t.Run("NewStateMachine", func(t *testing.T) {
		sm, ctx, _ := setup()
		assert.Equal(t, PhaseNotStarted, sm.CurrentPhase())
		assert.Len(t, sm.states, 4)
		assert.Same(t, ctx, sm.GetContext())
		assert.Empty(t, sm.GetHistory())
	})

	t.Run("Finish with a winner", func(t *testing.T) {
		sm, ctx, seen := setup()

		require.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))
		assert.False(t, ctx.StartTime.IsZero())

		winner := core.PlayerTwo
		ctx.Winner = &winner
		require.NoError(t, sm.TransitionTo(PhaseFinished, "victory"))
		assert.Equal(t, PhaseFinished, sm.CurrentPhase())
		assert.False(t, ctx.EndTime.IsZero())
		assert.Equal(t, core.PlayerTwo, *ctx.Winner)

		assert.Equal(t, []string{"NotStarted->Running", "Running->Finished"}, *seen)
		history := sm.GetHistory()
		require.Len(t, history, 2)
		assert.Equal(t, "victory", history[1].Reason)
	})

	t.Run("Abort requires an error", func(t *testing.T) {
		sm, ctx, _ := setup()
		require.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))

		err := sm.TransitionTo(PhaseAborted, "no error recorded")
		assert.Error(t, err)
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())

		ctx.Error = errors.New("engine failure")
		require.NoError(t, sm.TransitionTo(PhaseAborted, "engine failure"))
		assert.Equal(t, PhaseAborted, sm.CurrentPhase())
		assert.Nil(t, ctx.Winner)
	})

	t.Run("Finish rejects a recorded error", func(t *testing.T) {
		sm, ctx, _ := setup()
		require.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))
		ctx.Error = errors.New("boom")
		assert.Error(t, sm.TransitionTo(PhaseFinished, "victory"))
	})

	t.Run("Invalid Transitions", func(t *testing.T) {
		sm, _, seen := setup()

		err := sm.TransitionTo(PhaseFinished, "skip running")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, PhaseNotStarted, sm.CurrentPhase())
		assert.Empty(t, *seen)
		assert.False(t, sm.CanTransitionTo(PhaseFinished))
		assert.True(t, sm.CanTransitionTo(PhaseRunning))
	})

	t.Run("Reset after finishing", func(t *testing.T) {
		sm, ctx, seen := setup()
		require.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))
		require.NoError(t, sm.TransitionTo(PhaseFinished, "tie"))
		winner := core.PlayerTwo
		ctx.Winner = &winner
		ctx.Error = errors.New("stale")

		require.NoError(t, sm.Reset("second-game"))
		assert.Equal(t, PhaseNotStarted, sm.CurrentPhase())
		assert.Equal(t, "second-game", ctx.GameID)
		assert.True(t, ctx.StartTime.IsZero())
		assert.Nil(t, ctx.Winner)
		assert.NoError(t, ctx.Error)

		history := sm.GetHistory()
		require.Len(t, history, 1)
		assert.Equal(t, PhaseFinished, history[0].From)
		assert.Equal(t, PhaseNotStarted, history[0].To)
		assert.Equal(t, "Finished->NotStarted", (*seen)[len(*seen)-1])
	})

	t.Run("Reset before starting", func(t *testing.T) {
		sm, ctx, seen := setup()
		require.NoError(t, sm.Reset(""))
		assert.Equal(t, PhaseNotStarted, sm.CurrentPhase())
		assert.Equal(t, "test-game", ctx.GameID)
		assert.Empty(t, *seen)
	})

	t.Run("Reset while running", func(t *testing.T) {
		sm, _, _ := setup()
		require.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))
		assert.ErrorIs(t, sm.Reset(""), ErrInvalidTransition)
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())
	})

	t.Run("Nil publisher", func(t *testing.T) {
		sm := NewStateMachine(NewGameContext("quiet", zerolog.Nop()), nil)
		assert.NoError(t, sm.TransitionTo(PhaseRunning, "first move"))
	})

	t.Run("History is bounded", func(t *testing.T) {
		sm, ctx, _ := setup()
		sm.maxHistorySize = 3
		for i := 0; i < 3; i++ {
			require.NoError(t, sm.TransitionTo(PhaseRunning, "run"))
			ctx.Error = errors.New("stop")
			require.NoError(t, sm.TransitionTo(PhaseAborted, "stop"))
			require.NoError(t, sm.TransitionTo(PhaseNotStarted, "again"))
		}
		history := sm.GetHistory()
		require.Len(t, history, 3)
		assert.Equal(t, "again", history[2].Reason)
	})
}
