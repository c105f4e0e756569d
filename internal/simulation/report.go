package simulation

import (
	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/serialize"
)

// Report is the externally visible record of a simulation run.
type Report struct {
	ID               string                `json:"id"`
	PlayerStrategies map[string]string     `json:"player_strategies"`
	StartingPlayer   string                `json:"starting_player"`
	WinningPlayer    *string               `json:"winning_player"`
	Turns            []serialize.TurnJSON  `json:"turns"`
	Boards           []serialize.BoardJSON `json:"boards"`
}

// Report serializes the current history. WinningPlayer is nil for a tie,
// an aborted run, or a run that has not finished.
func (l *Loop) Report() (Report, error) {
	r := Report{
		ID:               l.GameID(),
		PlayerStrategies: make(map[string]string, len(l.strategies)),
		Turns:            make([]serialize.TurnJSON, 0, l.history.turnCount()),
		Boards:           make([]serialize.BoardJSON, 0, l.history.boardCount()),
	}

	for p, s := range l.strategies {
		token, err := serialize.Player(p)
		if err != nil {
			return Report{}, err
		}
		r.PlayerStrategies[token] = s.Name()
	}

	starting, err := serialize.Player(l.starting)
	if err != nil {
		return Report{}, err
	}
	r.StartingPlayer = starting

	if w := l.Winner(); w != nil {
		token, err := serialize.Player(*w)
		if err != nil {
			return Report{}, err
		}
		r.WinningPlayer = &token
	}

	for _, t := range l.history.turns {
		tj, err := serialize.Turn(t)
		if err != nil {
			return Report{}, err
		}
		r.Turns = append(r.Turns, tj)
	}
	for i := 0; i < l.history.boardCount(); i++ {
		r.Boards = append(r.Boards, serialize.Board(l.history.board(i)))
	}

	return r, nil
}

// Winner decodes WinningPlayer. ok is false for a tie or an unfinished run.
func (r Report) Winner() (core.Player, bool) {
	if r.WinningPlayer == nil {
		return 0, false
	}
	p, err := serialize.DecodePlayer(*r.WinningPlayer)
	if err != nil {
		return 0, false
	}
	return p, true
}
