package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// DecodePlayer parses a player token.
func DecodePlayer(token string) (core.Player, error) {
	return core.ParsePlayer(token)
}

// DecodeRow validates j against the rules and builds the row.
func DecodeRow(r core.Rules, j RowJSON) (core.PlayerRow, error) {
	return r.NewPlayerRow(j.Bins, j.Goal)
}

// DecodeTurn validates j against the rules and builds the turn.
func DecodeTurn(r core.Rules, j TurnJSON) (core.Turn, error) {
	p, err := DecodePlayer(j.Player)
	if err != nil {
		return core.Turn{}, err
	}
	return r.NewTurn(p, j.SelectedBin)
}

// DecodeBoard validates both rows and builds the board.
func DecodeBoard(r core.Rules, j BoardJSON) (core.Board, error) {
	one, err := DecodeRow(r, j.One)
	if err != nil {
		return core.Board{}, fmt.Errorf("row one: %w", err)
	}
	two, err := DecodeRow(r, j.Two)
	if err != nil {
		return core.Board{}, fmt.Errorf("row two: %w", err)
	}
	return r.BoardFromRows(map[core.Player]core.PlayerRow{
		core.PlayerOne: one,
		core.PlayerTwo: two,
	})
}

// UnmarshalBoard decodes a JSON board. Both player keys are required.
func UnmarshalBoard(r core.Rules, data []byte) (core.Board, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.Board{}, fmt.Errorf("decode board: %w", err)
	}
	for token := range raw {
		if _, err := DecodePlayer(token); err != nil {
			return core.Board{}, fmt.Errorf("decode board: %w", err)
		}
	}

	rows := make(map[core.Player]core.PlayerRow, len(raw))
	for _, p := range core.Players {
		msg, ok := raw[p.String()]
		if !ok {
			return core.Board{}, fmt.Errorf("decode board: %w: %s", core.ErrMissingPlayer, p)
		}
		var j RowJSON
		if err := json.Unmarshal(msg, &j); err != nil {
			return core.Board{}, fmt.Errorf("decode board row %s: %w", p, err)
		}
		row, err := DecodeRow(r, j)
		if err != nil {
			return core.Board{}, fmt.Errorf("decode board row %s: %w", p, err)
		}
		rows[p] = row
	}
	return r.BoardFromRows(rows)
}

// UnmarshalTurn decodes a JSON turn.
func UnmarshalTurn(r core.Rules, data []byte) (core.Turn, error) {
	var j TurnJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return core.Turn{}, fmt.Errorf("decode turn: %w", err)
	}
	return DecodeTurn(r, j)
}
