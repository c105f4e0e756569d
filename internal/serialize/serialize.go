// Package serialize maps board model values to their external JSON shape
// and back.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// ErrTypeMismatch is matched by every TypeMismatchError.
var ErrTypeMismatch = errors.New("no serialization registered for type")

// TypeMismatchError is returned for a value outside the serializable set.
type TypeMismatchError struct {
	Type string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Type, ErrTypeMismatch)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// RowJSON is the external shape of a PlayerRow.
type RowJSON struct {
	Bins []int `json:"bins"`
	Goal int   `json:"goal"`
}

// TurnJSON is the external shape of a Turn.
type TurnJSON struct {
	Player      string `json:"player"`
	SelectedBin int    `json:"selected_bin"`
}

// BoardJSON is the external shape of a Board, one row per player token.
type BoardJSON struct {
	One RowJSON `json:"one"`
	Two RowJSON `json:"two"`
}

// Serialize converts nil, core.Player, core.PlayerRow, core.Turn or
// core.Board into its external form. A zero Board is treated as nil.
func Serialize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case core.Player:
		return Player(x)
	case core.PlayerRow:
		return Row(x), nil
	case core.Turn:
		return Turn(x)
	case core.Board:
		if x.IsZero() {
			return nil, nil
		}
		return Board(x), nil
	default:
		return nil, &TypeMismatchError{Type: fmt.Sprintf("%T", v)}
	}
}

// Marshal serializes v and encodes the result as JSON.
func Marshal(v any) ([]byte, error) {
	s, err := Serialize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Player returns the token of p.
func Player(p core.Player) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: %d", core.ErrInvalidPlayer, int(p))
	}
	return p.String(), nil
}

// Row converts a row.
func Row(r core.PlayerRow) RowJSON {
	return RowJSON{Bins: r.Bins(), Goal: r.Goal()}
}

// Turn converts a turn.
func Turn(t core.Turn) (TurnJSON, error) {
	token, err := Player(t.Player)
	if err != nil {
		return TurnJSON{}, err
	}
	return TurnJSON{Player: token, SelectedBin: t.SelectedBin}, nil
}

// Board converts a non-zero board.
func Board(b core.Board) BoardJSON {
	return BoardJSON{
		One: Row(b.Row(core.PlayerOne)),
		Two: Row(b.Row(core.PlayerTwo)),
	}
}
