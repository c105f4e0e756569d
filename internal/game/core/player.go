package core

import "fmt"

// Player identifies one of the two sides of the board.
type Player int

const (
	PlayerOne Player = iota
	PlayerTwo
)

// Players lists both players in seat order.
var Players = [2]Player{PlayerOne, PlayerTwo}

// Valid reports whether p is PlayerOne or PlayerTwo.
func (p Player) Valid() bool { return p == PlayerOne || p == PlayerTwo }

// Opponent returns the other player.
func (p Player) Opponent() Player { return p ^ 1 }

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "one"
	case PlayerTwo:
		return "two"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParsePlayer converts a serialized token back into a Player.
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "one":
		return PlayerOne, nil
	case "two":
		return PlayerTwo, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
}
