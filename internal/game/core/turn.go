package core

import "fmt"

// Turn records a player's intent to sow from one of their bins. Build it with
// Rules.NewTurn so the bin index is validated.
type Turn struct {
	Player      Player
	SelectedBin int
}

func (t Turn) String() string {
	return fmt.Sprintf("%s@%d", t.Player, t.SelectedBin)
}
