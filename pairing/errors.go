package pairing

import "errors"

var (
	ErrInsufficientPlayers = errors.New("at least 4 active players are required to draw a round")
	ErrInvalidRoster       = errors.New("invalid roster")
)
