package models

// Team is a two-player partnership for one round.
type Team struct {
	ID        int `json:"id" db:"id"`
	RoundID   int `json:"round_id" db:"round_id"`
	Player1ID int `json:"player1_id" db:"player1_id"`
	Player2ID int `json:"player2_id" db:"player2_id"`
}

func (t Team) Has(playerID int) bool {
	return t.Player1ID == playerID || t.Player2ID == playerID
}
