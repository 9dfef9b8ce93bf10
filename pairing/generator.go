package pairing

import "github.com/Dosada05/volley-mixer/models"

// Request is everything needed to draw one round.
// Players must be the active roster; Courts <= 0 means no court limit.
type Request struct {
	Players []models.Player
	History History
	Byes    ByeLedger
	Seed    int64
	Courts  int
}

// DrawTeam is a team slot in a draw. Slot indexes Draw.Teams and is replaced
// by a store-assigned ID once the round is persisted.
type DrawTeam struct {
	Slot    int           `json:"slot"`
	Player1 models.Player `json:"player1"`
	Player2 models.Player `json:"player2"`
}

// DrawCourt is one match: Team1 and Team2 are slots into Draw.Teams.
type DrawCourt struct {
	Court int `json:"court"`
	Team1 int `json:"team1_slot"`
	Team2 int `json:"team2_slot"`
}

// Draw is a generated round that has not been stored yet.
type Draw struct {
	Seed            int64           `json:"seed"`
	Byes            []models.Player `json:"byes"`
	Teams           []DrawTeam      `json:"teams"`
	Courts          []DrawCourt     `json:"courts"`
	PartnerCost     int             `json:"partner_cost"`
	OppositionCost  int             `json:"opposition_cost"`
	SameGenderTeams int             `json:"same_gender_teams"`
}

type RoundGenerator interface {
	Generate(req Request) (*Draw, error)

	GetName() string
}
