package models

// Match is one court's contest between two teams of a round.
// WinnerTeamID goes from nil to one of Team1ID/Team2ID exactly once.
type Match struct {
	ID           int  `json:"id" db:"id"`
	RoundID      int  `json:"round_id" db:"round_id"`
	Court        int  `json:"court" db:"court_number"`
	Team1ID      int  `json:"team1_id" db:"team1_id"`
	Team2ID      int  `json:"team2_id" db:"team2_id"`
	WinnerTeamID *int `json:"winner_team_id,omitempty" db:"winner_team_id"`
}

func (m Match) Decided() bool {
	return m.WinnerTeamID != nil
}

func (m Match) HasTeam(teamID int) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}
