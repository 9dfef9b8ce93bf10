package models

type DashboardStats struct {
	PlayersTotal   int `json:"players_total"`
	ActivePlayers  int `json:"active_players"`
	RoundsTotal    int `json:"rounds_total"`
	MatchesTotal   int `json:"matches_total"`
	MatchesDecided int `json:"matches_decided"`
	ByesTotal      int `json:"byes_total"`
}

// LeaderboardEntry is derived from decided matches; it is never stored.
// Players with equal wins and games share a rank.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    int    `json:"player_id"`
	Name        string `json:"name"`
	Gender      Gender `json:"gender"`
	Active      bool   `json:"active"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	GamesPlayed int    `json:"games_played"`
	Byes        int    `json:"byes"`
}
