package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/volley-mixer/models"
)

func winner(id int) *int { return &id }

func TestAggregateCountsPartnersAndOpponents(t *testing.T) {
	teams := []models.Team{
		{ID: 10, RoundID: 1, Player1ID: 1, Player2ID: 2},
		{ID: 11, RoundID: 1, Player1ID: 3, Player2ID: 4},
		{ID: 20, RoundID: 2, Player1ID: 2, Player2ID: 1},
		{ID: 21, RoundID: 2, Player1ID: 3, Player2ID: 5},
	}
	matches := []models.Match{
		{ID: 100, RoundID: 1, Court: 1, Team1ID: 10, Team2ID: 11, WinnerTeamID: winner(10)},
		{ID: 200, RoundID: 2, Court: 1, Team1ID: 20, Team2ID: 21},
	}

	h := Aggregate(teams, matches)

	assert.Equal(t, 2, h.Partners.Get(1, 2))
	assert.Equal(t, 2, h.Partners.Get(2, 1))
	assert.Equal(t, 1, h.Partners.Get(3, 4))
	assert.Equal(t, 1, h.Partners.Get(5, 3))
	assert.Equal(t, 0, h.Partners.Get(1, 3))

	assert.Equal(t, 2, h.Opponents.Get(1, 3))
	assert.Equal(t, 2, h.Opponents.Get(3, 2))
	assert.Equal(t, 1, h.Opponents.Get(1, 4))
	assert.Equal(t, 1, h.Opponents.Get(5, 1))
	assert.Equal(t, 0, h.Opponents.Get(4, 5))
	assert.Equal(t, 0, h.Opponents.Get(1, 2))
}

func TestAggregateSkipsMatchesWithUnknownTeams(t *testing.T) {
	teams := []models.Team{{ID: 1, Player1ID: 1, Player2ID: 2}}
	matches := []models.Match{{ID: 1, Court: 1, Team1ID: 1, Team2ID: 99}}

	h := Aggregate(teams, matches)

	assert.Empty(t, h.Opponents)
	assert.Equal(t, 1, h.Partners.Get(1, 2))
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	teams := []models.Team{{ID: 1, Player1ID: 2, Player2ID: 1}}
	Aggregate(teams, nil)
	assert.Equal(t, 2, teams[0].Player1ID)
}

func TestPairCountsNilIsZero(t *testing.T) {
	var c PairCounts
	assert.Equal(t, 0, c.Get(1, 2))
	assert.Equal(t, Pair{A: 1, B: 9}, MakePair(9, 1))
}

func TestAggregateByes(t *testing.T) {
	ledger := AggregateByes([]models.Bye{
		{RoundID: 1, RoundNumber: 1, PlayerID: 5},
		{RoundID: 3, RoundNumber: 3, PlayerID: 2},
		{RoundID: 2, RoundNumber: 2, PlayerID: 5},
	})

	assert.Equal(t, ByeStat{Count: 2, LastRound: 2}, ledger.Get(5))
	assert.Equal(t, ByeStat{Count: 1, LastRound: 3}, ledger.Get(2))
	assert.Equal(t, ByeStat{}, ledger.Get(1))

	var empty ByeLedger
	assert.Equal(t, ByeStat{}, empty.Get(1))
}
