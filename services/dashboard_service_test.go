package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
)

func TestDashboardService_GetStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	players := f.seedRoster(t, 10)
	require.NoError(t, f.roster.SetActive(ctx, players[9].ID, false))

	view, err := f.rounds.Generate(ctx, nil)
	require.NoError(t, err)
	_, err = f.matches.RecordWinner(ctx, view.Courts[0].MatchID, view.Courts[0].Team1.ID)
	require.NoError(t, err)

	stats, err := f.dashboard.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		PlayersTotal:   10,
		ActivePlayers:  9,
		RoundsTotal:    1,
		MatchesTotal:   2,
		MatchesDecided: 1,
		ByesTotal:      1,
	}, stats)
}
