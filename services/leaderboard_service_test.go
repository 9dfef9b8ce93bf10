package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
)

func winner(id int) *int { return &id }

func TestBuildLeaderboard(t *testing.T) {
	players := []models.Player{
		{ID: 1, Name: "ana", Gender: models.GenderFemale, Active: true},
		{ID: 2, Name: "Bob", Gender: models.GenderMale, Active: true},
		{ID: 3, Name: "Cleo", Gender: models.GenderFemale, Active: true},
		{ID: 4, Name: "Dan", Gender: models.GenderMale, Active: true},
		{ID: 5, Name: "Eve", Gender: models.GenderFemale, Active: false},
	}
	teams := []models.Team{
		{ID: 10, RoundID: 1, Player1ID: 1, Player2ID: 2},
		{ID: 11, RoundID: 1, Player1ID: 3, Player2ID: 4},
		{ID: 12, RoundID: 2, Player1ID: 1, Player2ID: 4},
		{ID: 13, RoundID: 2, Player1ID: 2, Player2ID: 5},
	}
	matches := []models.Match{
		{ID: 100, RoundID: 1, Court: 1, Team1ID: 10, Team2ID: 11, WinnerTeamID: winner(10)},
		// undecided matches are not games yet
		{ID: 101, RoundID: 2, Court: 1, Team1ID: 12, Team2ID: 13},
	}
	byes := []models.Bye{{RoundID: 2, RoundNumber: 2, PlayerID: 3}}

	board := BuildLeaderboard(players, teams, matches, byes)
	require.Len(t, board, 5)

	byID := make(map[int]models.LeaderboardEntry)
	for _, e := range board {
		byID[e.PlayerID] = e
	}
	assert.Equal(t, 1, byID[1].Wins)
	assert.Equal(t, 1, byID[1].GamesPlayed)
	assert.Equal(t, 1, byID[3].Losses)
	assert.Equal(t, 1, byID[3].Byes)
	assert.Equal(t, 0, byID[5].GamesPlayed)
	assert.False(t, byID[5].Active)

	// winners first, sorted case-insensitively; Eve has fewer games than the losers.
	order := make([]int, len(board))
	ranks := make([]int, len(board))
	for i, e := range board {
		order[i] = e.PlayerID
		ranks[i] = e.Rank
	}
	assert.Equal(t, []int{1, 2, 5, 3, 4}, order)
	assert.Equal(t, []int{1, 1, 3, 4, 4}, ranks)
}

func TestBuildLeaderboard_Empty(t *testing.T) {
	board := BuildLeaderboard(nil, nil, nil, nil)
	assert.NotNil(t, board)
	assert.Empty(t, board)
}

func TestLeaderboardService_Standings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	f.seedRoster(t, 8)
	view, err := f.rounds.Generate(ctx, nil)
	require.NoError(t, err)
	_, err = f.matches.RecordWinner(ctx, view.Courts[0].MatchID, view.Courts[0].Team1.ID)
	require.NoError(t, err)

	board, err := f.leaderboard.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, board, 8)

	winners := map[int]bool{
		view.Courts[0].Team1.Player1.ID: true,
		view.Courts[0].Team1.Player2.ID: true,
	}
	assert.True(t, winners[board[0].PlayerID])
	assert.True(t, winners[board[1].PlayerID])
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 1, board[1].Rank)
}

func TestLeaderboardService_PublishDisabled(t *testing.T) {
	f := newFixture(pairing.NewEngine(), 5)
	svc := NewLeaderboardService(memPlayers{f.store}, memTeams{f.store}, memMatches{f.store}, memByes{f.store}, f.rounds, nil, nil)

	_, err := svc.Publish(context.Background())
	assert.ErrorIs(t, err, ErrPublishingDisabled)
}

func TestLeaderboardService_PublishReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	f.seedRoster(t, 8)
	published := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	f.leaderboard.(*leaderboardService).now = func() time.Time { return published }

	first, err := f.leaderboard.Publish(ctx)
	require.NoError(t, err)
	assert.Contains(t, first.Key, "snapshots/")
	assert.Equal(t, "https://cdn.example.com/"+first.Key, first.URL)
	assert.Equal(t, published, first.PublishedAt)

	var empty Snapshot
	require.NoError(t, json.Unmarshal(f.uploader.objects[first.Key], &empty))
	assert.Equal(t, 0, empty.RoundsPlayed)
	assert.Nil(t, empty.CurrentRound)
	assert.Len(t, empty.Leaderboard, 8)

	_, err = f.rounds.Generate(ctx, nil)
	require.NoError(t, err)

	second, err := f.leaderboard.Publish(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, []string{first.Key}, f.uploader.deleted)
	assert.Len(t, f.uploader.objects, 1)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(f.uploader.objects[second.Key], &snap))
	assert.Equal(t, 1, snap.RoundsPlayed)
	require.NotNil(t, snap.CurrentRound)
	assert.Len(t, snap.CurrentRound.Courts, 2)
}

func TestLeaderboardService_PublishUploadFailure(t *testing.T) {
	f := newFixture(pairing.NewEngine(), 5)
	f.uploader.fail = true

	_, err := f.leaderboard.Publish(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.uploader.deleted)
}
