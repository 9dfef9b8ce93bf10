package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
	"github.com/Dosada05/volley-mixer/realtime"
)

func boolPtr(v bool) *bool { return &v }

func TestRosterService_AddPlayer(t *testing.T) {
	tests := []struct {
		name    string
		input   PlayerInput
		want    models.Player
		wantErr error
	}{
		{
			name:  "defaults class and activity",
			input: PlayerInput{Name: "  Ana  ", Gender: "f"},
			want:  models.Player{Name: "Ana", Gender: models.GenderFemale, Class: models.ClassMedium, Active: true},
		},
		{
			name:  "explicit inactive",
			input: PlayerInput{Name: "Bob", Gender: "M", Class: "HIGH", Active: boolPtr(false)},
			want:  models.Player{Name: "Bob", Gender: models.GenderMale, Class: models.ClassHigh, Active: false},
		},
		{name: "blank name", input: PlayerInput{Name: "   ", Gender: "F"}, wantErr: ErrPlayerNameRequired},
		{name: "unknown gender", input: PlayerInput{Name: "Cleo", Gender: "X"}, wantErr: ErrInvalidGender},
		{name: "unknown class", input: PlayerInput{Name: "Dan", Gender: "M", Class: "pro"}, wantErr: ErrInvalidSkillClass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(pairing.NewEngine(), 5)
			p, err := f.roster.AddPlayer(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.store.players)
				assert.Empty(t, f.hub.types())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID)
			assert.Equal(t, tt.want.Name, p.Name)
			assert.Equal(t, tt.want.Gender, p.Gender)
			assert.Equal(t, tt.want.Class, p.Class)
			assert.Equal(t, tt.want.Active, p.Active)
			assert.Equal(t, []string{realtime.MessageRosterChanged}, f.hub.types())
		})
	}
}

func TestRosterService_UpdatePlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	players := f.seedRoster(t, 2)

	updated, err := f.roster.UpdatePlayer(ctx, players[0].ID, PlayerInput{Name: "Renamed", Gender: "M", Class: "low", Active: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.GenderMale, updated.Gender)
	assert.Equal(t, models.ClassLow, updated.Class)
	assert.False(t, updated.Active)

	active, err := f.roster.ListPlayers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, players[1].ID, active[0].ID)

	_, err = f.roster.UpdatePlayer(ctx, 999, PlayerInput{Name: "Ghost", Gender: "F"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.roster.UpdatePlayer(ctx, players[1].ID, PlayerInput{Name: "", Gender: "F"})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)
}

func TestRosterService_Activity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	players := f.seedRoster(t, 4)

	n, err := f.roster.SetAllActive(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	active, err := f.roster.ListPlayers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, f.roster.SetActive(ctx, players[3].ID, true))
	active, err = f.roster.ListPlayers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := f.roster.ListPlayers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	assert.ErrorIs(t, f.roster.SetActive(ctx, 999, true), ErrPlayerNotFound)
}

func TestRosterService_RemovePlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	players := f.seedRoster(t, 3)

	require.NoError(t, f.roster.RemovePlayer(ctx, players[1].ID))
	all, err := f.roster.ListPlayers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.roster.RemovePlayer(ctx, players[1].ID), ErrPlayerNotFound)
}

func TestRosterService_ReplaceRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	f.seedRoster(t, 8)
	_, err := f.rounds.Generate(ctx, nil)
	require.NoError(t, err)

	_, err = f.roster.ReplaceRoster(ctx, []PlayerInput{
		{Name: "Ana", Gender: "F"},
		{Name: "Bob", Gender: "Q"},
	})
	assert.ErrorIs(t, err, ErrInvalidGender)
	assert.Contains(t, err.Error(), "player #2")
	assert.Len(t, f.store.players, 8)
	assert.Len(t, f.store.rounds, 1)

	players, err := f.roster.ReplaceRoster(ctx, []PlayerInput{
		{Name: "Ana", Gender: "F", Class: "high"},
		{Name: "Bob", Gender: "M"},
		{Name: "Cleo", Gender: "F", Active: boolPtr(false)},
	})
	require.NoError(t, err)
	require.Len(t, players, 3)
	for _, p := range players {
		assert.NotZero(t, p.ID)
	}
	assert.Len(t, f.store.players, 3)
	assert.Empty(t, f.store.rounds)
	assert.Empty(t, f.store.teams)
	assert.Empty(t, f.store.matches)
	assert.Contains(t, f.hub.types(), realtime.MessageEventReset)

	_, err = f.rounds.Current(ctx)
	assert.ErrorIs(t, err, ErrNoRounds)
}

func TestRosterService_ResetEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(pairing.NewEngine(), 5)
	f.seedRoster(t, 10)
	_, err := f.rounds.Generate(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, f.roster.ResetEvent(ctx))
	assert.Empty(t, f.store.players)
	assert.Empty(t, f.store.rounds)
	assert.Empty(t, f.store.byes)

	stats, err := f.dashboard.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{}, stats)
}
