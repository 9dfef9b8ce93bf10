package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/repositories"
	"github.com/Dosada05/volley-mixer/storage"
)

// Snapshot is the document published to object storage for spectators.
type Snapshot struct {
	ID           string                    `json:"id"`
	PublishedAt  time.Time                 `json:"published_at"`
	RoundsPlayed int                       `json:"rounds_played"`
	CurrentRound *RoundView                `json:"current_round,omitempty"`
	Leaderboard  []models.LeaderboardEntry `json:"leaderboard"`
}

type PublishResult struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

type LeaderboardService interface {
	Standings(ctx context.Context) ([]models.LeaderboardEntry, error)
	// Publish uploads a snapshot and removes the previously published one.
	Publish(ctx context.Context) (*PublishResult, error)
}

type leaderboardService struct {
	repos    eventRepos
	rounds   RoundService
	uploader storage.FileUploader
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	lastKey string
}

// NewLeaderboardService accepts a nil uploader; Publish then reports ErrPublishingDisabled.
func NewLeaderboardService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	byeRepo repositories.ByeRepository,
	rounds RoundService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		repos: eventRepos{
			players: playerRepo,
			teams:   teamRepo,
			matches: matchRepo,
			byes:    byeRepo,
		},
		rounds:   rounds,
		uploader: uploader,
		logger:   loggerOrDefault(logger),
		now:      time.Now,
	}
}

func (s *leaderboardService) Standings(ctx context.Context) ([]models.LeaderboardEntry, error) {
	snap, err := s.repos.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(snap.players, snap.teams, snap.matches, snap.byes), nil
}

func (s *leaderboardService) Publish(ctx context.Context) (*PublishResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishingDisabled
	}

	standings, err := s.Standings(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := Snapshot{
		ID:          uuid.NewString(),
		PublishedAt: s.now().UTC(),
		Leaderboard: standings,
	}
	current, err := s.rounds.Current(ctx)
	switch {
	case err == nil:
		snapshot.CurrentRound = current
		snapshot.RoundsPlayed = current.Number
	case !errors.Is(err, ErrNoRounds):
		return nil, err
	}

	body, err := json.MarshalIndent(snapshot, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s.json", snapshot.ID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.lastKey
	s.lastKey = key
	s.mu.Unlock()
	if previous != "" {
		if err := s.uploader.Delete(ctx, previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous snapshot", slog.String("key", previous), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "leaderboard published", slog.String("key", key), slog.Int("rounds", snapshot.RoundsPlayed))
	return &PublishResult{Key: key, URL: result.Location, PublishedAt: snapshot.PublishedAt}, nil
}

// BuildLeaderboard ranks players by wins (desc), games played (asc), then name.
// Only decided matches count as games.
func BuildLeaderboard(players []models.Player, teams []models.Team, matches []models.Match, byes []models.Bye) []models.LeaderboardEntry {
	entries := make(map[int]*models.LeaderboardEntry, len(players))
	for _, p := range players {
		entries[p.ID] = &models.LeaderboardEntry{PlayerID: p.ID, Name: p.Name, Gender: p.Gender, Active: p.Active}
	}

	teamByID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	for _, m := range matches {
		if !m.Decided() {
			continue
		}
		for _, teamID := range [2]int{m.Team1ID, m.Team2ID} {
			t, ok := teamByID[teamID]
			if !ok {
				continue
			}
			won := teamID == *m.WinnerTeamID
			for _, pid := range [2]int{t.Player1ID, t.Player2ID} {
				e, ok := entries[pid]
				if !ok {
					continue
				}
				e.GamesPlayed++
				if won {
					e.Wins++
				} else {
					e.Losses++
				}
			}
		}
	}
	for _, b := range byes {
		if e, ok := entries[b.PlayerID]; ok {
			e.Byes++
		}
	}

	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed < b.GamesPlayed
		}
		if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
			return an < bn
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range out {
		if i > 0 && out[i].Wins == out[i-1].Wins && out[i].GamesPlayed == out[i-1].GamesPlayed {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}
