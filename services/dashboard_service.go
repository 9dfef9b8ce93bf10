package services

import (
	"context"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	repos     eventRepos
	roundRepo repositories.RoundRepository
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	byeRepo repositories.ByeRepository,
) DashboardService {
	return &dashboardService{
		repos: eventRepos{
			players: playerRepo,
			teams:   teamRepo,
			matches: matchRepo,
			byes:    byeRepo,
		},
		roundRepo: roundRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	snap, err := s.repos.load(ctx, false)
	if err != nil {
		return models.DashboardStats{}, err
	}
	rounds, err := s.roundRepo.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		PlayersTotal: len(snap.players),
		RoundsTotal:  rounds,
		MatchesTotal: len(snap.matches),
		ByesTotal:    len(snap.byes),
	}
	for _, p := range snap.players {
		if p.Active {
			stats.ActivePlayers++
		}
	}
	for _, m := range snap.matches {
		if m.Decided() {
			stats.MatchesDecided++
		}
	}
	return stats, nil
}
