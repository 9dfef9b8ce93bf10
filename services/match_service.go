package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/volley-mixer/metrics"
	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
)

type MatchService interface {
	// RecordWinner sets the winner once; a decided match cannot change.
	RecordWinner(ctx context.Context, matchID int, winnerTeamID int) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	hub       realtime.Broadcaster
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	hub realtime.Broadcaster,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		hub:       hub,
		metrics:   recorder,
		logger:    loggerOrDefault(logger),
	}
}

func (s *matchService) RecordWinner(ctx context.Context, matchID int, winnerTeamID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Decided() {
		return nil, ErrMatchAlreadyDecided
	}
	if !match.HasTeam(winnerTeamID) {
		return nil, ErrWinnerNotInMatch
	}

	if err := s.matchRepo.SetWinner(ctx, matchID, winnerTeamID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchDecided):
			return nil, ErrMatchAlreadyDecided
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return nil, ErrWinnerNotInMatch
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	match.WinnerTeamID = &winnerTeamID
	s.metrics.ResultRecorded()

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("round_id", match.RoundID),
		slog.Int("court", match.Court),
		slog.Int("winner_team_id", winnerTeamID),
	)
	broadcast(s.hub, realtime.MessageMatchResult, match)
	return match, nil
}
