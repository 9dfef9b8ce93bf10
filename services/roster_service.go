package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
)

type PlayerInput struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Class  string `json:"class"`
	Active *bool  `json:"active,omitempty"`
}

type RosterService interface {
	AddPlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	SetActive(ctx context.Context, id int, active bool) error
	SetAllActive(ctx context.Context, active bool) (int64, error)
	// RemovePlayer hides the player from rosters; past rounds keep referencing them.
	RemovePlayer(ctx context.Context, id int) error
	ListPlayers(ctx context.Context, activeOnly bool) ([]models.Player, error)
	// ReplaceRoster starts a new event with the given players.
	ReplaceRoster(ctx context.Context, inputs []PlayerInput) ([]models.Player, error)
	// ResetEvent wipes players, rounds, teams, matches and byes.
	ResetEvent(ctx context.Context) error
}

type rosterService struct {
	tx         repositories.Transactor
	playerRepo repositories.PlayerRepository
	roundRepo  repositories.RoundRepository
	hub        realtime.Broadcaster
	logger     *slog.Logger
}

func NewRosterService(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		tx:         tx,
		playerRepo: playerRepo,
		roundRepo:  roundRepo,
		hub:        hub,
		logger:     loggerOrDefault(logger),
	}
}

func (s *rosterService) AddPlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	player, err := normalizePlayer(input)
	if err != nil {
		return nil, err
	}
	if err := s.playerRepo.Create(ctx, nil, &player); err != nil {
		return nil, mapPlayerRepoError(err)
	}

	s.logger.InfoContext(ctx, "player added", slog.Int("player_id", player.ID), slog.String("gender", string(player.Gender)))
	broadcast(s.hub, realtime.MessageRosterChanged, player)
	return &player, nil
}

func (s *rosterService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	existing, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	normalized, err := normalizePlayer(input)
	if err != nil {
		return nil, err
	}
	existing.Name = normalized.Name
	existing.Gender = normalized.Gender
	existing.Class = normalized.Class

	if err := s.playerRepo.Update(ctx, existing); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	if input.Active != nil && *input.Active != existing.Active {
		if err := s.playerRepo.SetActive(ctx, id, *input.Active); err != nil {
			return nil, mapPlayerRepoError(err)
		}
		existing.Active = *input.Active
	}

	broadcast(s.hub, realtime.MessageRosterChanged, existing)
	return existing, nil
}

func (s *rosterService) SetActive(ctx context.Context, id int, active bool) error {
	if err := s.playerRepo.SetActive(ctx, id, active); err != nil {
		return mapPlayerRepoError(err)
	}
	broadcast(s.hub, realtime.MessageRosterChanged, map[string]interface{}{"player_id": id, "active": active})
	return nil
}

func (s *rosterService) SetAllActive(ctx context.Context, active bool) (int64, error) {
	n, err := s.playerRepo.SetAllActive(ctx, active)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "roster activity changed", slog.Bool("active", active), slog.Int64("players", n))
	broadcast(s.hub, realtime.MessageRosterChanged, map[string]interface{}{"all": true, "active": active})
	return n, nil
}

func (s *rosterService) RemovePlayer(ctx context.Context, id int) error {
	if err := s.playerRepo.SoftDelete(ctx, id); err != nil {
		return mapPlayerRepoError(err)
	}
	s.logger.InfoContext(ctx, "player removed", slog.Int("player_id", id))
	broadcast(s.hub, realtime.MessageRosterChanged, map[string]interface{}{"player_id": id, "removed": true})
	return nil
}

func (s *rosterService) ListPlayers(ctx context.Context, activeOnly bool) ([]models.Player, error) {
	return s.playerRepo.List(ctx, activeOnly)
}

func (s *rosterService) ReplaceRoster(ctx context.Context, inputs []PlayerInput) ([]models.Player, error) {
	players := make([]models.Player, 0, len(inputs))
	for i, input := range inputs {
		p, err := normalizePlayer(input)
		if err != nil {
			return nil, fmt.Errorf("player #%d: %w", i+1, err)
		}
		players = append(players, p)
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.roundRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		if err := s.playerRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		for i := range players {
			if err := s.playerRepo.Create(ctx, exec, &players[i]); err != nil {
				return mapPlayerRepoError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "roster replaced", slog.Int("players", len(players)))
	broadcast(s.hub, realtime.MessageEventReset, map[string]int{"players": len(players)})
	return players, nil
}

func (s *rosterService) ResetEvent(ctx context.Context) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.roundRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		return s.playerRepo.DeleteAll(ctx, exec)
	})
	if err != nil {
		return err
	}

	s.logger.WarnContext(ctx, "event reset")
	broadcast(s.hub, realtime.MessageEventReset, map[string]int{"players": 0})
	return nil
}
