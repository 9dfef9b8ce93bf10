package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
)

// eventSnapshot is the whole stored event, loaded in one go.
type eventSnapshot struct {
	players []models.Player
	teams   []models.Team
	matches []models.Match
	byes    []models.Bye
}

type eventRepos struct {
	players repositories.PlayerRepository
	teams   repositories.TeamRepository
	matches repositories.MatchRepository
	byes    repositories.ByeRepository
}

// load fetches roster and history concurrently.
func (r eventRepos) load(ctx context.Context, activeOnly bool) (*eventSnapshot, error) {
	snap := &eventSnapshot{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := r.players.List(gCtx, activeOnly)
		if err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		snap.players = players
		return nil
	})
	g.Go(func() error {
		teams, err := r.teams.ListAll(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		snap.teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := r.matches.ListAll(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		snap.matches = matches
		return nil
	})
	g.Go(func() error {
		byes, err := r.byes.ListAll(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load byes: %w", err)
		}
		snap.byes = byes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func broadcast(b realtime.Broadcaster, msgType string, payload interface{}) {
	if b == nil {
		return
	}
	b.BroadcastToRoom(realtime.EventRoom, realtime.Message{Type: msgType, Payload: payload})
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// normalizePlayer validates and canonicalises user input for a player.
func normalizePlayer(input PlayerInput) (models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Player{}, ErrPlayerNameRequired
	}
	gender, err := models.ParseGender(input.Gender)
	if err != nil {
		return models.Player{}, fmt.Errorf("%w: %v", ErrInvalidGender, err)
	}
	class, err := models.ParseSkillClass(input.Class)
	if err != nil {
		return models.Player{}, fmt.Errorf("%w: %v", ErrInvalidSkillClass, err)
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	return models.Player{Name: name, Gender: gender, Class: class, Active: active}, nil
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return err
}
