package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/volley-mixer/models"
)

var ErrTeamPlayerInvalid = errors.New("team references an unknown round or player")

type TeamRepository interface {
	// CreateBatch inserts teams in order and fills in their IDs.
	CreateBatch(ctx context.Context, exec SQLExecutor, teams []*models.Team) error
	ListAll(ctx context.Context) ([]models.Team, error)
	ListByRounds(ctx context.Context, roundIDs []int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) CreateBatch(ctx context.Context, exec SQLExecutor, teams []*models.Team) error {
	query := `
		INSERT INTO teams (round_id, player1_id, player2_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	executor := pick(r.db, exec)
	for _, team := range teams {
		err := executor.QueryRowContext(ctx, query, team.RoundID, team.Player1ID, team.Player2ID).Scan(&team.ID)
		if err != nil {
			switch pqCode(err) {
			case foreignKeyViolation, checkViolation:
				return fmt.Errorf("%w: players %d/%d", ErrTeamPlayerInvalid, team.Player1ID, team.Player2ID)
			}
			return fmt.Errorf("failed to insert team for round %d: %w", team.RoundID, err)
		}
	}
	return nil
}

func (r *postgresTeamRepository) ListAll(ctx context.Context) ([]models.Team, error) {
	return r.query(ctx, `SELECT id, round_id, player1_id, player2_id FROM teams ORDER BY id`)
}

func (r *postgresTeamRepository) ListByRounds(ctx context.Context, roundIDs []int) ([]models.Team, error) {
	if len(roundIDs) == 0 {
		return []models.Team{}, nil
	}
	return r.query(ctx, `SELECT id, round_id, player1_id, player2_id FROM teams WHERE round_id = ANY($1) ORDER BY id`, intArray(roundIDs))
}

func (r *postgresTeamRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.RoundID, &t.Player1ID, &t.Player2ID); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}
