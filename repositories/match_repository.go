package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/volley-mixer/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchTeamInvalid   = errors.New("match references an unknown round or team")
	ErrMatchCourtConflict = errors.New("court already used in this round")
	ErrMatchDecided       = errors.New("match already has a winner")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	ListByRounds(ctx context.Context, roundIDs []int) ([]models.Match, error)
	// SetWinner stores the winner only if none is recorded yet.
	SetWinner(ctx context.Context, id int, winnerTeamID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, round_id, court_number, team1_id, team2_id, winner_team_id`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	var winner sql.NullInt64
	if err := row.Scan(&m.ID, &m.RoundID, &m.Court, &m.Team1ID, &m.Team2ID, &winner); err != nil {
		return err
	}
	if winner.Valid {
		w := int(winner.Int64)
		m.WinnerTeamID = &w
	}
	return nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches (round_id, court_number, team1_id, team2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	executor := pick(r.db, exec)
	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query, m.RoundID, m.Court, m.Team1ID, m.Team2ID).Scan(&m.ID)
		if err != nil {
			switch pqCode(err) {
			case uniqueViolation:
				return fmt.Errorf("%w: court %d", ErrMatchCourtConflict, m.Court)
			case foreignKeyViolation, checkViolation:
				return fmt.Errorf("%w: teams %d/%d", ErrMatchTeamInvalid, m.Team1ID, m.Team2ID)
			}
			return fmt.Errorf("failed to insert match on court %d: %w", m.Court, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	var m models.Match
	err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) ListAll(ctx context.Context) ([]models.Match, error) {
	return r.query(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY round_id, court_number`)
}

func (r *postgresMatchRepository) ListByRounds(ctx context.Context, roundIDs []int) ([]models.Match, error) {
	if len(roundIDs) == 0 {
		return []models.Match{}, nil
	}
	return r.query(ctx, `SELECT `+matchColumns+` FROM matches WHERE round_id = ANY($1) ORDER BY round_id, court_number`, intArray(roundIDs))
}

func (r *postgresMatchRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) SetWinner(ctx context.Context, id int, winnerTeamID int) error {
	query := `
		UPDATE matches
		SET winner_team_id = $1
		WHERE id = $2 AND winner_team_id IS NULL AND $1 IN (team1_id, team2_id)`

	result, err := r.db.ExecContext(ctx, query, winnerTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to set winner for match %d: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrMatchNotFound); err == nil {
		return nil
	} else if !errors.Is(err, ErrMatchNotFound) {
		return err
	}

	// Nothing updated: tell a missing match from a decided one or a foreign team.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Decided() {
		return ErrMatchDecided
	}
	return ErrMatchTeamInvalid
}
