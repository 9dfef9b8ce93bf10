package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/volley-mixer/models"
)

var ErrByePlayerInvalid = errors.New("bye references an unknown round or player")

type ByeRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, roundID int, playerIDs []int) error
	ListAll(ctx context.Context) ([]models.Bye, error)
	ListByRounds(ctx context.Context, roundIDs []int) ([]models.Bye, error)
}

type postgresByeRepository struct {
	db *sql.DB
}

func NewPostgresByeRepository(db *sql.DB) ByeRepository {
	return &postgresByeRepository{db: db}
}

func (r *postgresByeRepository) CreateBatch(ctx context.Context, exec SQLExecutor, roundID int, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO byes (round_id, player_id)
		SELECT $1, unnest($2::int[])`

	if _, err := pick(r.db, exec).ExecContext(ctx, query, roundID, intArray(playerIDs)); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return ErrByePlayerInvalid
		}
		return fmt.Errorf("failed to insert byes for round %d: %w", roundID, err)
	}
	return nil
}

const byeSelect = `
		SELECT b.round_id, r.round_number, b.player_id
		FROM byes b
		JOIN rounds r ON r.id = b.round_id`

func (r *postgresByeRepository) ListAll(ctx context.Context) ([]models.Bye, error) {
	return r.query(ctx, byeSelect+` ORDER BY r.round_number, b.player_id`)
}

func (r *postgresByeRepository) ListByRounds(ctx context.Context, roundIDs []int) ([]models.Bye, error) {
	if len(roundIDs) == 0 {
		return []models.Bye{}, nil
	}
	return r.query(ctx, byeSelect+` WHERE b.round_id = ANY($1) ORDER BY r.round_number, b.player_id`, intArray(roundIDs))
}

func (r *postgresByeRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Bye, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query byes: %w", err)
	}
	defer rows.Close()

	byes := make([]models.Bye, 0)
	for rows.Next() {
		var b models.Bye
		if err := rows.Scan(&b.RoundID, &b.RoundNumber, &b.PlayerID); err != nil {
			return nil, fmt.Errorf("failed to scan bye row: %w", err)
		}
		byes = append(byes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bye rows: %w", err)
	}
	return byes, nil
}
