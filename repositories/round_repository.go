package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/volley-mixer/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundNumberConflict means another round with the same number was stored first.
	ErrRoundNumberConflict = errors.New("round number already taken")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	NextNumber(ctx context.Context, exec SQLExecutor) (int, error)
	GetByNumber(ctx context.Context, number int) (*models.Round, error)
	GetLatest(ctx context.Context) (*models.Round, error)
	List(ctx context.Context) ([]models.Round, error)
	Count(ctx context.Context) (int, error)
	DeleteByNumber(ctx context.Context, exec SQLExecutor, number int) error
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (round_number, seed)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := pick(r.db, exec).QueryRowContext(ctx, query, round.Number, round.Seed).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return ErrRoundNumberConflict
		}
		return fmt.Errorf("failed to insert round %d: %w", round.Number, err)
	}
	return nil
}

func (r *postgresRoundRepository) NextNumber(ctx context.Context, exec SQLExecutor) (int, error) {
	var next int
	err := pick(r.db, exec).QueryRowContext(ctx, `SELECT COALESCE(MAX(round_number), 0) + 1 FROM rounds`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next round number: %w", err)
	}
	return next, nil
}

func (r *postgresRoundRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*models.Round, error) {
	var round models.Round
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&round.ID, &round.Number, &round.Seed, &round.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return &round, nil
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, number int) (*models.Round, error) {
	return r.scanOne(ctx, `SELECT id, round_number, seed, created_at FROM rounds WHERE round_number = $1`, number)
}

func (r *postgresRoundRepository) GetLatest(ctx context.Context) (*models.Round, error) {
	return r.scanOne(ctx, `SELECT id, round_number, seed, created_at FROM rounds ORDER BY round_number DESC LIMIT 1`)
}

func (r *postgresRoundRepository) List(ctx context.Context) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, round_number, seed, created_at FROM rounds ORDER BY round_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if err := rows.Scan(&round.ID, &round.Number, &round.Seed, &round.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return count, nil
}

// DeleteByNumber removes a round; teams, matches and byes go with it.
func (r *postgresRoundRepository) DeleteByNumber(ctx context.Context, exec SQLExecutor, number int) error {
	result, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM rounds WHERE round_number = $1`, number)
	if err != nil {
		return fmt.Errorf("failed to delete round %d: %w", number, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `TRUNCATE byes, matches, teams, rounds RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to truncate rounds: %w", err)
	}
	return nil
}
