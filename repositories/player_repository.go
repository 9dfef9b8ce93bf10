package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/volley-mixer/models"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerInvalid  = errors.New("player gender or class rejected by store")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	// List returns non-deleted players ordered by id; activeOnly drops inactive ones.
	List(ctx context.Context, activeOnly bool) ([]models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	SetActive(ctx context.Context, id int, active bool) error
	SetAllActive(ctx context.Context, active bool) (int64, error)
	SoftDelete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, gender, skill_class, active, deleted, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }, p *models.Player) error {
	return row.Scan(&p.ID, &p.Name, &p.Gender, &p.Class, &p.Active, &p.Deleted, &p.CreatedAt)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (name, gender, skill_class, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := pick(r.db, exec).QueryRowContext(ctx, query,
		player.Name,
		player.Gender,
		player.Class,
		player.Active,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if pqCode(err) == checkViolation {
			return ErrPlayerInvalid
		}
		return fmt.Errorf("failed to insert player %q: %w", player.Name, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1 AND NOT deleted`

	var p models.Player
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, activeOnly bool) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE NOT deleted AND ($1 = FALSE OR active) ORDER BY id`
	return r.query(ctx, query, activeOnly)
}

// ListByIDs includes soft-deleted players so historic rounds keep their names.
func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`
	return r.query(ctx, query, intArray(ids))
}

func (r *postgresPlayerRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, gender = $2, skill_class = $3
		WHERE id = $4 AND NOT deleted`

	result, err := r.db.ExecContext(ctx, query, player.Name, player.Gender, player.Class, player.ID)
	if err != nil {
		if pqCode(err) == checkViolation {
			return ErrPlayerInvalid
		}
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET active = $1 WHERE id = $2 AND NOT deleted`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set active=%t for player %d: %w", active, id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) SetAllActive(ctx context.Context, active bool) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET active = $1 WHERE NOT deleted`, active)
	if err != nil {
		return 0, fmt.Errorf("failed to set active=%t for all players: %w", active, err)
	}
	return result.RowsAffected()
}

func (r *postgresPlayerRepository) SoftDelete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET deleted = TRUE, active = FALSE WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// DeleteAll wipes the roster and everything that references it.
func (r *postgresPlayerRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `TRUNCATE players RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("failed to truncate players: %w", err)
	}
	return nil
}
