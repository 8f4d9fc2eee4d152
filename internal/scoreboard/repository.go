package scoreboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/scoreboard/internal/models"
)

// ErrNotFound is returned when no scoreboard row matches the requested id.
var ErrNotFound = errors.New("scoreboard not found")

// Repository implements scoreboard data access over database/sql.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new scoreboard repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new scoreboard row and returns its generated id.
func (r *Repository) Create(ctx context.Context, f models.ScoreboardFields) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO scoreboards (
			team_name1, team_name2, team_color1, team_color2,
			team_accent1, team_accent2, tournament, board_color,
			scores, active_set
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING scoreboard_id`,
		f.TeamName1, f.TeamName2, f.TeamColor1, f.TeamColor2,
		f.TeamAccent1, f.TeamAccent2, f.Tournament, f.BoardColor,
		f.Scores, f.ActiveSet,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create scoreboard: %w", err)
	}
	return id, nil
}

// GetByID returns the scoreboard with the given id, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Scoreboard, error) {
	var sb models.Scoreboard
	err := r.db.QueryRowContext(ctx, `
		SELECT scoreboard_id, team_name1, team_name2, team_color1, team_color2,
		       team_accent1, team_accent2, tournament, board_color, scores, active_set
		FROM scoreboards
		WHERE scoreboard_id = $1`,
		id,
	).Scan(
		&sb.ID, &sb.TeamName1, &sb.TeamName2, &sb.TeamColor1, &sb.TeamColor2,
		&sb.TeamAccent1, &sb.TeamAccent2, &sb.Tournament, &sb.BoardColor,
		&sb.Scores, &sb.ActiveSet,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}
	return &sb, nil
}

// UpdateByID overwrites every mutable field of the scoreboard with the given
// id. Returns ErrNotFound when no row was affected. Last write wins; there is
// no version token.
func (r *Repository) UpdateByID(ctx context.Context, id int64, f models.ScoreboardFields) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scoreboards
		SET team_name1 = $1, team_name2 = $2, team_color1 = $3, team_color2 = $4,
		    team_accent1 = $5, team_accent2 = $6, tournament = $7, board_color = $8,
		    scores = $9, active_set = $10
		WHERE scoreboard_id = $11`,
		f.TeamName1, f.TeamName2, f.TeamColor1, f.TeamColor2,
		f.TeamAccent1, f.TeamAccent2, f.Tournament, f.BoardColor,
		f.Scores, f.ActiveSet, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update scoreboard: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
