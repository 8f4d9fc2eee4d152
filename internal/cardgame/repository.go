// Package cardgame implements the companion card-game tables: games,
// players, rounds, per-round scores, and rivalries, all scoped by the board
// identifier string rather than an integer foreign key.
package cardgame

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/scoreboard/internal/models"
)

// ErrNotFound is returned when a row (or its parent chain) does not exist
// under the given board identifier.
var ErrNotFound = errors.New("card game resource not found")

// Repository implements card-game data access. Parent-existence checks are
// correlated lookups inside the statement itself: a child write names its
// parent chain down to the board identifier and affects zero rows when any
// link is missing.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new card-game repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListGames returns all games recorded under a board identifier.
func (r *Repository) ListGames(ctx context.Context, sqid string) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sqid, name, status, created_at
		FROM games
		WHERE sqid = $1
		ORDER BY created_at DESC`,
		sqid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Sqid, &g.Name, &g.Status, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// CreateGame inserts a new game under a board identifier.
func (r *Repository) CreateGame(ctx context.Context, sqid, name string) (*models.Game, error) {
	var g models.Game
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO games (sqid, name)
		VALUES ($1, $2)
		RETURNING id, sqid, name, status, created_at`,
		sqid, name,
	).Scan(&g.ID, &g.Sqid, &g.Name, &g.Status, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &g, nil
}

// GetGame returns one game, scoped by identifier.
func (r *Repository) GetGame(ctx context.Context, sqid string, gameID int64) (*models.Game, error) {
	var g models.Game
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sqid, name, status, created_at
		FROM games
		WHERE id = $1 AND sqid = $2`,
		gameID, sqid,
	).Scan(&g.ID, &g.Sqid, &g.Name, &g.Status, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

// UpdateGame overwrites a game's name and status.
func (r *Repository) UpdateGame(ctx context.Context, sqid string, gameID int64, name, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE games
		SET name = $1, status = $2
		WHERE id = $3 AND sqid = $4`,
		name, status, gameID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return requireAffected(res)
}

// DeleteGame removes a game and, via cascade, its players, rounds and scores.
func (r *Repository) DeleteGame(ctx context.Context, sqid string, gameID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM games
		WHERE id = $1 AND sqid = $2`,
		gameID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return requireAffected(res)
}

// ListPlayers returns the players of a game under a board identifier.
func (r *Repository) ListPlayers(ctx context.Context, sqid string, gameID int64) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.game_id, p.name
		FROM players p
		JOIN games g ON g.id = p.game_id
		WHERE p.game_id = $1 AND g.sqid = $2
		ORDER BY p.id`,
		gameID, sqid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// CreatePlayer adds a player to a game. The insert selects from games, so a
// missing or foreign parent yields ErrNotFound rather than an orphan row.
func (r *Repository) CreatePlayer(ctx context.Context, sqid string, gameID int64, name string) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO players (game_id, name)
		SELECT g.id, $1 FROM games g
		WHERE g.id = $2 AND g.sqid = $3
		RETURNING id, game_id, name`,
		name, gameID, sqid,
	).Scan(&p.ID, &p.GameID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &p, nil
}

// GetPlayer returns one player, scoped through its game to the identifier.
func (r *Repository) GetPlayer(ctx context.Context, sqid string, playerID int64) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.game_id, p.name
		FROM players p
		JOIN games g ON g.id = p.game_id
		WHERE p.id = $1 AND g.sqid = $2`,
		playerID, sqid,
	).Scan(&p.ID, &p.GameID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// UpdatePlayer renames a player.
func (r *Repository) UpdatePlayer(ctx context.Context, sqid string, playerID int64, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players p
		SET name = $1
		FROM games g
		WHERE p.id = $2 AND g.id = p.game_id AND g.sqid = $3`,
		name, playerID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return requireAffected(res)
}

// DeletePlayer removes a player and cascades to their round scores.
func (r *Repository) DeletePlayer(ctx context.Context, sqid string, playerID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM players p
		USING games g
		WHERE p.id = $1 AND g.id = p.game_id AND g.sqid = $2`,
		playerID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return requireAffected(res)
}

// ListRounds returns the rounds of a game in play order.
func (r *Repository) ListRounds(ctx context.Context, sqid string, gameID int64) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.game_id, r.round_number
		FROM rounds r
		JOIN games g ON g.id = r.game_id
		WHERE r.game_id = $1 AND g.sqid = $2
		ORDER BY r.round_number`,
		gameID, sqid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		var rd models.Round
		if err := rows.Scan(&rd.ID, &rd.GameID, &rd.RoundNumber); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

// CreateRound appends a round to a game.
func (r *Repository) CreateRound(ctx context.Context, sqid string, gameID int64, roundNumber int) (*models.Round, error) {
	var rd models.Round
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rounds (game_id, round_number)
		SELECT g.id, $1 FROM games g
		WHERE g.id = $2 AND g.sqid = $3
		RETURNING id, game_id, round_number`,
		roundNumber, gameID, sqid,
	).Scan(&rd.ID, &rd.GameID, &rd.RoundNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	return &rd, nil
}

// GetRound returns one round, scoped through its game to the identifier.
func (r *Repository) GetRound(ctx context.Context, sqid string, roundID int64) (*models.Round, error) {
	var rd models.Round
	err := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.game_id, r.round_number
		FROM rounds r
		JOIN games g ON g.id = r.game_id
		WHERE r.id = $1 AND g.sqid = $2`,
		roundID, sqid,
	).Scan(&rd.ID, &rd.GameID, &rd.RoundNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return &rd, nil
}

// UpdateRound renumbers a round.
func (r *Repository) UpdateRound(ctx context.Context, sqid string, roundID int64, roundNumber int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rounds r
		SET round_number = $1
		FROM games g
		WHERE r.id = $2 AND g.id = r.game_id AND g.sqid = $3`,
		roundNumber, roundID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return requireAffected(res)
}

// DeleteRound removes a round and cascades to its scores.
func (r *Repository) DeleteRound(ctx context.Context, sqid string, roundID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM rounds r
		USING games g
		WHERE r.id = $1 AND g.id = r.game_id AND g.sqid = $2`,
		roundID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return requireAffected(res)
}

// ListRoundScores returns the scores recorded for a round.
func (r *Repository) ListRoundScores(ctx context.Context, sqid string, roundID int64) ([]models.RoundScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.round_id, s.player_id, s.value
		FROM round_scores s
		JOIN rounds r ON r.id = s.round_id
		JOIN games g ON g.id = r.game_id
		WHERE s.round_id = $1 AND g.sqid = $2
		ORDER BY s.player_id`,
		roundID, sqid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list round scores: %w", err)
	}
	defer rows.Close()

	var scores []models.RoundScore
	for rows.Next() {
		var s models.RoundScore
		if err := rows.Scan(&s.ID, &s.RoundID, &s.PlayerID, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan round score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// UpsertRoundScore records a player's score for a round: insert, or update
// on conflict of the (round, player) pair. At most one score exists per
// player per round.
func (r *Repository) UpsertRoundScore(ctx context.Context, sqid string, roundID, playerID int64, value int) (*models.RoundScore, error) {
	var s models.RoundScore
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO round_scores (round_id, player_id, value)
		SELECT r.id, p.id, $1
		FROM rounds r
		JOIN games g ON g.id = r.game_id
		JOIN players p ON p.game_id = g.id
		WHERE r.id = $2 AND p.id = $3 AND g.sqid = $4
		ON CONFLICT (round_id, player_id) DO UPDATE SET value = EXCLUDED.value
		RETURNING id, round_id, player_id, value`,
		value, roundID, playerID, sqid,
	).Scan(&s.ID, &s.RoundID, &s.PlayerID, &s.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert round score: %w", err)
	}
	return &s, nil
}

// DeleteRoundScore removes one recorded score.
func (r *Repository) DeleteRoundScore(ctx context.Context, sqid string, scoreID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM round_scores s
		USING rounds r, games g
		WHERE s.id = $1 AND r.id = s.round_id AND g.id = r.game_id AND g.sqid = $2`,
		scoreID, sqid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete round score: %w", err)
	}
	return requireAffected(res)
}

// ListRivalries returns the rivalries recorded under a board identifier.
func (r *Repository) ListRivalries(ctx context.Context, sqid string) ([]models.Rivalry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sqid, player_one, player_two, wins_one, wins_two
		FROM rivalries
		WHERE sqid = $1
		ORDER BY id`,
		sqid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rivalries: %w", err)
	}
	defer rows.Close()

	var rivalries []models.Rivalry
	for rows.Next() {
		var rv models.Rivalry
		if err := rows.Scan(&rv.ID, &rv.Sqid, &rv.PlayerOne, &rv.PlayerTwo, &rv.WinsOne, &rv.WinsTwo); err != nil {
			return nil, fmt.Errorf("failed to scan rivalry: %w", err)
		}
		rivalries = append(rivalries, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rivalries, nil
}

// CreateRivalry records a head-to-head pairing under a board identifier.
func (r *Repository) CreateRivalry(ctx context.Context, sqid, playerOne, playerTwo string, winsOne, winsTwo int) (*models.Rivalry, error) {
	var rv models.Rivalry
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rivalries (sqid, player_one, player_two, wins_one, wins_two)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sqid, player_one, player_two, wins_one, wins_two`,
		sqid, playerOne, playerTwo, winsOne, winsTwo,
	).Scan(&rv.ID, &rv.Sqid, &rv.PlayerOne, &rv.PlayerTwo, &rv.WinsOne, &rv.WinsTwo)
	if err != nil {
		return nil, fmt.Errorf("failed to create rivalry: %w", err)
	}
	return &rv, nil
}

// requireAffected maps a zero-row write to ErrNotFound.
func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
