package cardgame

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencourt/scoreboard/internal/boardid"
	"github.com/opencourt/scoreboard/internal/models"
)

// MaxNameLen bounds game and player names.
const MaxNameLen = 60

// ErrInvalid wraps an input validation failure on a card-game write.
var ErrInvalid = errors.New("invalid card game input")

// GameRepository defines what the app layer needs from the repository.
type GameRepository interface {
	ListGames(ctx context.Context, sqid string) ([]models.Game, error)
	CreateGame(ctx context.Context, sqid, name string) (*models.Game, error)
	GetGame(ctx context.Context, sqid string, gameID int64) (*models.Game, error)
	UpdateGame(ctx context.Context, sqid string, gameID int64, name, status string) error
	DeleteGame(ctx context.Context, sqid string, gameID int64) error

	ListPlayers(ctx context.Context, sqid string, gameID int64) ([]models.Player, error)
	CreatePlayer(ctx context.Context, sqid string, gameID int64, name string) (*models.Player, error)
	GetPlayer(ctx context.Context, sqid string, playerID int64) (*models.Player, error)
	UpdatePlayer(ctx context.Context, sqid string, playerID int64, name string) error
	DeletePlayer(ctx context.Context, sqid string, playerID int64) error

	ListRounds(ctx context.Context, sqid string, gameID int64) ([]models.Round, error)
	CreateRound(ctx context.Context, sqid string, gameID int64, roundNumber int) (*models.Round, error)
	GetRound(ctx context.Context, sqid string, roundID int64) (*models.Round, error)
	UpdateRound(ctx context.Context, sqid string, roundID int64, roundNumber int) error
	DeleteRound(ctx context.Context, sqid string, roundID int64) error

	ListRoundScores(ctx context.Context, sqid string, roundID int64) ([]models.RoundScore, error)
	UpsertRoundScore(ctx context.Context, sqid string, roundID, playerID int64, value int) (*models.RoundScore, error)
	DeleteRoundScore(ctx context.Context, sqid string, scoreID int64) error

	ListRivalries(ctx context.Context, sqid string) ([]models.Rivalry, error)
	CreateRivalry(ctx context.Context, sqid, playerOne, playerTwo string, winsOne, winsTwo int) (*models.Rivalry, error)
}

// UpdateGameRequest carries a partial game update. Nil fields keep the
// stored value.
type UpdateGameRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// CreateRivalryRequest carries a new head-to-head pairing.
type CreateRivalryRequest struct {
	PlayerOne string `json:"player_one"`
	PlayerTwo string `json:"player_two"`
	WinsOne   int    `json:"wins_one"`
	WinsTwo   int    `json:"wins_two"`
}

// App handles card-game business logic. Every operation gates on the board
// identifier's format before touching the repository, so garbage identifiers
// never reach the database.
type App struct {
	repo  GameRepository
	codec *boardid.Codec
}

// NewApp creates a new card-game App.
func NewApp(repo GameRepository, codec *boardid.Codec) *App {
	return &App{repo: repo, codec: codec}
}

// ListGames returns all games under a board identifier.
func (a *App) ListGames(ctx context.Context, sqid string) ([]models.Game, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.ListGames(ctx, sqid)
}

// CreateGame validates and records a new game.
func (a *App) CreateGame(ctx context.Context, sqid, name string) (*models.Game, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if err := validName("name", name); err != nil {
		return nil, err
	}
	return a.repo.CreateGame(ctx, sqid, name)
}

// GetGame returns one game.
func (a *App) GetGame(ctx context.Context, sqid string, gameID int64) (*models.Game, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.GetGame(ctx, sqid, gameID)
}

// UpdateGame applies a partial update to a game. Absent fields keep their
// stored values; a present status must be one of the known values.
func (a *App) UpdateGame(ctx context.Context, sqid string, gameID int64, req UpdateGameRequest) (*models.Game, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}

	game, err := a.repo.GetGame(ctx, sqid, gameID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := validName("name", *req.Name); err != nil {
			return nil, err
		}
		game.Name = *req.Name
	}
	if req.Status != nil {
		if *req.Status != models.GameStatusActive && *req.Status != models.GameStatusFinished {
			return nil, fmt.Errorf("%w: status must be %q or %q", ErrInvalid, models.GameStatusActive, models.GameStatusFinished)
		}
		game.Status = *req.Status
	}

	if err := a.repo.UpdateGame(ctx, sqid, gameID, game.Name, game.Status); err != nil {
		return nil, err
	}
	return game, nil
}

// DeleteGame removes a game and everything under it.
func (a *App) DeleteGame(ctx context.Context, sqid string, gameID int64) error {
	if !a.codec.ValidFormat(sqid) {
		return ErrNotFound
	}
	return a.repo.DeleteGame(ctx, sqid, gameID)
}

// ListPlayers returns a game's players.
func (a *App) ListPlayers(ctx context.Context, sqid string, gameID int64) ([]models.Player, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.ListPlayers(ctx, sqid, gameID)
}

// CreatePlayer validates and adds a player to a game.
func (a *App) CreatePlayer(ctx context.Context, sqid string, gameID int64, name string) (*models.Player, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if err := validName("name", name); err != nil {
		return nil, err
	}
	return a.repo.CreatePlayer(ctx, sqid, gameID, name)
}

// GetPlayer returns one player.
func (a *App) GetPlayer(ctx context.Context, sqid string, playerID int64) (*models.Player, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.GetPlayer(ctx, sqid, playerID)
}

// UpdatePlayer renames a player.
func (a *App) UpdatePlayer(ctx context.Context, sqid string, playerID int64, name string) (*models.Player, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if err := validName("name", name); err != nil {
		return nil, err
	}
	if err := a.repo.UpdatePlayer(ctx, sqid, playerID, name); err != nil {
		return nil, err
	}
	return a.repo.GetPlayer(ctx, sqid, playerID)
}

// DeletePlayer removes a player.
func (a *App) DeletePlayer(ctx context.Context, sqid string, playerID int64) error {
	if !a.codec.ValidFormat(sqid) {
		return ErrNotFound
	}
	return a.repo.DeletePlayer(ctx, sqid, playerID)
}

// ListRounds returns a game's rounds in play order.
func (a *App) ListRounds(ctx context.Context, sqid string, gameID int64) ([]models.Round, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.ListRounds(ctx, sqid, gameID)
}

// CreateRound appends the next round to a game. The round number defaults to
// one past the current count when the request omits it.
func (a *App) CreateRound(ctx context.Context, sqid string, gameID int64, roundNumber int) (*models.Round, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if roundNumber <= 0 {
		rounds, err := a.repo.ListRounds(ctx, sqid, gameID)
		if err != nil {
			return nil, err
		}
		roundNumber = len(rounds) + 1
	}
	return a.repo.CreateRound(ctx, sqid, gameID, roundNumber)
}

// GetRound returns one round.
func (a *App) GetRound(ctx context.Context, sqid string, roundID int64) (*models.Round, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.GetRound(ctx, sqid, roundID)
}

// UpdateRound renumbers a round.
func (a *App) UpdateRound(ctx context.Context, sqid string, roundID int64, roundNumber int) (*models.Round, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if roundNumber <= 0 {
		return nil, fmt.Errorf("%w: round_number must be positive", ErrInvalid)
	}
	if err := a.repo.UpdateRound(ctx, sqid, roundID, roundNumber); err != nil {
		return nil, err
	}
	return a.repo.GetRound(ctx, sqid, roundID)
}

// DeleteRound removes a round and its scores.
func (a *App) DeleteRound(ctx context.Context, sqid string, roundID int64) error {
	if !a.codec.ValidFormat(sqid) {
		return ErrNotFound
	}
	return a.repo.DeleteRound(ctx, sqid, roundID)
}

// ListRoundScores returns the scores recorded for a round.
func (a *App) ListRoundScores(ctx context.Context, sqid string, roundID int64) ([]models.RoundScore, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.ListRoundScores(ctx, sqid, roundID)
}

// RecordRoundScore writes a player's score for a round, replacing any
// previous value for the pair.
func (a *App) RecordRoundScore(ctx context.Context, sqid string, roundID, playerID int64, value int) (*models.RoundScore, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.UpsertRoundScore(ctx, sqid, roundID, playerID, value)
}

// DeleteRoundScore removes one recorded score.
func (a *App) DeleteRoundScore(ctx context.Context, sqid string, scoreID int64) error {
	if !a.codec.ValidFormat(sqid) {
		return ErrNotFound
	}
	return a.repo.DeleteRoundScore(ctx, sqid, scoreID)
}

// ListRivalries returns the rivalries tracked under a board identifier.
func (a *App) ListRivalries(ctx context.Context, sqid string) ([]models.Rivalry, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	return a.repo.ListRivalries(ctx, sqid)
}

// CreateRivalry validates and records a head-to-head pairing.
func (a *App) CreateRivalry(ctx context.Context, sqid string, req CreateRivalryRequest) (*models.Rivalry, error) {
	if !a.codec.ValidFormat(sqid) {
		return nil, ErrNotFound
	}
	if err := validName("player_one", req.PlayerOne); err != nil {
		return nil, err
	}
	if err := validName("player_two", req.PlayerTwo); err != nil {
		return nil, err
	}
	if req.WinsOne < 0 || req.WinsTwo < 0 {
		return nil, fmt.Errorf("%w: win counts cannot be negative", ErrInvalid)
	}
	return a.repo.CreateRivalry(ctx, sqid, req.PlayerOne, req.PlayerTwo, req.WinsOne, req.WinsTwo)
}

func validName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalid, field)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalid, field, MaxNameLen)
	}
	return nil
}
