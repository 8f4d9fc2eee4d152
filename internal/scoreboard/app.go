package scoreboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/opencourt/scoreboard/internal/boardid"
	"github.com/opencourt/scoreboard/internal/models"
)

// Default field values applied to create payloads that omit them.
const (
	DefaultTeamName1   = "Team 1"
	DefaultTeamName2   = "Team 2"
	DefaultTeamColor1  = "#00adb5"
	DefaultTeamAccent1 = "#007c85"
	DefaultTeamColor2  = "#ff6f3c"
	DefaultTeamAccent2 = "#ffb26b"
	DefaultScores      = "0,0,0,0,0,0"
)

// BoardRepository defines what the app layer needs from the repository.
type BoardRepository interface {
	Create(ctx context.Context, f models.ScoreboardFields) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Scoreboard, error)
	UpdateByID(ctx context.Context, id int64, f models.ScoreboardFields) error
}

// TeamInfo is the team-info delta payload: names, colors and accents.
type TeamInfo struct {
	Team1       string `json:"team1"`
	Team1Color  string `json:"team1Color"`
	Team1Accent string `json:"team1Accent"`
	Team2       string `json:"team2"`
	Team2Color  string `json:"team2Color"`
	Team2Accent string `json:"team2Accent"`
	Tournament  string `json:"tournament,omitempty"`
}

// Display is the display delta payload: tournament banner and board color.
type Display struct {
	Tournament string `json:"tournament"`
	BoardColor string `json:"boardColor"`
}

// Broadcaster fans a delta out to every member of a board's room. REST writes
// use it so clients without their own socket emission still propagate.
type Broadcaster interface {
	BroadcastScores(sqid string, scores []int)
	BroadcastActiveSet(sqid string, setIndex int)
	BroadcastTeamInfo(sqid string, info TeamInfo)
	BroadcastDisplay(sqid string, display Display)
}

// App handles scoreboard business logic: defaulting, validation, identifier
// translation, and delta emission for REST writes.
type App struct {
	repo      BoardRepository
	codec     *boardid.Codec
	broadcast Broadcaster
}

// NewApp creates a new scoreboard App. broadcast may be nil, in which case
// REST writes do not fan out (useful in tests and tools).
func NewApp(repo BoardRepository, codec *boardid.Codec, broadcast Broadcaster) *App {
	return &App{repo: repo, codec: codec, broadcast: broadcast}
}

// CreateBoard applies defaults, validates, stores a new scoreboard and
// returns its public identifier.
func (a *App) CreateBoard(ctx context.Context, f models.ScoreboardFields) (string, error) {
	applyDefaults(&f)

	if violations := Validate(f); len(violations) > 0 {
		return "", &ValidationError{Fields: violations}
	}

	id, err := a.repo.Create(ctx, f)
	if err != nil {
		return "", err
	}

	sqid, err := a.codec.Encode(id)
	if err != nil {
		return "", fmt.Errorf("failed to encode board id: %w", err)
	}

	log.Info().Str("sqid", sqid).Msg("scoreboard created")
	return sqid, nil
}

// GetBoard resolves a public identifier and returns the scoreboard. A
// non-decodable identifier is indistinguishable from a missing row: both
// return ErrNotFound.
func (a *App) GetBoard(ctx context.Context, sqid string) (*models.Scoreboard, error) {
	id, ok := a.codec.Decode(sqid)
	if !ok {
		return nil, ErrNotFound
	}
	return a.repo.GetByID(ctx, id)
}

// UpdateBoard validates and stores a full-record update, then emits a
// broadcast delta for each field group the write changed. Last write wins.
func (a *App) UpdateBoard(ctx context.Context, sqid string, f models.ScoreboardFields) error {
	if violations := Validate(f); len(violations) > 0 {
		return &ValidationError{Fields: violations}
	}

	id, ok := a.codec.Decode(sqid)
	if !ok {
		return ErrNotFound
	}

	// Read the previous state so the write can be translated into field-group
	// deltas. The read and the update are separate statements; two concurrent
	// writers may interleave, which the last-write-wins model accepts.
	prev, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := a.repo.UpdateByID(ctx, id, f); err != nil {
		return err
	}

	a.emitDeltas(sqid, prev.Fields(), f)
	return nil
}

// emitDeltas compares the stored state with the written state and broadcasts
// one delta per changed field group.
func (a *App) emitDeltas(sqid string, prev, next models.ScoreboardFields) {
	if a.broadcast == nil {
		return
	}

	if next.Scores != prev.Scores {
		if scores, err := ParseScores(next.Scores); err == nil {
			a.broadcast.BroadcastScores(sqid, scores)
		}
	}
	if next.ActiveSet != prev.ActiveSet {
		a.broadcast.BroadcastActiveSet(sqid, next.ActiveSet)
	}
	if next.TeamName1 != prev.TeamName1 || next.TeamName2 != prev.TeamName2 ||
		next.TeamColor1 != prev.TeamColor1 || next.TeamColor2 != prev.TeamColor2 ||
		next.TeamAccent1 != prev.TeamAccent1 || next.TeamAccent2 != prev.TeamAccent2 {
		a.broadcast.BroadcastTeamInfo(sqid, TeamInfo{
			Team1:       next.TeamName1,
			Team1Color:  next.TeamColor1,
			Team1Accent: next.TeamAccent1,
			Team2:       next.TeamName2,
			Team2Color:  next.TeamColor2,
			Team2Accent: next.TeamAccent2,
		})
	}
	if next.Tournament != prev.Tournament || next.BoardColor != prev.BoardColor {
		a.broadcast.BroadcastDisplay(sqid, Display{
			Tournament: next.Tournament,
			BoardColor: next.BoardColor,
		})
	}
}

// ParseScores splits a stored scores string into its six integers.
func ParseScores(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return nil, fmt.Errorf("scores must have 6 components, got %d", len(parts))
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("score %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// JoinScores renders a score vector back into the comma-joined storage form.
func JoinScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, n := range scores {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func applyDefaults(f *models.ScoreboardFields) {
	if f.TeamName1 == "" {
		f.TeamName1 = DefaultTeamName1
	}
	if f.TeamName2 == "" {
		f.TeamName2 = DefaultTeamName2
	}
	if f.TeamColor1 == "" {
		f.TeamColor1 = DefaultTeamColor1
	}
	if f.TeamColor2 == "" {
		f.TeamColor2 = DefaultTeamColor2
	}
	if f.TeamAccent1 == "" {
		f.TeamAccent1 = DefaultTeamAccent1
	}
	if f.TeamAccent2 == "" {
		f.TeamAccent2 = DefaultTeamAccent2
	}
	if f.Scores == "" {
		f.Scores = DefaultScores
	}
}
