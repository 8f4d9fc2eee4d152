package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// Write pacing. Score taps arrive in bursts while team info changes are
// deliberate, so the two groups get separate limiters.
const (
	scoreWriteInterval = 400 * time.Millisecond
	infoWriteInterval  = 800 * time.Millisecond
)

// Admin mutates a board through the REST surface. Writes are paced per field
// group; a burst of score taps is serialized rather than dropped.
type Admin struct {
	c      *Client
	scores *rate.Limiter
	info   *rate.Limiter
}

// NewAdmin wraps a seeded client with mutation calls.
func NewAdmin(c *Client) *Admin {
	return &Admin{
		c:      c,
		scores: rate.NewLimiter(rate.Every(scoreWriteInterval), 1),
		info:   rate.NewLimiter(rate.Every(infoWriteInterval), 1),
	}
}

// SetScore sets one cell of the score grid: set 0..2, team 0..1, score 0..99.
func (a *Admin) SetScore(ctx context.Context, set, team, score int) error {
	if set < 0 || set > 2 {
		return fmt.Errorf("set must be 0..2, got %d", set)
	}
	if team < 0 || team > 1 {
		return fmt.Errorf("team must be 0 or 1, got %d", team)
	}
	if score < 0 || score > 99 {
		return fmt.Errorf("score must be 0..99, got %d", score)
	}

	a.c.mu.Lock()
	if len(a.c.state.Scores) != 6 {
		a.c.state.Scores = make([]int, 6)
	}
	a.c.state.Scores[set*2+team] = score
	a.c.mu.Unlock()

	if err := a.scores.Wait(ctx); err != nil {
		return err
	}
	return a.c.put(ctx, a.c.fields())
}

// SetActiveSet highlights a set on the board.
func (a *Admin) SetActiveSet(ctx context.Context, setIndex int) error {
	if setIndex < 0 || setIndex > 2 {
		return fmt.Errorf("set index must be 0..2, got %d", setIndex)
	}

	a.c.mu.Lock()
	a.c.state.ActiveSet = setIndex
	a.c.mu.Unlock()

	if err := a.scores.Wait(ctx); err != nil {
		return err
	}
	return a.c.put(ctx, a.c.fields())
}

// ResetScores zeroes the whole grid and moves the highlight back to set one.
func (a *Admin) ResetScores(ctx context.Context) error {
	a.c.mu.Lock()
	a.c.state.Scores = make([]int, 6)
	a.c.state.ActiveSet = 0
	a.c.mu.Unlock()

	if err := a.scores.Wait(ctx); err != nil {
		return err
	}
	return a.c.put(ctx, a.c.fields())
}

// SaveTeamInfo overwrites names, colors and accents. Empty fields keep the
// current value.
func (a *Admin) SaveTeamInfo(ctx context.Context, info scoreboard.TeamInfo) error {
	a.c.mu.Lock()
	a.c.state.ApplyTeamInfo(info)
	a.c.mu.Unlock()

	if err := a.info.Wait(ctx); err != nil {
		return err
	}
	return a.c.put(ctx, a.c.fields())
}

// SaveDisplay overwrites the tournament banner and board color. Empty fields
// keep the current value.
func (a *Admin) SaveDisplay(ctx context.Context, display scoreboard.Display) error {
	a.c.mu.Lock()
	a.c.state.ApplyDisplay(display)
	a.c.mu.Unlock()

	if err := a.info.Wait(ctx); err != nil {
		return err
	}
	return a.c.put(ctx, a.c.fields())
}
