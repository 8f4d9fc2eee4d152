// Package client is the Go consumer of the scoreboard service: it seeds a
// local board state over REST, keeps it live off the websocket delta stream,
// and offers a throttled admin writer for mutations.
package client

import (
	"encoding/json"
	"slices"

	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// BoardState is the local mirror of one scoreboard. Deltas merge into it
// field group by field group; fields a delta omits keep their value.
type BoardState struct {
	Team1       string
	Team1Color  string
	Team1Accent string
	Team2       string
	Team2Color  string
	Team2Accent string
	Tournament  string
	BoardColor  string
	Scores      []int
	ActiveSet   int
}

// ApplyScores replaces the score vector. A nil or wrong-length vector is
// ignored.
func (s *BoardState) ApplyScores(scores []int) {
	if len(scores) != 6 {
		return
	}
	s.Scores = slices.Clone(scores)
}

// ApplyActiveSet replaces the highlighted set index when it is in range.
func (s *BoardState) ApplyActiveSet(setIndex int) {
	if setIndex < 0 || setIndex > 2 {
		return
	}
	s.ActiveSet = setIndex
}

// ApplyTeamInfo merges a team-info delta. Empty fields leave the local value
// untouched, so partial payloads never blank out the display.
func (s *BoardState) ApplyTeamInfo(info scoreboard.TeamInfo) {
	if info.Team1 != "" {
		s.Team1 = info.Team1
	}
	if info.Team1Color != "" {
		s.Team1Color = info.Team1Color
	}
	if info.Team1Accent != "" {
		s.Team1Accent = info.Team1Accent
	}
	if info.Team2 != "" {
		s.Team2 = info.Team2
	}
	if info.Team2Color != "" {
		s.Team2Color = info.Team2Color
	}
	if info.Team2Accent != "" {
		s.Team2Accent = info.Team2Accent
	}
	if info.Tournament != "" {
		s.Tournament = info.Tournament
	}
}

// ApplyDisplay merges a display delta, same empty-field rule as team info.
func (s *BoardState) ApplyDisplay(display scoreboard.Display) {
	if display.Tournament != "" {
		s.Tournament = display.Tournament
	}
	if display.BoardColor != "" {
		s.BoardColor = display.BoardColor
	}
}

// decodeScores accepts both delta shapes on the wire: a bare array and an
// object with a scores field.
func decodeScores(raw json.RawMessage) ([]int, bool) {
	var scores []int
	if err := json.Unmarshal(raw, &scores); err == nil {
		return scores, true
	}
	var obj struct {
		Scores []int `json:"scores"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Scores != nil {
		return obj.Scores, true
	}
	return nil, false
}

// decodeActiveSet accepts a bare integer or an object with a setIndex field.
func decodeActiveSet(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var obj struct {
		SetIndex *int `json:"setIndex"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.SetIndex != nil {
		return *obj.SetIndex, true
	}
	return 0, false
}
