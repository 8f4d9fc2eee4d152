package scoreboard

import (
	"regexp"
	"strings"

	"github.com/opencourt/scoreboard/internal/models"
)

// Field length limits. Tournament was tightened from 100 to 60; the limit is
// enforced on write only, stored values are returned as-is.
const (
	MaxTeamNameLen   = 40
	MaxTournamentLen = 60
)

var (
	hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)
	scoresRe   = regexp.MustCompile(`^\d{1,2}(,\d{1,2}){5}$`)
)

// Validate checks every field of a mutation payload independently and returns
// the names of the violated fields. An empty result means accept. Callers
// reject any non-empty result before touching storage.
func Validate(f models.ScoreboardFields) []string {
	var violations []string

	if len(f.TeamName1) > MaxTeamNameLen {
		violations = append(violations, "TeamName1")
	}
	if len(f.TeamName2) > MaxTeamNameLen {
		violations = append(violations, "TeamName2")
	}
	if !hexColorRe.MatchString(f.TeamColor1) {
		violations = append(violations, "TeamColor1")
	}
	if !hexColorRe.MatchString(f.TeamColor2) {
		violations = append(violations, "TeamColor2")
	}
	if !hexColorRe.MatchString(f.TeamAccent1) {
		violations = append(violations, "TeamAccent1")
	}
	if !hexColorRe.MatchString(f.TeamAccent2) {
		violations = append(violations, "TeamAccent2")
	}
	if len(f.Tournament) > MaxTournamentLen {
		violations = append(violations, "Tournament")
	}
	if f.BoardColor != "" && !hexColorRe.MatchString(f.BoardColor) {
		violations = append(violations, "BoardColor")
	}
	if !scoresRe.MatchString(f.Scores) {
		violations = append(violations, "Scores")
	}
	if f.ActiveSet < 0 || f.ActiveSet > 2 {
		violations = append(violations, "ActiveSet")
	}

	return violations
}

// ValidHexColor reports whether s is a #-prefixed 3..8 digit hex color.
func ValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// ValidScores reports whether s is a comma-joined list of exactly six
// 1..2-digit decimals.
func ValidScores(s string) bool {
	return scoresRe.MatchString(s)
}

// ValidationError carries the violated field list of a rejected mutation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}
