package gateway

import (
	"encoding/json"

	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// Event names shared by both directions of the websocket protocol. Clients
// send payloads carrying the board identifier; the server re-emits the same
// event name to the room without it.
const (
	EventJoinBoard       = "joinBoard"
	EventUpdateScores    = "UpdateScores"
	EventUpdateTeamInfo  = "UpdateTeamInfo"
	EventUpdateDisplay   = "UpdateDisplay"
	EventUpdateActiveSet = "UpdateActiveSet"
	EventError           = "error"
)

// Envelope is the wire frame for every websocket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinBoardPayload asks to join the room for a board identifier.
type JoinBoardPayload struct {
	Sqid string `json:"sqid"`
}

// ScoresPayload is the inbound score-vector delta.
type ScoresPayload struct {
	Sqid   string `json:"sqid"`
	Scores []int  `json:"scores"`
}

// ActiveSetPayload is the inbound active-set delta.
type ActiveSetPayload struct {
	Sqid     string `json:"sqid"`
	SetIndex int    `json:"setIndex"`
}

// TeamInfoPayload is the inbound team-info delta.
type TeamInfoPayload struct {
	Sqid string `json:"sqid"`
	scoreboard.TeamInfo
}

// DisplayPayload is the inbound display delta.
type DisplayPayload struct {
	Sqid string `json:"sqid"`
	scoreboard.Display
}

// ErrorPayload is sent back to a sender whose payload failed validation.
type ErrorPayload struct {
	Error string `json:"error"`
}

// validateScores applies the REST score rules to an inbound vector: exactly
// six entries, each 0..99.
func validateScores(scores []int) bool {
	if len(scores) != 6 {
		return false
	}
	for _, n := range scores {
		if n < 0 || n > 99 {
			return false
		}
	}
	return true
}

// validateTeamInfo applies the REST field rules to the fields a team-info
// delta actually carries; empty fields are absent and left to the receiver's
// merge.
func validateTeamInfo(info scoreboard.TeamInfo) []string {
	var violations []string
	if len(info.Team1) > scoreboard.MaxTeamNameLen {
		violations = append(violations, "team1")
	}
	if len(info.Team2) > scoreboard.MaxTeamNameLen {
		violations = append(violations, "team2")
	}
	if info.Team1Color != "" && !scoreboard.ValidHexColor(info.Team1Color) {
		violations = append(violations, "team1Color")
	}
	if info.Team1Accent != "" && !scoreboard.ValidHexColor(info.Team1Accent) {
		violations = append(violations, "team1Accent")
	}
	if info.Team2Color != "" && !scoreboard.ValidHexColor(info.Team2Color) {
		violations = append(violations, "team2Color")
	}
	if info.Team2Accent != "" && !scoreboard.ValidHexColor(info.Team2Accent) {
		violations = append(violations, "team2Accent")
	}
	if len(info.Tournament) > scoreboard.MaxTournamentLen {
		violations = append(violations, "tournament")
	}
	return violations
}

// validateDisplay applies the REST field rules to a display delta.
func validateDisplay(d scoreboard.Display) []string {
	var violations []string
	if len(d.Tournament) > scoreboard.MaxTournamentLen {
		violations = append(violations, "tournament")
	}
	if d.BoardColor != "" && !scoreboard.ValidHexColor(d.BoardColor) {
		violations = append(violations, "boardColor")
	}
	return violations
}
