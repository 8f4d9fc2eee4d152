package models

// Scoreboard represents a two-team, three-set match board. JSON field names
// match the wire format the admin and overlay views exchange.
type Scoreboard struct {
	ID          int64  `json:"ScoreboardId"`
	TeamName1   string `json:"TeamName1"`
	TeamName2   string `json:"TeamName2"`
	TeamColor1  string `json:"TeamColor1"`
	TeamColor2  string `json:"TeamColor2"`
	TeamAccent1 string `json:"TeamAccent1"`
	TeamAccent2 string `json:"TeamAccent2"`
	Tournament  string `json:"Tournament"`
	BoardColor  string `json:"BoardColor"`
	Scores      string `json:"Scores"`
	ActiveSet   int    `json:"ActiveSet"`
}

// ScoreboardFields holds the mutable fields of a scoreboard, used for both
// create and full-record update payloads.
type ScoreboardFields struct {
	TeamName1   string `json:"TeamName1"`
	TeamName2   string `json:"TeamName2"`
	TeamColor1  string `json:"TeamColor1"`
	TeamColor2  string `json:"TeamColor2"`
	TeamAccent1 string `json:"TeamAccent1"`
	TeamAccent2 string `json:"TeamAccent2"`
	Tournament  string `json:"Tournament"`
	BoardColor  string `json:"BoardColor"`
	Scores      string `json:"Scores"`
	ActiveSet   int    `json:"ActiveSet"`
}

// Fields returns the mutable field group of a scoreboard.
func (s *Scoreboard) Fields() ScoreboardFields {
	return ScoreboardFields{
		TeamName1:   s.TeamName1,
		TeamName2:   s.TeamName2,
		TeamColor1:  s.TeamColor1,
		TeamColor2:  s.TeamColor2,
		TeamAccent1: s.TeamAccent1,
		TeamAccent2: s.TeamAccent2,
		Tournament:  s.Tournament,
		BoardColor:  s.BoardColor,
		Scores:      s.Scores,
		ActiveSet:   s.ActiveSet,
	}
}
