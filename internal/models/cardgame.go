package models

import "time"

// Game represents a card-game session attached to a board identifier.
type Game struct {
	ID        int64     `json:"id"`
	Sqid      string    `json:"sqid"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Game status values.
const (
	GameStatusActive   = "active"
	GameStatusFinished = "finished"
)

// Player represents a participant in a card game.
type Player struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"game_id"`
	Name   string `json:"name"`
}

// Round represents a numbered round within a card game.
type Round struct {
	ID          int64 `json:"id"`
	GameID      int64 `json:"game_id"`
	RoundNumber int   `json:"round_number"`
}

// RoundScore is one player's score for one round. At most one row exists
// per (round, player) pair; writes upsert on that key.
type RoundScore struct {
	ID       int64 `json:"id"`
	RoundID  int64 `json:"round_id"`
	PlayerID int64 `json:"player_id"`
	Value    int   `json:"value"`
}

// Rivalry is a head-to-head tally between two recurring players on a board.
type Rivalry struct {
	ID        int64  `json:"id"`
	Sqid      string `json:"sqid"`
	PlayerOne string `json:"player_one"`
	PlayerTwo string `json:"player_two"`
	WinsOne   int    `json:"wins_one"`
	WinsTwo   int    `json:"wins_two"`
}
