package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencourt/scoreboard/internal/config"
	"github.com/opencourt/scoreboard/internal/models"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// seedBoard mirrors the JSON snapshot structure.
type seedBoard struct {
	TeamName1   string `json:"team_name1"`
	TeamName2   string `json:"team_name2"`
	TeamColor1  string `json:"team_color1"`
	TeamColor2  string `json:"team_color2"`
	TeamAccent1 string `json:"team_accent1"`
	TeamAccent2 string `json:"team_accent2"`
	Tournament  string `json:"tournament"`
	BoardColor  string `json:"board_color"`
	Scores      string `json:"scores"`
	ActiveSet   int    `json:"active_set"`
}

func main() {
	path := flag.String("file", "internal/assets/boards.json", "JSON snapshot of demo boards")
	flag.Parse()

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var boards []seedBoard
	if err := json.Unmarshal(data, &boards); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using the shared config
	cfg := config.FromEnv()
	codec, err := cfg.Codec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build codec: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(context.Background(), cfg.DB.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert, validate and report
	var inserted, errs int
	for i, b := range boards {
		fields := models.ScoreboardFields(b)
		if b.Scores == "" {
			fields.Scores = scoreboard.DefaultScores
		}
		if violations := scoreboard.Validate(fields); len(violations) > 0 {
			fmt.Fprintf(os.Stderr, "board %d: invalid fields %v, skipping\n", i, violations)
			errs++
			continue
		}

		var id int64
		err := pool.QueryRow(context.Background(), `
            INSERT INTO scoreboards (
              team_name1, team_name2, team_color1, team_color2,
              team_accent1, team_accent2, tournament, board_color,
              scores, active_set
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            RETURNING scoreboard_id
        `,
			fields.TeamName1, fields.TeamName2, fields.TeamColor1, fields.TeamColor2,
			fields.TeamAccent1, fields.TeamAccent2, fields.Tournament, fields.BoardColor,
			fields.Scores, fields.ActiveSet,
		).Scan(&id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "board %d: insert failed: %v\n", i, err)
			errs++
			continue
		}

		sqid, err := codec.Encode(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "board %d: encode failed: %v\n", i, err)
			errs++
			continue
		}
		fmt.Printf("seeded board %s (%s vs %s)\n", sqid, fields.TeamName1, fields.TeamName2)
		inserted++
	}

	fmt.Printf("done: %d seeded, %d failed of %d\n", inserted, errs, len(boards))
	if errs > 0 {
		os.Exit(1)
	}
}
