package cardgame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/opencourt/scoreboard/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_CreateGame(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO games`).
		WithArgs("MXsAKe", "Friday Night").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sqid", "name", "status", "created_at"}).
			AddRow(int64(1), "MXsAKe", "Friday Night", "active", created))

	got, err := repo.CreateGame(context.Background(), "MXsAKe", "Friday Night")
	if err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}
	want := &models.Game{ID: 1, Sqid: "MXsAKe", Name: "Friday Night", Status: "active", CreatedAt: created}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateGame() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_GetGame_WrongBoard(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Row 5 exists, but under another identifier. The scoped query returns
	// nothing.
	mock.ExpectQuery(`SELECT id, sqid, name, status, created_at`).
		WithArgs(int64(5), "uPGhfz").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetGame(context.Background(), "uPGhfz", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGame() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_CreatePlayer_MissingParent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO players`).
		WithArgs("Dana", int64(9), "MXsAKe").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.CreatePlayer(context.Background(), "MXsAKe", 9, "Dana")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("CreatePlayer() with absent game: error = %v, want ErrNotFound", err)
	}
}

func TestRepository_UpsertRoundScore(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO round_scores`).
		WithArgs(21, int64(4), int64(2), "MXsAKe").
		WillReturnRows(sqlmock.NewRows([]string{"id", "round_id", "player_id", "value"}).
			AddRow(int64(11), int64(4), int64(2), 21))

	got, err := repo.UpsertRoundScore(context.Background(), "MXsAKe", 4, 2, 21)
	if err != nil {
		t.Fatalf("UpsertRoundScore() error: %v", err)
	}
	want := &models.RoundScore{ID: 11, RoundID: 4, PlayerID: 2, Value: 21}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UpsertRoundScore() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_DeleteGame_NoRowAffected(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM games`).
		WithArgs(int64(3), "MXsAKe").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteGame(context.Background(), "MXsAKe", 3)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteGame() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ListRivalries(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, sqid, player_one`).
		WithArgs("MXsAKe").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sqid", "player_one", "player_two", "wins_one", "wins_two"}).
			AddRow(int64(1), "MXsAKe", "Ale", "Bo", 3, 2))

	got, err := repo.ListRivalries(context.Background(), "MXsAKe")
	if err != nil {
		t.Fatalf("ListRivalries() error: %v", err)
	}
	want := []models.Rivalry{{ID: 1, Sqid: "MXsAKe", PlayerOne: "Ale", PlayerTwo: "Bo", WinsOne: 3, WinsTwo: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListRivalries() mismatch (-want +got):\n%s", diff)
	}
}
