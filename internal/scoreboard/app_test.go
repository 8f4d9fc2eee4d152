package scoreboard

import (
	"context"
	"errors"
	"testing"

	"github.com/opencourt/scoreboard/internal/boardid"
	"github.com/opencourt/scoreboard/internal/models"
)

// fakeRepo is an in-memory BoardRepository for app tests.
type fakeRepo struct {
	nextID int64
	rows   map[int64]models.ScoreboardFields
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, rows: make(map[int64]models.ScoreboardFields)}
}

func (r *fakeRepo) Create(_ context.Context, f models.ScoreboardFields) (int64, error) {
	id := r.nextID
	r.nextID++
	r.rows[id] = f
	return id, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*models.Scoreboard, error) {
	f, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Scoreboard{
		ID:          id,
		TeamName1:   f.TeamName1,
		TeamName2:   f.TeamName2,
		TeamColor1:  f.TeamColor1,
		TeamColor2:  f.TeamColor2,
		TeamAccent1: f.TeamAccent1,
		TeamAccent2: f.TeamAccent2,
		Tournament:  f.Tournament,
		BoardColor:  f.BoardColor,
		Scores:      f.Scores,
		ActiveSet:   f.ActiveSet,
	}, nil
}

func (r *fakeRepo) UpdateByID(_ context.Context, id int64, f models.ScoreboardFields) error {
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	r.rows[id] = f
	return nil
}

// recordingBroadcaster captures emitted deltas.
type recordingBroadcaster struct {
	scores    [][]int
	activeSet []int
	teamInfo  []TeamInfo
	display   []Display
}

func (b *recordingBroadcaster) BroadcastScores(_ string, s []int) { b.scores = append(b.scores, s) }
func (b *recordingBroadcaster) BroadcastActiveSet(_ string, n int) {
	b.activeSet = append(b.activeSet, n)
}
func (b *recordingBroadcaster) BroadcastTeamInfo(_ string, i TeamInfo) {
	b.teamInfo = append(b.teamInfo, i)
}
func (b *recordingBroadcaster) BroadcastDisplay(_ string, d Display) {
	b.display = append(b.display, d)
}

func newTestApp(t *testing.T) (*App, *fakeRepo, *recordingBroadcaster) {
	t.Helper()
	repo := newFakeRepo()
	bc := &recordingBroadcaster{}
	return NewApp(repo, boardid.Default(), bc), repo, bc
}

func TestCreateBoard_DefaultsAndEncode(t *testing.T) {
	app, repo, _ := newTestApp(t)

	sqid, err := app.CreateBoard(context.Background(), models.ScoreboardFields{})
	if err != nil {
		t.Fatalf("CreateBoard() error: %v", err)
	}
	if sqid != "MXsAKe" {
		t.Errorf("CreateBoard() sqid = %q, want %q (first row under default codec)", sqid, "MXsAKe")
	}

	f := repo.rows[1]
	if f.TeamName1 != DefaultTeamName1 || f.TeamColor1 != DefaultTeamColor1 {
		t.Errorf("defaults not applied: %+v", f)
	}
	if f.Scores != DefaultScores {
		t.Errorf("Scores = %q, want %q", f.Scores, DefaultScores)
	}
	if f.ActiveSet != 0 {
		t.Errorf("ActiveSet = %d, want 0", f.ActiveSet)
	}
}

func TestCreateBoard_RejectsInvalid(t *testing.T) {
	app, repo, _ := newTestApp(t)

	f := validFields()
	f.TeamColor1 = "notacolor"
	_, err := app.CreateBoard(context.Background(), f)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateBoard() error = %v, want ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "TeamColor1" {
		t.Errorf("violations = %v, want [TeamColor1]", verr.Fields)
	}
	if len(repo.rows) != 0 {
		t.Error("invalid payload reached the store")
	}
}

func TestGetBoard_UnknownIdentifier(t *testing.T) {
	app, _, _ := newTestApp(t)
	if _, err := app.GetBoard(context.Background(), "!!bogus!!"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBoard(bogus) error = %v, want ErrNotFound", err)
	}
}

func TestGetBoard_DecodedButMissing(t *testing.T) {
	app, _, _ := newTestApp(t)
	// A valid encoding of an id with no row behind it.
	sqid, err := boardid.Default().Encode(12345)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.GetBoard(context.Background(), sqid); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBoard(%q) error = %v, want ErrNotFound", sqid, err)
	}
}

func TestUpdateBoard_EmitsScoresDelta(t *testing.T) {
	app, _, bc := newTestApp(t)
	ctx := context.Background()

	sqid, err := app.CreateBoard(ctx, models.ScoreboardFields{})
	if err != nil {
		t.Fatal(err)
	}

	f := validFields()
	f.Scores = "1,0,0,0,0,0"
	if err := app.UpdateBoard(ctx, sqid, f); err != nil {
		t.Fatalf("UpdateBoard() error: %v", err)
	}

	if len(bc.scores) != 1 {
		t.Fatalf("scores deltas = %d, want 1", len(bc.scores))
	}
	want := []int{1, 0, 0, 0, 0, 0}
	for i, n := range want {
		if bc.scores[0][i] != n {
			t.Errorf("scores delta = %v, want %v", bc.scores[0], want)
			break
		}
	}
}

func TestUpdateBoard_DeltaPerChangedGroup(t *testing.T) {
	app, _, bc := newTestApp(t)
	ctx := context.Background()

	base := validFields()
	sqid, err := app.CreateBoard(ctx, base)
	if err != nil {
		t.Fatal(err)
	}

	next := base
	next.ActiveSet = 1
	next.TeamName1 = "Eagles"
	next.Tournament = "Finals"
	if err := app.UpdateBoard(ctx, sqid, next); err != nil {
		t.Fatalf("UpdateBoard() error: %v", err)
	}

	if len(bc.scores) != 0 {
		t.Errorf("unchanged scores emitted %d deltas", len(bc.scores))
	}
	if len(bc.activeSet) != 1 || bc.activeSet[0] != 1 {
		t.Errorf("activeSet deltas = %v, want [1]", bc.activeSet)
	}
	if len(bc.teamInfo) != 1 || bc.teamInfo[0].Team1 != "Eagles" {
		t.Errorf("teamInfo deltas = %+v, want one with Team1=Eagles", bc.teamInfo)
	}
	if len(bc.display) != 1 || bc.display[0].Tournament != "Finals" {
		t.Errorf("display deltas = %+v, want one with Tournament=Finals", bc.display)
	}
}

func TestUpdateBoard_InvalidLeavesStoreUntouched(t *testing.T) {
	app, repo, bc := newTestApp(t)
	ctx := context.Background()

	base := validFields()
	sqid, err := app.CreateBoard(ctx, base)
	if err != nil {
		t.Fatal(err)
	}

	bad := base
	bad.TeamColor1 = "notacolor"
	err = app.UpdateBoard(ctx, sqid, bad)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("UpdateBoard() error = %v, want ValidationError", err)
	}
	if repo.rows[1].TeamColor1 != base.TeamColor1 {
		t.Errorf("stored TeamColor1 = %q, want untouched %q", repo.rows[1].TeamColor1, base.TeamColor1)
	}
	if len(bc.scores)+len(bc.activeSet)+len(bc.teamInfo)+len(bc.display) != 0 {
		t.Error("rejected update emitted deltas")
	}
}

func TestParseScores(t *testing.T) {
	got, err := ParseScores("1,2,3,4,5,6")
	if err != nil {
		t.Fatalf("ParseScores() error: %v", err)
	}
	for i, want := range []int{1, 2, 3, 4, 5, 6} {
		if got[i] != want {
			t.Errorf("ParseScores()[%d] = %d, want %d", i, got[i], want)
		}
	}

	if _, err := ParseScores("1,2,3"); err == nil {
		t.Error("ParseScores(short) succeeded, want error")
	}
	if _, err := ParseScores("a,b,c,d,e,f"); err == nil {
		t.Error("ParseScores(non-numeric) succeeded, want error")
	}
}

func TestJoinScores(t *testing.T) {
	if got, want := JoinScores([]int{1, 0, 0, 0, 0, 0}), "1,0,0,0,0,0"; got != want {
		t.Errorf("JoinScores() = %q, want %q", got, want)
	}
}
