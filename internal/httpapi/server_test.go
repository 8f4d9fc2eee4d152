package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/opencourt/scoreboard/internal/boardid"
	"github.com/opencourt/scoreboard/internal/cardgame"
	"github.com/opencourt/scoreboard/internal/gateway"
	"github.com/opencourt/scoreboard/internal/models"
	"github.com/opencourt/scoreboard/internal/ratelimit"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// fakeBoardRepo is an in-memory BoardRepository.
type fakeBoardRepo struct {
	nextID int64
	rows   map[int64]models.ScoreboardFields
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{rows: map[int64]models.ScoreboardFields{}}
}

func (f *fakeBoardRepo) Create(_ context.Context, fields models.ScoreboardFields) (int64, error) {
	f.nextID++
	f.rows[f.nextID] = fields
	return f.nextID, nil
}

func (f *fakeBoardRepo) GetByID(_ context.Context, id int64) (*models.Scoreboard, error) {
	fields, ok := f.rows[id]
	if !ok {
		return nil, scoreboard.ErrNotFound
	}
	return &models.Scoreboard{
		ID:          id,
		TeamName1:   fields.TeamName1,
		TeamName2:   fields.TeamName2,
		TeamColor1:  fields.TeamColor1,
		TeamColor2:  fields.TeamColor2,
		TeamAccent1: fields.TeamAccent1,
		TeamAccent2: fields.TeamAccent2,
		Tournament:  fields.Tournament,
		BoardColor:  fields.BoardColor,
		Scores:      fields.Scores,
		ActiveSet:   fields.ActiveSet,
	}, nil
}

func (f *fakeBoardRepo) UpdateByID(_ context.Context, id int64, fields models.ScoreboardFields) error {
	if _, ok := f.rows[id]; !ok {
		return scoreboard.ErrNotFound
	}
	f.rows[id] = fields
	return nil
}

type testEnv struct {
	server *httptest.Server
	repo   *fakeBoardRepo
	mock   sqlmock.Sqlmock
}

// newTestEnv wires a REST server over in-memory boards and a sqlmock-backed
// card-game repository. broadcast and limiter may be nil.
func newTestEnv(t *testing.T, broadcast scoreboard.Broadcaster, limiter *ratelimit.SlidingWindow) testEnv {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	codec := boardid.Default()
	repo := newFakeBoardRepo()
	boards := scoreboard.NewApp(repo, codec, broadcast)
	games := cardgame.NewApp(cardgame.NewRepository(db), codec)

	mux := http.NewServeMux()
	NewServer(boards, games, limiter).RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return testEnv{server: ts, repo: repo, mock: mock}
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}
	return resp, fields
}

func jsonString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCreateBoard_AppliesDefaults(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := jsonString(t, body["BoardSqid"]); got != "MXsAKe" {
		t.Errorf("BoardSqid = %q, want %q", got, "MXsAKe")
	}

	stored := env.repo.rows[1]
	if stored.TeamName1 != scoreboard.DefaultTeamName1 {
		t.Errorf("TeamName1 = %q, want default %q", stored.TeamName1, scoreboard.DefaultTeamName1)
	}
	if stored.Scores != scoreboard.DefaultScores {
		t.Errorf("Scores = %q, want default %q", stored.Scores, scoreboard.DefaultScores)
	}
}

func TestGetBoard_RoundTrip(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, created := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard", map[string]any{
		"TeamName1": "Ravens",
	})
	sqid := jsonString(t, created["BoardSqid"])

	resp, body := doJSON(t, http.MethodGet, env.server.URL+"/api/scoreboard/"+sqid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := jsonString(t, body["BoardSqid"]); got != sqid {
		t.Errorf("BoardSqid = %q, want %q", got, sqid)
	}
	if got := jsonString(t, body["TeamName1"]); got != "Ravens" {
		t.Errorf("TeamName1 = %q, want %q", got, "Ravens")
	}
	if _, leaked := body["ScoreboardId"]; leaked {
		t.Error("response leaks the internal row id")
	}
}

func TestGetBoard_Unknown(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := doJSON(t, http.MethodGet, env.server.URL+"/api/scoreboard/MXsAKe", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if got := jsonString(t, body["error"]); got != "not found" {
		t.Errorf("error = %q, want %q", got, "not found")
	}
}

func TestUpdateBoard_InvalidColorRejected(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, created := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard", map[string]any{})
	sqid := jsonString(t, created["BoardSqid"])
	before := env.repo.rows[1]

	payload := map[string]any{
		"TeamName1": "Ravens", "TeamName2": "Owls",
		"TeamColor1": "notacolor", "TeamColor2": "#ff6f3c",
		"TeamAccent1": "#007c85", "TeamAccent2": "#ffb26b",
		"Scores": "0,0,0,0,0,0", "ActiveSet": 0,
	}
	resp, body := doJSON(t, http.MethodPut, env.server.URL+"/api/scoreboard/"+sqid, payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := jsonString(t, body["error"]); !strings.Contains(msg, "TeamColor1") {
		t.Errorf("error = %q, want it to name TeamColor1", msg)
	}
	if env.repo.rows[1] != before {
		t.Error("rejected update mutated the store")
	}
}

func TestRequestsRateLimited(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := ratelimit.NewWithClock(10*time.Second, 2, clock)
	env := newTestEnv(t, nil, limiter)

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodGet, env.server.URL+"/api/scoreboard/MXsAKe", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("request %d: status = %d, want 404", i, resp.StatusCode)
		}
	}

	resp, body := doJSON(t, http.MethodGet, env.server.URL+"/api/scoreboard/MXsAKe", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if got := jsonString(t, body["error"]); got != "too many requests" {
		t.Errorf("error = %q", got)
	}
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	created := time.Now().UTC()
	env.mock.ExpectQuery(`INSERT INTO games`).
		WithArgs("MXsAKe", "Friday Night").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sqid", "name", "status", "created_at"}).
			AddRow(int64(1), "MXsAKe", "Friday Night", "active", created))

	resp, body := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard/MXsAKe/games", map[string]string{"name": "Friday Night"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if got := jsonString(t, body["name"]); got != "Friday Night" {
		t.Errorf("name = %q, want %q", got, "Friday Night")
	}
}

func TestCreatePlayer_MissingGame(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	env.mock.ExpectQuery(`INSERT INTO players`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, _ := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard/MXsAKe/games/9/players", map[string]string{"name": "Dana"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateGame_BadIdentifier(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	// No query expectation: a malformed identifier never reaches the store.
	resp, _ := doJSON(t, http.MethodPost, env.server.URL+"/api/scoreboard/zz/games", map[string]string{"name": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// TestUpdateBoard_BroadcastsToRoom covers the REST-to-room coupling: a PUT
// that changes the scores reaches a websocket viewer as an UpdateScores
// delta, even though the writer never opened a socket.
func TestUpdateBoard_BroadcastsToRoom(t *testing.T) {
	codec := boardid.Default()
	hub := gateway.NewHub(gateway.DefaultConnConfig(), codec.ValidFormat, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Start(ctx)

	mux := http.NewServeMux()
	gateway.NewHandler(hub).RegisterRoutes(mux)

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	repo := newFakeBoardRepo()
	boards := scoreboard.NewApp(repo, codec, hub)
	games := cardgame.NewApp(cardgame.NewRepository(db), codec)
	NewServer(boards, games, nil).RegisterRoutes(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/scoreboard", map[string]any{})
	sqid := jsonString(t, created["BoardSqid"])

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	viewer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer viewer.Close()

	join, _ := json.Marshal(map[string]string{"sqid": sqid})
	frame, _ := json.Marshal(gateway.Envelope{Event: gateway.EventJoinBoard, Data: join})
	if err := viewer.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatal(err)
	}
	waitForRoom(t, hub, 1)

	payload := map[string]any{
		"TeamName1": scoreboard.DefaultTeamName1, "TeamName2": scoreboard.DefaultTeamName2,
		"TeamColor1": scoreboard.DefaultTeamColor1, "TeamColor2": scoreboard.DefaultTeamColor2,
		"TeamAccent1": scoreboard.DefaultTeamAccent1, "TeamAccent2": scoreboard.DefaultTeamAccent2,
		"Scores": "5,0,0,0,0,0", "ActiveSet": 0,
	}
	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/scoreboard/"+sqid, payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", resp.StatusCode)
	}

	viewer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := viewer.ReadMessage()
	if err != nil {
		t.Fatalf("viewer read: %v", err)
	}
	var env gateway.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	if env.Event != gateway.EventUpdateScores {
		t.Fatalf("event = %q, want %q", env.Event, gateway.EventUpdateScores)
	}
	var scores []int
	if err := json.Unmarshal(env.Data, &scores); err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprint([]int{5, 0, 0, 0, 0, 0})
	if got := fmt.Sprint(scores); got != want {
		t.Errorf("scores = %s, want %s", got, want)
	}
}

func waitForRoom(t *testing.T, hub *gateway.Hub, members int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, got := hub.Stats(); got == members {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room never reached %d members", members)
}
