package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opencourt/scoreboard/internal/models"
)

func TestSeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scoreboard/MXsAKe" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"BoardSqid":  "MXsAKe",
			"TeamName1":  "Ravens",
			"TeamName2":  "Owls",
			"TeamColor1": "#00adb5", "TeamColor2": "#ff6f3c",
			"TeamAccent1": "#007c85", "TeamAccent2": "#ffb26b",
			"Tournament": "City Open", "BoardColor": "#181818",
			"Scores": "21,15,0,0,0,0", "ActiveSet": 1,
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "MXsAKe")
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	got := c.State()
	want := seededState()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seeded state mismatch (-want +got):\n%s", diff)
	}
}

func TestSeed_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(ts.URL, "MXsAKe")
	if err := c.Seed(context.Background()); err == nil {
		t.Fatal("Seed() succeeded against a 404")
	}
}

func TestAdminSetScore_WritesFullRecord(t *testing.T) {
	var put models.ScoreboardFields
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Error(err)
			}
			w.Write([]byte(`{"success":true}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"TeamName1": "Ravens", "TeamName2": "Owls",
			"TeamColor1": "#00adb5", "TeamColor2": "#ff6f3c",
			"TeamAccent1": "#007c85", "TeamAccent2": "#ffb26b",
			"Scores": "21,15,0,0,0,0", "ActiveSet": 1,
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "MXsAKe")
	if err := c.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}

	admin := NewAdmin(c)
	if err := admin.SetScore(context.Background(), 1, 0, 3); err != nil {
		t.Fatalf("SetScore() error: %v", err)
	}

	if put.Scores != "21,15,3,0,0,0" {
		t.Errorf("PUT Scores = %q, want %q", put.Scores, "21,15,3,0,0,0")
	}
	if put.TeamName1 != "Ravens" {
		t.Errorf("PUT TeamName1 = %q, want the seeded value", put.TeamName1)
	}
}

func TestAdminSetScore_RejectsOutOfRange(t *testing.T) {
	admin := NewAdmin(New("http://localhost:0", "MXsAKe"))

	if err := admin.SetScore(context.Background(), 3, 0, 1); err == nil {
		t.Error("set index 3 accepted")
	}
	if err := admin.SetScore(context.Background(), 0, 2, 1); err == nil {
		t.Error("team index 2 accepted")
	}
	if err := admin.SetScore(context.Background(), 0, 0, 100); err == nil {
		t.Error("score 100 accepted")
	}
}
