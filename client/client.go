package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/scoreboard/internal/gateway"
	"github.com/opencourt/scoreboard/internal/models"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// Client follows one scoreboard: Seed pulls the current record over REST,
// Subscribe keeps the local state live off the delta stream. State reads are
// safe from any goroutine.
type Client struct {
	baseURL string
	sqid    string
	httpc   *http.Client

	mu    sync.RWMutex
	state BoardState
}

// New creates a client for one board. baseURL is the server root, e.g.
// "http://localhost:4000".
func New(baseURL, sqid string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		sqid:    sqid,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Sqid returns the board identifier the client follows.
func (c *Client) Sqid() string {
	return c.sqid
}

// State returns a copy of the current board state.
func (c *Client) State() BoardState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Scores = append([]int(nil), c.state.Scores...)
	return s
}

// boardRecord is the REST read wire form.
type boardRecord struct {
	BoardSqid string `json:"BoardSqid"`
	models.ScoreboardFields
}

// Seed replaces the local state with the stored record.
func (c *Client) Seed(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.boardURL(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch scoreboard: unexpected status %d", resp.StatusCode)
	}

	var record boardRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return fmt.Errorf("failed to decode scoreboard: %w", err)
	}

	scores, err := scoreboard.ParseScores(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to parse stored scores: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = BoardState{
		Team1:       record.TeamName1,
		Team1Color:  record.TeamColor1,
		Team1Accent: record.TeamAccent1,
		Team2:       record.TeamName2,
		Team2Color:  record.TeamColor2,
		Team2Accent: record.TeamAccent2,
		Tournament:  record.Tournament,
		BoardColor:  record.BoardColor,
		Scores:      scores,
		ActiveSet:   record.ActiveSet,
	}
	return nil
}

// Subscribe dials the websocket endpoint, joins the board's room, and merges
// incoming deltas until the context is canceled or the connection drops.
func (c *Client) Subscribe(ctx context.Context) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.socketURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial websocket: %w", err)
	}
	defer ws.Close()

	join, err := json.Marshal(gateway.JoinBoardPayload{Sqid: c.sqid})
	if err != nil {
		return err
	}
	frame, err := json.Marshal(gateway.Envelope{Event: gateway.EventJoinBoard, Data: join})
	if err != nil {
		return err
	}
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to join board room: %w", err)
	}

	// Unblock the blocking read when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("websocket read failed: %w", err)
		}

		var env gateway.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Warn().Err(err).Msg("dropping unparseable frame")
			continue
		}
		c.dispatch(env)
	}
}

// dispatch merges one delta into the local state.
func (c *Client) dispatch(env gateway.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch env.Event {
	case gateway.EventUpdateScores:
		if scores, ok := decodeScores(env.Data); ok {
			c.state.ApplyScores(scores)
		}
	case gateway.EventUpdateActiveSet:
		if setIndex, ok := decodeActiveSet(env.Data); ok {
			c.state.ApplyActiveSet(setIndex)
		}
	case gateway.EventUpdateTeamInfo:
		var info scoreboard.TeamInfo
		if err := json.Unmarshal(env.Data, &info); err == nil {
			c.state.ApplyTeamInfo(info)
		}
	case gateway.EventUpdateDisplay:
		var display scoreboard.Display
		if err := json.Unmarshal(env.Data, &display); err == nil {
			c.state.ApplyDisplay(display)
		}
	case gateway.EventError:
		var p gateway.ErrorPayload
		_ = json.Unmarshal(env.Data, &p)
		log.Warn().Str("error", p.Error).Msg("server rejected an update")
	}
}

func (c *Client) boardURL() string {
	return c.baseURL + "/api/scoreboard/" + c.sqid
}

func (c *Client) socketURL() string {
	url := c.baseURL + "/ws"
	if strings.HasPrefix(url, "https") {
		return "wss" + strings.TrimPrefix(url, "https")
	}
	return "ws" + strings.TrimPrefix(url, "http")
}

// fields renders the current state back into the full mutation payload.
// Callers hold no lock; the copy from State is enough.
func (c *Client) fields() models.ScoreboardFields {
	s := c.State()
	return models.ScoreboardFields{
		TeamName1:   s.Team1,
		TeamName2:   s.Team2,
		TeamColor1:  s.Team1Color,
		TeamColor2:  s.Team2Color,
		TeamAccent1: s.Team1Accent,
		TeamAccent2: s.Team2Accent,
		Tournament:  s.Tournament,
		BoardColor:  s.BoardColor,
		Scores:      scoreboard.JoinScores(s.Scores),
		ActiveSet:   s.ActiveSet,
	}
}

// put writes the full record back over REST.
func (c *Client) put(ctx context.Context, fields models.ScoreboardFields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.boardURL(), strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return fmt.Errorf("update scoreboard: status %d: %s", resp.StatusCode, payload.Error)
	}
	return nil
}
