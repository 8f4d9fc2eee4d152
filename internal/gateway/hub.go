package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/scoreboard/internal/ratelimit"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// Hub manages websocket connections and the rooms they join. A room is the
// set of live connections watching one board identifier; membership is an
// explicit map mutated on join and disconnect.
type Hub struct {
	rooms map[string]map[*Conn]struct{}
	mu    sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnConfig

	broadcastCh chan broadcastMessage

	// validFormat vets a join identifier by length and alphabet only; joining
	// a room never touches the store.
	validFormat func(string) bool

	// joins caps join attempts per client address.
	joins *ratelimit.SlidingWindow
}

// Conn represents one websocket connection.
type Conn struct {
	ID   string
	IP   string
	ws   *websocket.Conn
	send chan []byte
	hub  *Hub

	// done is closed exactly once when the connection is dropped, either by
	// its own read pump or by a slow-delivery eviction.
	done      chan struct{}
	closeOnce sync.Once

	ConnectedAt time.Time
}

// ConnConfig holds per-connection websocket settings.
type ConnConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	room string
	data []byte
}

// DefaultConnConfig returns the default websocket settings.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// OriginChecker builds a CheckOrigin function from an allow-list of origins.
// An empty list allows everything, matching the development default.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

// NewHub creates a hub. validFormat vets join identifiers; joins limits join
// attempts per IP and may be nil to disable the cap.
func NewHub(config ConnConfig, validFormat func(string) bool, joins *ratelimit.SlidingWindow) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
		validFormat: validFormat,
		joins:       joins,
	}
}

// Start processes broadcast messages until the context is cancelled.
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("gateway hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("gateway hub shutting down")
			return
		case msg := <-h.broadcastCh:
			h.deliver(msg)
		}
	}
}

// Upgrade upgrades an HTTP request to a websocket connection and starts its
// pumps. The connection joins no room until it sends joinBoard.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
	if splitErr != nil {
		ip = r.RemoteAddr
	}

	conn := &Conn{
		ID:          uuid.New().String(),
		IP:          ip,
		ws:          ws,
		send:        make(chan []byte, 256),
		done:        make(chan struct{}),
		hub:         h,
		ConnectedAt: time.Now(),
	}

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.ID).
		Str("ip", conn.IP).
		Msg("websocket connection established")
	return nil
}

// join adds a connection to a room.
func (h *Hub) join(room string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Conn]struct{})
	}
	h.rooms[room][c] = struct{}{}

	log.Debug().
		Str("connection_id", c.ID).
		Str("room", room).
		Int("members", len(h.rooms[room])).
		Msg("connection joined room")
}

// drop removes a connection from every room and closes its send channel.
func (h *Hub) drop(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	c.closeOnce.Do(func() { close(c.done) })

	log.Info().Str("connection_id", c.ID).Msg("connection unregistered")
}

// emit queues an event for every member of a room. Fire and forget: a full
// queue drops the message rather than blocking the caller.
func (h *Hub) emit(room, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal event data")
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal envelope")
		return
	}

	select {
	case h.broadcastCh <- broadcastMessage{room: room, data: frame}:
	default:
		log.Warn().Str("room", room).Msg("broadcast channel full, dropping message")
	}
}

// deliver sends a queued frame to every member of its room.
func (h *Hub) deliver(msg broadcastMessage) {
	h.mu.RLock()
	members, ok := h.rooms[msg.room]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Conn, 0, len(members))
	for c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- msg.data:
		default:
			// Slow or dead connection; close it rather than stall the room.
			log.Warn().Str("connection_id", c.ID).Msg("send buffer full, closing connection")
			h.drop(c)
			c.ws.Close()
		}
	}
}

// Stats returns the number of live rooms and total room memberships.
func (h *Hub) Stats() (rooms int, members int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, m := range h.rooms {
		members += len(m)
	}
	return len(h.rooms), members
}

// Hub implements the broadcaster the REST layer uses to fan out write
// deltas. Event data shapes match what the socket relay emits: a raw vector
// for scores, a raw index for the active set.
var _ scoreboard.Broadcaster = (*Hub)(nil)

func (h *Hub) BroadcastScores(sqid string, scores []int) {
	h.emit(sqid, EventUpdateScores, scores)
}

func (h *Hub) BroadcastActiveSet(sqid string, setIndex int) {
	h.emit(sqid, EventUpdateActiveSet, setIndex)
}

func (h *Hub) BroadcastTeamInfo(sqid string, info scoreboard.TeamInfo) {
	h.emit(sqid, EventUpdateTeamInfo, info)
}

func (h *Hub) BroadcastDisplay(sqid string, display scoreboard.Display) {
	h.emit(sqid, EventUpdateDisplay, display)
}

// sendError reports a rejected payload back to its sender only.
func (c *Conn) sendError(msg string) {
	raw, _ := json.Marshal(ErrorPayload{Error: msg})
	frame, err := json.Marshal(Envelope{Event: EventError, Data: raw})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// handleMessage processes one inbound frame. Deltas are validated with the
// same field rules as the REST payloads; a failing delta is answered with an
// error event and never broadcast. Valid deltas are relayed to the room
// without touching the store.
func (c *Conn) handleMessage(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	switch env.Event {
	case EventJoinBoard:
		c.handleJoin(env.Data)

	case EventUpdateScores:
		var p ScoresPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.sendError("malformed UpdateScores payload")
			return
		}
		if !c.hub.validFormat(p.Sqid) {
			c.sendError("invalid board identifier")
			return
		}
		if !validateScores(p.Scores) {
			c.sendError("invalid fields: scores")
			return
		}
		c.hub.emit(p.Sqid, EventUpdateScores, p.Scores)

	case EventUpdateActiveSet:
		var p ActiveSetPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.sendError("malformed UpdateActiveSet payload")
			return
		}
		if !c.hub.validFormat(p.Sqid) {
			c.sendError("invalid board identifier")
			return
		}
		if p.SetIndex < 0 || p.SetIndex > 2 {
			c.sendError("invalid fields: setIndex")
			return
		}
		c.hub.emit(p.Sqid, EventUpdateActiveSet, p.SetIndex)

	case EventUpdateTeamInfo:
		var p TeamInfoPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.sendError("malformed UpdateTeamInfo payload")
			return
		}
		if !c.hub.validFormat(p.Sqid) {
			c.sendError("invalid board identifier")
			return
		}
		if violations := validateTeamInfo(p.TeamInfo); len(violations) > 0 {
			c.sendError("invalid fields: " + strings.Join(violations, ", "))
			return
		}
		c.hub.emit(p.Sqid, EventUpdateTeamInfo, p.TeamInfo)

	case EventUpdateDisplay:
		var p DisplayPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.sendError("malformed UpdateDisplay payload")
			return
		}
		if !c.hub.validFormat(p.Sqid) {
			c.sendError("invalid board identifier")
			return
		}
		if violations := validateDisplay(p.Display); len(violations) > 0 {
			c.sendError("invalid fields: " + strings.Join(violations, ", "))
			return
		}
		c.hub.emit(p.Sqid, EventUpdateDisplay, p.Display)

	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("event", env.Event).
			Msg("ignoring unknown event")
	}
}

// handleJoin vets and executes a joinBoard request. The identifier check is
// format-only (length and alphabet); no decode, no store lookup.
func (c *Conn) handleJoin(data []byte) {
	var p JoinBoardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		// The original client sends the identifier as a bare string.
		if err2 := json.Unmarshal(data, &p.Sqid); err2 != nil {
			c.sendError("malformed joinBoard payload")
			return
		}
	}

	if c.hub.joins != nil && !c.hub.joins.Allow(c.IP) {
		c.sendError("rate limit exceeded")
		return
	}
	if !c.hub.validFormat(p.Sqid) {
		c.sendError("invalid board identifier")
		return
	}

	c.hub.join(p.Sqid, c)
}

// writePump drains the send channel to the socket and keeps the connection
// alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames until the connection drops, then removes it from its
// rooms. In-flight work elsewhere is unaffected.
func (c *Conn) readPump() {
	defer func() {
		c.hub.drop(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.hub.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected close")
			}
			break
		}
		c.handleMessage(message)
		c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}
