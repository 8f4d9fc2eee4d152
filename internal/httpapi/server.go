// Package httpapi exposes the REST surface: scoreboard CRUD and the nested
// card-game resources, with per-IP rate limiting in front.
package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/opencourt/scoreboard/internal/cardgame"
	"github.com/opencourt/scoreboard/internal/ratelimit"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

// Server holds the REST handlers and their dependencies.
type Server struct {
	boards  *scoreboard.App
	games   *cardgame.App
	limiter *ratelimit.SlidingWindow
}

// NewServer creates a new REST server. limiter may be nil to disable
// request rate limiting.
func NewServer(boards *scoreboard.App, games *cardgame.App, limiter *ratelimit.SlidingWindow) *Server {
	return &Server{boards: boards, games: games, limiter: limiter}
}

// RegisterRoutes attaches every REST route to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scoreboard", s.limit(s.handleCreateBoard))
	mux.HandleFunc("GET /api/scoreboard/{sqid}", s.limit(s.handleGetBoard))
	mux.HandleFunc("PUT /api/scoreboard/{sqid}", s.limit(s.handleUpdateBoard))

	mux.HandleFunc("GET /api/scoreboard/{sqid}/games", s.limit(s.handleListGames))
	mux.HandleFunc("POST /api/scoreboard/{sqid}/games", s.limit(s.handleCreateGame))
	mux.HandleFunc("GET /api/scoreboard/{sqid}/games/{gameID}", s.limit(s.handleGetGame))
	mux.HandleFunc("PATCH /api/scoreboard/{sqid}/games/{gameID}", s.limit(s.handleUpdateGame))
	mux.HandleFunc("DELETE /api/scoreboard/{sqid}/games/{gameID}", s.limit(s.handleDeleteGame))

	mux.HandleFunc("GET /api/scoreboard/{sqid}/games/{gameID}/players", s.limit(s.handleListPlayers))
	mux.HandleFunc("POST /api/scoreboard/{sqid}/games/{gameID}/players", s.limit(s.handleCreatePlayer))
	mux.HandleFunc("GET /api/scoreboard/{sqid}/players/{playerID}", s.limit(s.handleGetPlayer))
	mux.HandleFunc("PUT /api/scoreboard/{sqid}/players/{playerID}", s.limit(s.handleUpdatePlayer))
	mux.HandleFunc("DELETE /api/scoreboard/{sqid}/players/{playerID}", s.limit(s.handleDeletePlayer))

	mux.HandleFunc("GET /api/scoreboard/{sqid}/games/{gameID}/rounds", s.limit(s.handleListRounds))
	mux.HandleFunc("POST /api/scoreboard/{sqid}/games/{gameID}/rounds", s.limit(s.handleCreateRound))
	mux.HandleFunc("GET /api/scoreboard/{sqid}/rounds/{roundID}", s.limit(s.handleGetRound))
	mux.HandleFunc("PUT /api/scoreboard/{sqid}/rounds/{roundID}", s.limit(s.handleUpdateRound))
	mux.HandleFunc("DELETE /api/scoreboard/{sqid}/rounds/{roundID}", s.limit(s.handleDeleteRound))

	mux.HandleFunc("GET /api/scoreboard/{sqid}/rounds/{roundID}/scores", s.limit(s.handleListRoundScores))
	mux.HandleFunc("PUT /api/scoreboard/{sqid}/rounds/{roundID}/scores/{playerID}", s.limit(s.handleRecordRoundScore))
	mux.HandleFunc("DELETE /api/scoreboard/{sqid}/scores/{scoreID}", s.limit(s.handleDeleteRoundScore))

	mux.HandleFunc("GET /api/scoreboard/{sqid}/rivalries", s.limit(s.handleListRivalries))
	mux.HandleFunc("POST /api/scoreboard/{sqid}/rivalries", s.limit(s.handleCreateRivalry))

	mux.HandleFunc("GET /api/health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// limit wraps a handler with the per-IP sliding-window check.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)
		if !s.limiter.Allow(ip) {
			log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("request rate limited")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// pathID parses an integer path segment, e.g. {gameID}.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps application errors onto the REST status contract:
// validation failures 400, missing rows 404, everything else 500 with the
// raw error text.
func writeAppError(w http.ResponseWriter, err error) {
	var verr *scoreboard.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, cardgame.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scoreboard.ErrNotFound), errors.Is(err, cardgame.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
