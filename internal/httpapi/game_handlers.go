package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/opencourt/scoreboard/internal/cardgame"
	"github.com/opencourt/scoreboard/internal/models"
)

type nameRequest struct {
	Name string `json:"name"`
}

type roundRequest struct {
	RoundNumber int `json:"round_number"`
}

type scoreRequest struct {
	Value int `json:"value"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.ListGames(r.Context(), r.PathValue("sqid"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if games == nil {
		games = []models.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	game, err := s.games.CreateGame(r.Context(), r.PathValue("sqid"), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	game, err := s.games.GetGame(r.Context(), r.PathValue("sqid"), gameID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req cardgame.UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	game, err := s.games.UpdateGame(r.Context(), r.PathValue("sqid"), gameID, req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	if err := s.games.DeleteGame(r.Context(), r.PathValue("sqid"), gameID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	players, err := s.games.ListPlayers(r.Context(), r.PathValue("sqid"), gameID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if players == nil {
		players = []models.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	player, err := s.games.CreatePlayer(r.Context(), r.PathValue("sqid"), gameID, req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	player, err := s.games.GetPlayer(r.Context(), r.PathValue("sqid"), playerID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	player, err := s.games.UpdatePlayer(r.Context(), r.PathValue("sqid"), playerID, req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if err := s.games.DeletePlayer(r.Context(), r.PathValue("sqid"), playerID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	rounds, err := s.games.ListRounds(r.Context(), r.PathValue("sqid"), gameID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if rounds == nil {
		rounds = []models.Round{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	round, err := s.games.CreateRound(r.Context(), r.PathValue("sqid"), gameID, req.RoundNumber)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "roundID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}
	round, err := s.games.GetRound(r.Context(), r.PathValue("sqid"), roundID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleUpdateRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "roundID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}
	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	round, err := s.games.UpdateRound(r.Context(), r.PathValue("sqid"), roundID, req.RoundNumber)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "roundID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}
	if err := s.games.DeleteRound(r.Context(), r.PathValue("sqid"), roundID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListRoundScores(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "roundID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}
	scores, err := s.games.ListRoundScores(r.Context(), r.PathValue("sqid"), roundID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if scores == nil {
		scores = []models.RoundScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleRecordRoundScore(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r, "roundID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round id")
		return
	}
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	score, err := s.games.RecordRoundScore(r.Context(), r.PathValue("sqid"), roundID, playerID, req.Value)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleDeleteRoundScore(w http.ResponseWriter, r *http.Request) {
	scoreID, err := pathID(r, "scoreID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid score id")
		return
	}
	if err := s.games.DeleteRoundScore(r.Context(), r.PathValue("sqid"), scoreID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListRivalries(w http.ResponseWriter, r *http.Request) {
	rivalries, err := s.games.ListRivalries(r.Context(), r.PathValue("sqid"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if rivalries == nil {
		rivalries = []models.Rivalry{}
	}
	writeJSON(w, http.StatusOK, rivalries)
}

func (s *Server) handleCreateRivalry(w http.ResponseWriter, r *http.Request) {
	var req cardgame.CreateRivalryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rivalry, err := s.games.CreateRivalry(r.Context(), r.PathValue("sqid"), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rivalry)
}
