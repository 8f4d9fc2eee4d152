package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/opencourt/scoreboard/internal/models"
)

// boardResponse is the wire form of a scoreboard read: the public identifier
// plus the mutable fields. The internal row id never leaves the server.
type boardResponse struct {
	BoardSqid string `json:"BoardSqid"`
	models.ScoreboardFields
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var fields models.ScoreboardFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sqid, err := s.boards.CreateBoard(r.Context(), fields)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"BoardSqid": sqid})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	sqid := r.PathValue("sqid")

	board, err := s.boards.GetBoard(r.Context(), sqid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{BoardSqid: sqid, ScoreboardFields: board.Fields()})
}

func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	sqid := r.PathValue("sqid")

	var fields models.ScoreboardFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.boards.UpdateBoard(r.Context(), sqid, fields); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
