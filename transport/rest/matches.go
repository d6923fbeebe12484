package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listMatches")

	matches, err := that.matchService.ListMatches(r.Context())
	if err != nil {
		log.Error("failed to list matches", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list matches"})
		return
	}

	that.writeJSON(w, http.StatusOK, matches)
}

func (that *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getMatch")

	id := r.PathValue("id")

	match, err := that.matchService.GetMatch(r.Context(), id)
	if errors.Is(err, apperror.ErrMatchNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrMatchNotFound.Error()})
		return
	}

	if err != nil {
		log.Error("failed to get match", "match_id", id, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get match"})
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Debug("failed to write response", "error", err)
	}
}
