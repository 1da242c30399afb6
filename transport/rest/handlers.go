package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

func (that *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getRoom")

	roomID := mux.Vars(r)["roomID"]

	snapshot, err := that.rooms.Snapshot(roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room snapshot", "roomID", roomID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, snapshot)
}

func (that *Server) getResults(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getResults")

	roomID := mux.Vars(r)["roomID"]

	results, err := that.results.ListByRoomID(r.Context(), roomID)
	if err != nil {
		log.Error("failed to list game results", "roomID", roomID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, results)
}

func (that *Server) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
