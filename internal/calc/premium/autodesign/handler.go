package autodesign

import (
	"encoding/json"
	"net/http"

	"Helix/internal/repo"
)

type Handler struct {
	History *repo.Recorder
}

func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	var input PushAutoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Push(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.History.Record(r.Context(), "autodesign/push", input, res)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
