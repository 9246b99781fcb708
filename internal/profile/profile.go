// Package profile serves the signed-in user's account and analysis history.
package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"Helix/internal/repo"
	"Helix/internal/session"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type ProfileHandler struct {
	Repo repo.Repository
}

// Entry is a history row with its stored JSON inlined.
type Entry struct {
	repo.Analysis
	Input  json.RawMessage `json:"input,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func entry(a repo.Analysis, full bool) Entry {
	e := Entry{Analysis: a}
	if full {
		e.Input = json.RawMessage(a.Input)
		e.Result = json.RawMessage(a.Result)
	}
	return e
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := session.From(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	prof, err := h.Repo.GetUser(r.Context(), u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load profile", "user", u.ID, "err", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

// History lists the user's analyses, newest first. The optional limit query
// parameter caps the count.
func (h *ProfileHandler) History(w http.ResponseWriter, r *http.Request) {
	u, ok := session.From(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}
	list, err := h.Repo.ListAnalyses(r.Context(), u.ID, limit)
	if err != nil {
		slog.Error("list analyses", "user", u.ID, "err", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	out := make([]Entry, 0, len(list))
	for _, a := range list {
		out = append(out, entry(a, false))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// GetAnalysis returns one analysis with its input and result.
func (h *ProfileHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	u, ok := session.From(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	a, err := h.Repo.GetAnalysis(r.Context(), u.ID, mux.Vars(r)["id"])
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load analysis", "user", u.ID, "err", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry(a, true))
}
