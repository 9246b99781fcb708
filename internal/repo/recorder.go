package repo

import (
	"context"
	"encoding/json"
	"log/slog"

	"Helix/internal/session"
)

// Recorder saves finished calculations for the user in the request context.
// A nil Recorder, or one without a repository, records nothing.
type Recorder struct {
	Repo Repository
}

func (r *Recorder) Record(ctx context.Context, kind string, input, result any) {
	if r == nil || r.Repo == nil {
		return
	}
	u, ok := session.From(ctx)
	if !ok {
		return
	}
	in, err := json.Marshal(input)
	if err != nil {
		slog.Error("encode analysis input", "kind", kind, "error", err)
		return
	}
	out, err := json.Marshal(result)
	if err != nil {
		slog.Error("encode analysis result", "kind", kind, "error", err)
		return
	}
	if _, err := r.Repo.SaveAnalysis(ctx, Analysis{UserID: u.ID, Kind: kind, Input: string(in), Result: string(out)}); err != nil {
		slog.Error("record analysis", "kind", kind, "user", u.ID, "error", err)
	}
}
