package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"Helix/internal/repo"
	"Helix/internal/session"
)

func setup(t *testing.T) (*mux.Router, context.Context, string) {
	t.Helper()
	store, err := repo.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	uid, err := store.CreateUser(ctx, "coil", "coil@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	ctx = session.With(ctx, session.User{ID: uid, Login: "coil"})
	rec := &repo.Recorder{Repo: store}
	rec.Record(ctx, "miner", map[string]int{"sut_mpa": 1000}, map[string]float64{"life": 42})
	rec.Record(ctx, "stress", map[string]int{"diameter_mm": 16}, map[string]float64{"von_mises_mpa": 500})

	h := &ProfileHandler{Repo: store}
	r := mux.NewRouter()
	r.HandleFunc("/profile", h.GetProfile)
	r.HandleFunc("/history", h.History)
	r.HandleFunc("/history/{id}", h.GetAnalysis)
	return r, ctx, uid
}

func serve(r http.Handler, ctx context.Context, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx))
	return rec
}

func TestProfile(t *testing.T) {
	r, ctx, uid := setup(t)
	rec := serve(r, ctx, "/profile")
	var u repo.User
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.ID != uid || u.Login != "coil" {
		t.Errorf("profile = %+v", u)
	}
	if rec := serve(r, context.Background(), "/profile"); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	r, ctx, _ := setup(t)
	rec := serve(r, ctx, "/history")
	var list []Entry
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Kind != "stress" || list[0].Input != nil {
		t.Fatalf("history = %+v", list)
	}

	rec = serve(r, ctx, "/history?limit=1")
	list = nil
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("limited history = %d entries", len(list))
	}
	if rec := serve(r, ctx, "/history?limit=x"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status %d", rec.Code)
	}

	rec = serve(r, ctx, "/history/"+list[0].ID)
	var one struct {
		Kind   string             `json:"kind"`
		Result map[string]float64 `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&one); err != nil {
		t.Fatal(err)
	}
	if one.Kind != "stress" || one.Result["von_mises_mpa"] != 500 {
		t.Errorf("analysis = %+v", one)
	}
	if rec := serve(r, ctx, "/history/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status %d", rec.Code)
	}
}
