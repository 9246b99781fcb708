package repo

import (
	"context"
	"errors"
	"testing"

	"Helix/internal/session"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUsers(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "coil", "coil@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	gotID, hash, err := s.GetByLogin(ctx, "coil")
	if err != nil {
		t.Fatal(err)
	}
	if gotID != id || hash != "hash" {
		t.Errorf("GetByLogin = %q %q", gotID, hash)
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if u.Login != "coil" || u.Email != "coil@example.com" || u.CreatedAt == 0 {
		t.Errorf("GetUser = %+v", u)
	}

	if _, _, err := s.GetByLogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown login: %v", err)
	}
	if _, err := s.CreateUser(ctx, "coil", "x@example.com", "h"); err == nil {
		t.Error("duplicate login should fail")
	}
}

func TestAnalyses(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id, err := s.SaveAnalysis(ctx, Analysis{UserID: "u1", Kind: "miner", Input: `{"a":1}`, Result: `{"b":2}`})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveAnalysis(ctx, Analysis{UserID: "u2", Kind: "stress", Input: `{}`, Result: `{}`}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListAnalyses(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].Kind != "miner" {
		t.Fatalf("ListAnalyses = %+v", list)
	}

	a, err := s.GetAnalysis(ctx, "u1", id)
	if err != nil {
		t.Fatal(err)
	}
	if a.Input != `{"a":1}` || a.Result != `{"b":2}` {
		t.Errorf("GetAnalysis = %+v", a)
	}
	if _, err := s.GetAnalysis(ctx, "u2", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign analysis: %v", err)
	}
}

func TestRecorder(t *testing.T) {
	s := openMemory(t)
	rec := &Recorder{Repo: s}

	rec.Record(context.Background(), "stress", map[string]int{"d": 1}, map[string]int{"s": 2})
	ctx := session.With(context.Background(), session.User{ID: "u1", Login: "coil"})
	rec.Record(ctx, "stress", map[string]int{"d": 1}, map[string]int{"s": 2})

	list, err := s.ListAnalyses(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Input != `{"d":1}` {
		t.Errorf("recorded %+v", list)
	}

	var nilRec *Recorder
	nilRec.Record(ctx, "stress", nil, nil)
}

func TestWithSSLMode(t *testing.T) {
	cases := map[string]string{
		"postgres://u@h/db":               "postgres://u@h/db?sslmode=require",
		"postgres://u@h/db?x=1":           "postgres://u@h/db?x=1&sslmode=require",
		"host=h dbname=db":                "host=h dbname=db sslmode=require",
		"postgres://u@h/db?sslmode=allow": "postgres://u@h/db?sslmode=allow",
	}
	for in, want := range cases {
		if got := withSSLMode(in); got != want {
			t.Errorf("withSSLMode(%q) = %q, expected %q", in, got, want)
		}
	}
}
