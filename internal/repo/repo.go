// Package repo persists users and their saved analyses. It speaks plain SQL
// through sqlx so the same schema runs on Postgres (service) and SQLite (CLI).
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, passwordHash string) (string, error)
	GetByLogin(ctx context.Context, login string) (id, passwordHash string, err error)
	GetUser(ctx context.Context, id string) (User, error)
	SaveAnalysis(ctx context.Context, a Analysis) (string, error)
	ListAnalyses(ctx context.Context, userID string, limit int) ([]Analysis, error)
	GetAnalysis(ctx context.Context, userID, id string) (Analysis, error)
}

type User struct {
	ID        string `db:"id" json:"id"`
	Login     string `db:"login" json:"login"`
	Email     string `db:"email" json:"email"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// Analysis is one recorded calculation. Input and Result hold JSON text.
type Analysis struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"-"`
	Kind      string `db:"kind" json:"kind"`
	Input     string `db:"input" json:"-"`
	Result    string `db:"result" json:"-"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects with the given driver ("postgres" or "sqlite") and applies
// the schema.
func Open(driver, dsn string) (*Store, error) {
	if driver == "postgres" {
		dsn = withSSLMode(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// a single connection keeps ":memory:" databases alive
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func withSSLMode(connStr string) string {
	if strings.Contains(connStr, "sslmode=") {
		return connStr
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if strings.Contains(connStr, "?") {
			return connStr + "&sslmode=require"
		}
		return connStr + "?sslmode=require"
	}
	return connStr + " sslmode=require"
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		input TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) CreateUser(ctx context.Context, login, email, passwordHash string) (string, error) {
	id := uuid.NewString()
	query := s.db.Rebind("INSERT INTO users (id, login, email, password, created_at) VALUES (?, ?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, id, login, email, passwordHash, time.Now().Unix()); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *Store) GetByLogin(ctx context.Context, login string) (string, string, error) {
	var row struct {
		ID       string `db:"id"`
		Password string `db:"password"`
	}
	query := s.db.Rebind("SELECT id, password FROM users WHERE login = ?")
	if err := s.db.GetContext(ctx, &row, query, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	return row.ID, row.Password, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	query := s.db.Rebind("SELECT id, login, email, created_at FROM users WHERE id = ?")
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) SaveAnalysis(ctx context.Context, a Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixNano()
	}
	query := `INSERT INTO analyses (id, user_id, kind, input, result, created_at)
		VALUES (:id, :user_id, :kind, :input, :result, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, a); err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return a.ID, nil
}

func (s *Store) ListAnalyses(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Analysis
	query := s.db.Rebind(`SELECT id, user_id, kind, input, result, created_at
		FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetAnalysis(ctx context.Context, userID, id string) (Analysis, error) {
	var a Analysis
	query := s.db.Rebind(`SELECT id, user_id, kind, input, result, created_at
		FROM analyses WHERE user_id = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &a, query, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}
