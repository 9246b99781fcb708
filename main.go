package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"Helix/internal/auth"
	"Helix/internal/calc/fastener"
	"Helix/internal/calc/fatigue"
	"Helix/internal/calc/loadhistory"
	"Helix/internal/calc/premium/autodesign"
	"Helix/internal/calc/premium/batch"
	"Helix/internal/calc/premium/importer"
	"Helix/internal/calc/premium/recommend"
	"Helix/internal/calc/report"
	"Helix/internal/calc/spring"
	"Helix/internal/calc/stress"
	"Helix/internal/config"
	"Helix/internal/profile"
	"Helix/internal/repo"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, store repo.Repository) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Insecure: !cfg.TLS()}
	profileH := &profile.ProfileHandler{Repo: store}
	history := &repo.Recorder{Repo: store}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/history", profileH.History).Methods("GET")
	secureApi.HandleFunc("/history/{id}", profileH.GetAnalysis).Methods("GET")

	stressH := &stress.Handler{History: history}
	fatigueH := &fatigue.Handler{History: history}
	springH := &spring.Handler{History: history}
	fastenerH := &fastener.Handler{History: history}
	loadhistoryH := &loadhistory.Handler{History: history}
	reportH := &report.Handler{}

	secureApi.HandleFunc("/tools/stress/calc", stressH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/endurance/calc", fatigueH.Endurance).Methods("POST")
	secureApi.HandleFunc("/tools/fatigue/calc", fatigueH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/miner/calc", fatigueH.Miner).Methods("POST")
	secureApi.HandleFunc("/tools/spring/push/calc", springH.Push).Methods("POST")
	secureApi.HandleFunc("/tools/spring/extension/calc", springH.Extension).Methods("POST")
	secureApi.HandleFunc("/tools/fastener/calc", fastenerH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/loadhistory/calc", loadhistoryH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	autoH := &autodesign.Handler{History: history}
	batchH := &batch.Handler{History: history}
	importH := &importer.Handler{History: history}
	recommendH := &recommend.Handler{History: history}

	secureApi.HandleFunc("/premium/autodesign/push", autoH.Push).Methods("POST")
	secureApi.HandleFunc("/premium/batch/push", batchH.Push).Methods("POST")
	secureApi.HandleFunc("/premium/import/miner", importH.Miner).Methods("POST")
	secureApi.HandleFunc("/premium/recommend/criterion", recommendH.Criterion).Methods("POST")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logger(os.Stderr))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := repo.Open(cfg.Database())
	if err != nil {
		slog.Error("database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	mux := mux.NewRouter()
	HandleList(mux, cfg, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("starting server", "addr", cfg.Addr, "tls", cfg.TLS())
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
	wg.Wait()
	slog.Info("server stopped")
}
