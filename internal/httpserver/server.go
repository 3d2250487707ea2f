// internal/httpserver/server.go
//
// HTTP server wiring for the Battleship backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/stats/leaderboard".
//   - Game endpoints (optional auth): mounted under /game (routes_game.go).
//   - Daily Challenge endpoints (optional auth): mounted under /daily (routes_daily.go).
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me, /games/mine (auth.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes can still run for guests, who are tracked by an anonymous cookie.
//   - Active matches live in a store.Store; every mutation goes through Update so
//     one request at a time touches a match.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/battleship/internal/config"
	"github.com/robalobadob/battleship/internal/daily"
	"github.com/robalobadob/battleship/internal/stats"
	"github.com/robalobadob/battleship/internal/store"
)

// Server bundles router, match store, and DB-backed stores.
type Server struct {
	r     *chi.Mux
	cfg   config.Config
	store store.Store
	db    *sql.DB
	saves *store.SavedGames
	stats *stats.Store
	daily *daily.Store

	mu    sync.Mutex
	games map[string]*gameMeta // host-side data per active match
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   cfg,
		store: st,
		db:    db,
		saves: store.NewSavedGames(db),
		stats: stats.NewStore(db),
		daily: daily.NewStore(db),
		games: make(map[string]*gameMeta),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"battleship-go","endpoints":["/health","POST /game/new","POST /game/{id}/shoot","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "activeGames": s.store.Len()})
	})

	// Game endpoints, guests allowed
	s.mountGame(s.r.With(s.withOptionalAuth()))

	// Daily Challenge, guests allowed (results keyed by user or anon ID)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- replies -----------------------------------

type errorRes struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError sends a JSON error body; detail carries the wrapped error text.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	res := errorRes{Error: code}
	if err != nil {
		res.Detail = err.Error()
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
