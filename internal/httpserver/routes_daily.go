// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/new         → start (or resume) today's match
//   - GET  /daily/leaderboard → best wins for today (or ?date=YYYY-MM-DD)
//
// Every player faces the same computer fleet on a given UTC day: it is placed
// from daily.Seed(date, DAILY_SALT). The match itself is played through the
// regular /game/{id} routes. One result per player per day (won or lost).

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/daily"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/session"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// dailyNewRes is returned by /daily/new. Game is empty when Played is true.
type dailyNewRes struct {
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// activeDaily finds the owner's unfinished match for date.
func (s *Server) activeDaily(owner, date string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.games {
		if m.Owner == owner && m.DailyDate == date && !m.Recorded {
			return id, true
		}
	}
	return "", false
}

// handleDailyNew creates or resumes today's match.
//   - A stored result for today → Played=true.
//   - An active daily match → its current view.
//   - Otherwise a new match with the day's computer fleet.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	owner := s.ownerID(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	played, err := s.daily.AlreadyPlayed(r.Context(), owner, date)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	if id, ok := s.activeDaily(owner, date); ok {
		var v gameView
		err := s.store.View(r.Context(), id, func(sess *session.Session) error {
			m, _ := s.lookup(id, owner)
			v = viewOf(sess, m)
			return nil
		})
		if err == nil {
			_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Game: &v})
			return
		}
	}

	seed := daily.Seed(now, s.cfg.DailySalt)
	sess := session.New(s.playerName(r, ""), session.WithLogger(log.Logger))
	if err := sess.AutoPlaceFleetSeeded(game.SideOpponent, seed); err != nil {
		writeGameError(w, err)
		return
	}
	m := s.newMeta(w, r)
	m.DailyDate, m.DailySeed = date, seed
	if err := s.startMatch(r, sess, m); err != nil {
		log.Error().Err(err).Msg("save daily game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	v := viewOf(sess, *m)
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Game: &v})
}

// dailyLBRes is returned by /daily/leaderboard.
type dailyLBRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := daily.ParseDateKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", err)
		return
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(dailyLBRes{Date: date, Top: rows})
}
