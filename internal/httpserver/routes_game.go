// internal/httpserver/routes_game.go
//
// HTTP routes for single-player matches against the computer.
//   - POST   /game/new            → new match; the opponent fleet is placed at once
//   - GET    /game/{id}           → current view (opponent ships hidden until the end)
//   - DELETE /game/{id}           → abandon the match
//   - POST   /game/{id}/place     → place one human ship by hand
//   - POST   /game/{id}/auto      → randomly place the rest of the human fleet
//   - POST   /game/{id}/clear     → remove every human ship (setup only)
//   - POST   /game/{id}/shoot     → human shot; on a miss the computer plays its turn
//   - POST   /game/{id}/save      → snapshot the match into saved_games
//   - GET    /game/saves          → caller's saves
//   - POST   /game/load/{saveID}  → resume a saved match
//
// Matches are owned by the caller (user ID or anonymous cookie); other callers
// get 404. Finished matches are recorded once in the stats tables.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/daily"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/session"
	"github.com/robalobadob/battleship/internal/stats"
	"github.com/robalobadob/battleship/internal/store"
)

var errDailyNotSaveable = errors.New("daily matches cannot be saved")

// gameMeta is what the host tracks per active match beyond the Session.
type gameMeta struct {
	Owner     string
	UserID    string // empty for guests
	DailyDate string
	DailySeed int64
	Started   time.Time
	Playing   bool // games row marked playing
	Recorded  bool // result written to stats
}

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/saves", s.handleListSaves)
		r.Post("/load/{saveID}", s.handleLoadGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/place", s.handlePlace)
			r.Post("/auto", s.handleAutoPlace)
			r.Post("/clear", s.handleClear)
			r.Post("/shoot", s.handleShoot)
			r.Post("/save", s.handleSave)
		})
	})
}

// ------------------------------- views -------------------------------------

// gameView is the client's picture of a match.
type gameView struct {
	ID          string              `json:"id"`
	PlayerName  string              `json:"playerName"`
	Phase       game.Phase          `json:"phase"`
	Turn        game.Side           `json:"turn"`
	Winner      *game.Side          `json:"winner,omitempty"`
	OwnBoard    []string            `json:"ownBoard"`
	TargetBoard []string            `json:"targetBoard"`
	Fleet       []session.ShipState `json:"fleet"`
	Remaining   game.Composition    `json:"remaining"`
	ShotsFired  int                 `json:"shotsFired"`
	ShotsTaken  int                 `json:"shotsTaken"`
	ShipsAfloat int                 `json:"shipsAfloat"`
	EnemyAfloat int                 `json:"enemyShipsAfloat"`
	DailyDate   string              `json:"dailyDate,omitempty"`
}

// cellGlyph renders one cell of a board row.
var cellGlyph = [...]byte{
	game.CellEmpty: '.',
	game.CellShip:  'S',
	game.CellMiss:  'o',
	game.CellHit:   'X',
}

func renderRows(b game.Board) []string {
	out := make([]string, game.BoardSize)
	for r := range b.Cells {
		var sb strings.Builder
		for _, c := range b.Cells[r] {
			sb.WriteByte(cellGlyph[c])
		}
		out[r] = sb.String()
	}
	return out
}

func viewOf(sess *session.Session, m gameMeta) gameView {
	target := sess.Board(game.SideOpponent)
	if !sess.IsOver() {
		target = target.Masked()
	}
	v := gameView{
		ID:          sess.ID,
		PlayerName:  sess.PlayerName,
		Phase:       sess.Phase(),
		Turn:        sess.CurrentTurn(),
		OwnBoard:    renderRows(sess.Board(game.SideHuman)),
		TargetBoard: renderRows(target),
		Fleet:       sess.Fleet(game.SideHuman),
		Remaining:   sess.Remaining(game.SideHuman),
		ShotsFired:  sess.ShotsFired(game.SideHuman),
		ShotsTaken:  sess.ShotsFired(game.SideOpponent),
		ShipsAfloat: sess.ShipsAfloat(game.SideHuman),
		EnemyAfloat: sess.ShipsAfloat(game.SideOpponent),
		DailyDate:   m.DailyDate,
	}
	if w, ok := sess.Winner(); ok {
		v.Winner = &w
	}
	return v
}

// --------------------------- match bookkeeping -----------------------------

func (s *Server) track(id string, m *gameMeta) {
	s.mu.Lock()
	s.games[id] = m
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
}

// lookup returns a copy of the match metadata if owner may access it.
func (s *Server) lookup(id, owner string) (gameMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.games[id]
	if !ok || m.Owner != owner {
		return gameMeta{}, false
	}
	return *m, true
}

// update runs fn on the caller's match {id} under the store's per-match lock.
// On failure it has already written the error response.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*session.Session, gameMeta) error) (gameMeta, bool) {
	id := chi.URLParam(r, "id")
	m, ok := s.lookup(id, s.ownerID(w, r))
	if !ok {
		writeGameError(w, store.ErrNotFound)
		return gameMeta{}, false
	}
	if err := s.store.Update(r.Context(), id, func(sess *session.Session) error { return fn(sess, m) }); err != nil {
		writeGameError(w, err)
		return m, false
	}
	return m, true
}

// afterMove syncs the games row with the match phase. Safe to call repeatedly.
func (s *Server) afterMove(r *http.Request, id string, phase game.Phase, won bool, shots int) {
	s.mu.Lock()
	m, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	markPlaying := phase != game.PhaseSetup && !m.Playing
	m.Playing = m.Playing || markPlaying
	finish := phase == game.PhaseFinished && !m.Recorded
	m.Recorded = m.Recorded || finish
	meta := *m
	s.mu.Unlock()

	ctx := r.Context()
	if markPlaying {
		if err := s.stats.MarkPlaying(ctx, id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("mark playing")
		}
	}
	if !finish {
		return
	}
	if err := s.stats.FinishGame(ctx, id, meta.UserID, won, shots); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("finish game")
	}
	if meta.DailyDate != "" {
		_, err := s.daily.InsertResult(ctx, daily.Result{
			UserID:    meta.Owner,
			Date:      meta.DailyDate,
			Seed:      meta.DailySeed,
			Won:       won,
			Shots:     shots,
			ElapsedMs: int(time.Since(meta.Started).Milliseconds()),
		})
		if err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("insert daily result")
		}
	}
	log.Info().Str("gameId", id).Bool("won", won).Int("shots", shots).Msg("match recorded")
}

// startMatch registers a fresh session with the store, the stats tables and
// the metadata map.
func (s *Server) startMatch(r *http.Request, sess *session.Session, m *gameMeta) error {
	if err := s.store.Save(r.Context(), sess); err != nil {
		return err
	}
	s.track(sess.ID, m)
	if err := s.stats.StartGame(r.Context(), statsGame(sess, m)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert game row")
	}
	return nil
}

// ------------------------------ handlers -----------------------------------

type newGameReq struct {
	PlayerName string `json:"playerName"`
	Seed       *int64 `json:"seed"` // optional, for reproducible matches
}

// handleNewGame creates a match, places the computer's fleet, and persists the owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	opts := []session.Option{session.WithLogger(log.Logger)}
	if req.Seed != nil {
		opts = append(opts, session.WithSeed(*req.Seed))
	}
	sess := session.New(s.playerName(r, req.PlayerName), opts...)
	if err := sess.AutoPlaceFleet(game.SideOpponent); err != nil {
		writeGameError(w, err)
		return
	}

	m := s.newMeta(w, r)
	if err := s.startMatch(r, sess, m); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess, *m))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	var v gameView
	if _, ok := s.update(w, r, func(sess *session.Session, m gameMeta) error {
		v = viewOf(sess, m)
		return nil
	}); ok {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.lookup(id, s.ownerID(w, r))
	if !ok {
		writeGameError(w, store.ErrNotFound)
		return
	}
	if m.DailyDate != "" && !m.Recorded {
		// Abandoning the daily challenge forfeits it; the day stays locked.
		shots := 0
		_ = s.store.View(r.Context(), id, func(sess *session.Session) error {
			shots = sess.ShotsFired(game.SideHuman)
			return nil
		})
		s.afterMove(r, id, game.PhaseFinished, false, shots)
	}
	_ = s.store.Delete(r.Context(), id)
	s.untrack(id)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// placeReq names a ship kind, its anchor cell and the direction it extends in.
type placeReq struct {
	Kind      game.ShipKind  `json:"kind"`
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Direction game.Direction `json:"direction"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err)
		return
	}
	sp := game.ShipSpec{Kind: req.Kind, Anchor: game.Coord{Row: req.Row, Col: req.Col}, Direction: req.Direction}
	s.mutate(w, r, func(sess *session.Session) error { return sess.PlaceHumanShip(sp) })
}

func (s *Server) handleAutoPlace(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) error { return sess.AutoPlaceFleet(game.SideHuman) })
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) error { return sess.ClearFleet(game.SideHuman) })
}

// mutate applies a setup step and replies with the new view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	var v gameView
	if _, ok := s.update(w, r, func(sess *session.Session, m gameMeta) error {
		if err := fn(sess); err != nil {
			return err
		}
		v = viewOf(sess, m)
		return nil
	}); !ok {
		return
	}
	s.afterMove(r, v.ID, v.Phase, false, v.ShotsFired)
	_ = json.NewEncoder(w).Encode(v)
}

type shootReq struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type shootRes struct {
	Outcome       game.Outcome   `json:"outcome"`
	Coord         game.Coord     `json:"coord"`
	OpponentShots []session.Shot `json:"opponentShots"`
	Game          gameView       `json:"game"`
}

// handleShoot fires the human shot. When it misses, the computer takes its
// whole turn before the response is written, so the reply always hands the
// turn back to the human (or ends the match).
func (s *Server) handleShoot(w http.ResponseWriter, r *http.Request) {
	var req shootReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		http.Error(w, `{"error":"bad_request","detail":"row and col are required"}`, http.StatusBadRequest)
		return
	}
	res := shootRes{Coord: game.Coord{Row: *req.Row, Col: *req.Col}, OpponentShots: []session.Shot{}}
	_, ok := s.update(w, r, func(sess *session.Session, m gameMeta) error {
		o, err := sess.Shoot(game.SideHuman, *req.Row, *req.Col)
		if err != nil {
			return err
		}
		res.Outcome = o
		shots, err := sess.PlayOpponentTurn()
		res.OpponentShots = append(res.OpponentShots, shots...)
		if err != nil {
			return err
		}
		res.Game = viewOf(sess, m)
		return nil
	})
	if !ok {
		return
	}
	won := res.Game.Winner != nil && *res.Game.Winner == game.SideHuman
	s.afterMove(r, res.Game.ID, res.Game.Phase, won, res.Game.ShotsFired)
	_ = json.NewEncoder(w).Encode(res)
}

// ------------------------------ saves --------------------------------------

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	m, ok := s.update(w, r, func(sess *session.Session, m gameMeta) error {
		if m.DailyDate != "" {
			return errDailyNotSaveable
		}
		snap = sess.Snapshot()
		return nil
	})
	if !ok {
		return
	}
	saveID := genID()
	if err := s.saves.Save(r.Context(), saveID, m.Owner, snap); err != nil {
		log.Error().Err(err).Str("gameId", snap.ID).Msg("save snapshot")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"saveId": saveID, "gameId": snap.ID})
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	list, err := s.saves.List(r.Context(), s.ownerID(w, r), 50)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// handleLoadGame restores a saved snapshot as the active match with its
// original ID, replacing that match if it is still active.
func (s *Server) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	owner := s.ownerID(w, r)
	snap, err := s.saves.Load(r.Context(), chi.URLParam(r, "saveID"), owner)
	if err != nil {
		writeGameError(w, err)
		return
	}
	sess, err := session.Restore(snap, session.WithLogger(log.Logger))
	if err != nil {
		writeGameError(w, err)
		return
	}
	if prev, ok := s.lookup(sess.ID, owner); ok {
		m := prev
		m.Recorded = prev.Recorded || sess.IsOver()
		if err := s.store.Save(r.Context(), sess); err != nil {
			writeGameError(w, err)
			return
		}
		s.track(sess.ID, &m)
		_ = json.NewEncoder(w).Encode(viewOf(sess, m))
		return
	}
	s.mu.Lock()
	_, taken := s.games[sess.ID]
	s.mu.Unlock()
	if taken {
		writeError(w, http.StatusConflict, "game_active", errors.New("match is active for another owner"))
		return
	}
	m := s.newMeta(w, r)
	m.Recorded = sess.IsOver()
	if err := s.startMatch(r, sess, m); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess, *m))
}

// ------------------------------- helpers -----------------------------------

func statsGame(sess *session.Session, m *gameMeta) stats.Game {
	g := stats.Game{ID: sess.ID, UserID: m.UserID, PlayerName: sess.PlayerName, DailyDate: m.DailyDate}
	if m.UserID == "" {
		g.AnonymousID = m.Owner
	}
	return g
}

func (s *Server) newMeta(w http.ResponseWriter, r *http.Request) *gameMeta {
	m := &gameMeta{Owner: s.ownerID(w, r), Started: time.Now()}
	if me := userFrom(r); me != nil {
		m.UserID = me.ID
	}
	return m
}

// playerName picks the display name: the request's, else the username, else "Player".
func (s *Server) playerName(r *http.Request, requested string) string {
	if n := strings.TrimSpace(requested); n != "" {
		if len(n) > 32 {
			n = n[:32]
		}
		return n
	}
	if me := userFrom(r); me != nil {
		return me.Username
	}
	return "Player"
}

// writeGameError maps engine and store errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, game.ErrInvalidPlacement):
		writeError(w, http.StatusBadRequest, "invalid_placement", err)
	case errors.Is(err, game.ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, "out_of_bounds", err)
	case errors.Is(err, game.ErrFleetComplete):
		writeError(w, http.StatusConflict, "fleet_complete", err)
	case errors.Is(err, game.ErrNotInSetup):
		writeError(w, http.StatusConflict, "not_in_setup", err)
	case errors.Is(err, game.ErrNotPlaying):
		writeError(w, http.StatusConflict, "not_playing", err)
	case errors.Is(err, game.ErrNotYourTurn):
		writeError(w, http.StatusConflict, "not_your_turn", err)
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "game_over", err)
	case errors.Is(err, errDailyNotSaveable):
		writeError(w, http.StatusConflict, "daily_not_saveable", err)
	case errors.Is(err, game.ErrBadSnapshot):
		writeError(w, http.StatusUnprocessableEntity, "bad_snapshot", err)
	default:
		log.Error().Err(err).Msg("game request failed")
		writeError(w, http.StatusInternalServerError, "internal", nil)
	}
}
