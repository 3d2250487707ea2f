// internal/httpserver/auth.go
//
// Player accounts and the routes that need them.
//   - /auth/signup, /auth/login, /auth/logout, /auth/me
//   - /stats/me, /games/mine (signed in), /stats/leaderboard (public)
//
// A signed-in player carries an HS256 token (cookie or Bearer header) whose
// subject is the users.id. Guests get a long-lived anonymous cookie instead;
// their matches and saves are filed under it until they sign up or log in.

package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/battleship/internal/stats"
)

var (
	errUsernameTaken = errors.New("username taken")
	errNoToken       = errors.New("no token")
	errBadToken      = errors.New("invalid token")

	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{3,24}$`)
)

const anonCookieName = "battleship_anon"

// authUser is the signed-in player attached to a request.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

func userFrom(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// tokenClaims is the JWT payload. Subject holds the user ID.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireAuth()).Get("/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(userFrom(r))
		})
	})
	s.r.Get("/stats/leaderboard", s.handleLeaderboard)
	s.r.With(s.requireAuth()).Get("/stats/me", s.handleMyStats)
	s.r.With(s.requireAuth()).Get("/games/mine", s.handleMyGames)
}

// ------------------------------ handlers -----------------------------------

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return c, false
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, true
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	u, err := s.createUser(r.Context(), c.Username, c.Password)
	switch {
	case errors.Is(err, errUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", nil)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid_signup", err)
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	u, err := s.userByName(r.Context(), c.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cfg.CookieName, "", time.Time{}, -1)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// signIn issues the auth cookie, moves the guest's matches onto the account
// and replies with the account.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *userRow) {
	tok, exp, err := s.signToken(u)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed", nil)
		return
	}
	s.setCookie(w, s.cfg.CookieName, tok, exp, 0)

	anon := s.ensureAnonID(w, r)
	if err := s.stats.ClaimAnonymous(r.Context(), anon, u.ID); err != nil {
		log.Warn().Err(err).Str("user", u.ID).Msg("claim guest games")
	}
	s.mu.Lock()
	for _, m := range s.games {
		if m.Owner == anon {
			m.Owner, m.UserID = u.ID, u.ID
		}
	}
	s.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	p, err := s.stats.Get(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.stats.GamesFor(r.Context(), userFrom(r).ID, 50)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(games)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	top, err := s.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string][]stats.Player{"top": top})
}

// ----------------------------- middleware ----------------------------------

// authenticate resolves the request's token to a live account.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	raw := s.tokenFrom(r)
	if raw == "" {
		return nil, errNoToken
	}
	var c tokenClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || c.Subject == "" {
		return nil, errBadToken
	}
	u, err := s.userByID(r.Context(), c.Subject)
	if err != nil {
		return nil, errBadToken
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// withOptionalAuth attaches the account when the token is valid and lets
// everyone else through as a guest.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth answers 401 unless the request carries a valid token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// tokenFrom reads "Authorization: Bearer <token>", else the auth cookie.
func (s *Server) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ownerID is the identity matches and saves are filed under: the user ID
// when signed in, else the anonymous cookie.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if u := userFrom(r); u != nil {
		return u.ID
	}
	return s.ensureAnonID(w, r)
}

func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	s.setCookie(w, anonCookieName, id, time.Now().Add(180*24*time.Hour), 0)
	return id
}

// --------------------------- tokens & cookies ------------------------------

func (s *Server) signToken(u *userRow) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString([]byte(s.cfg.JWTSecret))
	return signed, exp, err
}

// setCookie writes an HttpOnly cookie; maxAge < 0 deletes it.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, maxAge int) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
		MaxAge:   maxAge,
	}
	if s.cfg.Production {
		// the client is served from another origin
		c.Secure, c.SameSite = true, http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}

// genID returns 22 URL-safe characters from 16 random bytes.
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// -------------------------------- users ------------------------------------

type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func (s *Server) createUser(ctx context.Context, username, password string) (*userRow, error) {
	if !usernameRE.MatchString(username) {
		return nil, errors.New("username must be 3 to 24 letters, digits or underscores")
	}
	// bcrypt ignores bytes past 72
	if len(password) < 8 || len(password) > 72 {
		return nil, errors.New("password must be 8 to 72 bytes")
	}
	if _, err := s.userByName(ctx, username); err == nil {
		return nil, errUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{ID: genID(), Username: username, PasswordHash: string(hash), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) userByName(ctx context.Context, username string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username=?`, username))
}

func (s *Server) userByID(ctx context.Context, id string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*userRow, error) {
	var u userRow
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}
