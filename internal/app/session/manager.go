package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockwatch/internal/pkg/auth/jwt"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/randx"
)

// CookieName is the name of the session cookie.
const CookieName = "stockwatch_session"

type contextKey string

const ctxSessionKey contextKey = "session"

// current is the session resolved for a request.
type current struct {
	id     string
	userID int64
}

// Options configure a Manager.
type Options struct {
	// Secret signs the session cookie.
	Secret string
	// TTL bounds both the token and the stored record.
	TTL time.Duration
	// SecureCookie marks the cookie Secure; enable behind HTTPS.
	SecureCookie bool
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, opts Options) *Manager {
	return &Manager{
		store:  store,
		secret: opts.Secret,
		ttl:    opts.TTL,
		secure: opts.SecureCookie,
	}
}

// Start creates a session for userID and sets the cookie. A session already
// attached to r is destroyed first so the id changes on every login.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, userID int64) error {
	ctx := r.Context()

	if cur, ok := ctx.Value(ctxSessionKey).(*current); ok {
		if err := m.store.Delete(ctx, cur.id); err != nil {
			logx.FromContext(ctx).Warn().Err(err).Msg("Failed to drop previous session")
		}
	}

	id, err := randx.SessionID()
	if err != nil {
		return err
	}

	if err := m.store.Save(ctx, id, Data{UserID: userID, CreatedAt: time.Now()}, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	token, err := jwt.GenerateToken(id, m.secret, m.ttl)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load resolves the session cookie and attaches the session to the request
// context. Requests with a missing, invalid or expired session continue
// anonymously.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := jwt.ParseToken(cookie.Value, m.secret)
		if err != nil || !randx.IsValidSessionID(claims.SessionID) {
			logx.FromContext(r.Context()).Debug().Err(err).Msg("Invalid session token, treating as anonymous")
			next.ServeHTTP(w, r)
			return
		}

		data, err := m.store.Get(r.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logx.FromContext(r.Context()).Error().Err(err).Msg("Session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionKey, &current{id: claims.SessionID, userID: data.UserID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects anonymous requests to /login.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Destroy deletes the request's session record, if any, and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cur, ok := r.Context().Value(ctxSessionKey).(*current); ok {
		err = m.store.Delete(r.Context(), cur.id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// UserID returns the authenticated user of ctx.
func UserID(ctx context.Context) (int64, bool) {
	cur, ok := ctx.Value(ctxSessionKey).(*current)
	if !ok {
		return 0, false
	}
	return cur.userID, true
}
