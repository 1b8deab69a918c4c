package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

const timeoutMessage = "Your session has timed out. Please sign in again."

// Guard protects routes that need a signed-in user.
type Guard struct {
	logger      *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time
}

// NewGuard builds a Guard enforcing idleTimeout between requests.
func NewGuard(logger *slog.Logger, idleTimeout time.Duration, now func() time.Time) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Guard{logger: logger, idleTimeout: idleTimeout, now: now}
}

// Require redirects anonymous and idle sessions to the login page and
// refreshes the activity timestamp for everyone else.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := shared.SessionFromContext(ctx)
		store := apiclient.TokenStoreFromContext(ctx)
		if sess == nil || store == nil {
			redirectToLogin(w, r)
			return
		}
		tokens, err := store.Load(ctx)
		if err != nil || tokens.Empty() {
			redirectToLogin(w, r)
			return
		}
		now := g.now()
		if tokens.Idle(now, g.idleTimeout) {
			g.logger.Info("session idle timeout", slog.String("username", sess.Username()))
			_ = store.Clear(ctx)
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: timeoutMessage})
			redirectToLogin(w, r)
			return
		}
		tokens.LastActivity = now
		if err := store.Save(ctx, tokens); err != nil {
			g.logger.Warn("touch session activity", slog.Any("error", err))
		}
		next.ServeHTTP(w, r)
	})
}

// HandleLoggedOut redirects to the login page when err means the API session
// ended and reports whether it did so.
func HandleLoggedOut(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsLoggedOut(err) {
		return false
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		msg := "Your session has expired. Please sign in again."
		if errors.Is(err, apiclient.ErrSessionTimeout) {
			msg = timeoutMessage
		}
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: msg})
	}
	redirectToLogin(w, r)
	return true
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/auth/login"
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
