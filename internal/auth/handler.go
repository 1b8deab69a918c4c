package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	vault          *shared.TokenVault
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, vault *shared.TokenVault) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		vault:          vault,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Username string
	Next     string
	Errors   map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	next := SafeNext(r.URL.Query().Get("next"))
	if sess != nil && sess.Username() != "" {
		if tokens, _ := SessionTokens(sess, h.vault).Load(r.Context()); !tokens.Empty() {
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{Next: next, Errors: map[string]string{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := loginPageData{Username: form.Username, Next: SafeNext(r.PostFormValue("next")), Errors: make(map[string]string)}
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				data.Errors[fieldErr.Field()] = loginMessage(fieldErr)
			}
		}
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	// Fresh identifier before any credential lands in the session.
	h.sessionManager.Renew(sess)
	h.csrfManager.Rotate(sess)
	store := SessionTokens(sess, h.vault)
	if err := h.service.Authenticate(r.Context(), store, form.Username, form.Password); err != nil {
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			data.Errors["general"] = "Invalid username or password."
			h.renderLogin(w, r, http.StatusUnauthorized, data)
			return
		}
		h.logger.Error("login failed", slog.String("username", form.Username), slog.Any("error", err))
		data.Errors["general"] = "The Vivionix API is unavailable. Please try again shortly."
		h.renderLogin(w, r, http.StatusBadGateway, data)
		return
	}
	sess.SetUsername(form.Username)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Welcome back, " + form.Username + "."})
	h.logger.Info("user signed in", slog.String("username", form.Username))
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.SignOut(r.Context(), SessionTokens(sess, h.vault), sess.Username()); err != nil {
			h.logger.Warn("sign out", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	// The token may have rotated during this request.
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if token, err := h.csrfManager.EnsureToken(sess); err == nil {
			r = r.WithContext(shared.ContextWithCSRFToken(r.Context(), token))
		}
	}
	if err := h.templates.RenderStatus(w, status, "pages/login.html", view.Page(r, "Sign in", data)); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func loginMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "max":
		return fe.Field() + " is too long."
	default:
		return fe.Field() + " is invalid."
	}
}

// SafeNext keeps post-login redirects on this site.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	if strings.HasPrefix(next, "/auth/") {
		return "/"
	}
	return next
}

// ShowLoginForTest exposes showLogin for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes handleLogin for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
