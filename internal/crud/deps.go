package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/auth"
	"github.com/vivionix/vivionix-admin/internal/listing"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// Deps are the collaborators every resource handler needs.
type Deps struct {
	Logger      *slog.Logger
	Templates   *view.Engine
	Binder      *Binder
	Activity    *shared.ActivityLog
	Idempotency *shared.IdempotencyStore
	PageSize    int
}

// Log returns the configured logger or the default one.
func (d Deps) Log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) pageSize() int {
	if d.PageSize <= 0 {
		return listing.DefaultPerPage
	}
	return d.PageSize
}

// Render writes a page, logging template failures.
func (d Deps) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := d.Templates.RenderStatus(w, status, name, view.Page(r, title, data)); err != nil {
		d.Log().Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ErrorPage is the data of pages/error.html.
type ErrorPage struct {
	Status  int
	Message string
	Back    string
}

// RenderError shows the error page with status.
func (d Deps) RenderError(w http.ResponseWriter, r *http.Request, status int, message, back string) {
	d.Render(w, r, status, "pages/error.html", http.StatusText(status), ErrorPage{Status: status, Message: message, Back: back})
}

// Flash queues a message for the next page.
func (d Deps) Flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

// Redirect flashes and redirects with 303.
func (d Deps) Redirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	if message != "" {
		d.Flash(r, kind, message)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Fail maps an API error onto the response. Reads render an error page;
// writes flash and redirect to back.
func (d Deps) Fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if auth.HandleLoggedOut(w, r, err) {
		return
	}
	write := r.Method != http.MethodGet && r.Method != http.MethodHead
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, apiclient.ErrNotFound):
		if write {
			d.Redirect(w, r, back, shared.FlashError, "That record no longer exists.")
			return
		}
		d.RenderError(w, r, http.StatusNotFound, "The record you asked for does not exist.", back)
	case errors.Is(err, apiclient.ErrForbidden):
		if write {
			d.Redirect(w, r, back, shared.FlashError, "You do not have permission to do that.")
			return
		}
		d.RenderError(w, r, http.StatusForbidden, "You do not have permission to view this page.", "/")
	default:
		d.Log().Error("api request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		if write {
			d.Redirect(w, r, back, shared.FlashError, apiclient.UserSafeMessage(err))
			return
		}
		d.RenderError(w, r, http.StatusBadGateway, apiclient.UserSafeMessage(err), back)
	}
}

// Record writes an activity entry for the signed-in user.
func (d Deps) Record(r *http.Request, action, entity string, id int64, meta map[string]any) {
	actor := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		actor = sess.Username()
	}
	entityID := ""
	if id > 0 {
		entityID = strconv.FormatInt(id, 10)
	}
	d.Activity.RecordDetached(r.Context(), shared.ActivityEntry{Actor: actor, Action: action, Entity: entity, EntityID: entityID, Meta: meta})
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
