package view

import (
	"net/http"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Page collects the per-request layout values and pops pending flashes.
func Page(r *http.Request, title string, data any) TemplateData {
	ctx := r.Context()
	td := TemplateData{
		Title:       title,
		CSRFToken:   shared.CSRFTokenFromContext(ctx),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess := shared.SessionFromContext(ctx); sess != nil {
		td.Flashes = sess.PopFlashes()
		td.User = sess.Username()
	}
	return td
}
