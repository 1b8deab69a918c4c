package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler serves the Gotenberg health endpoint and streams documents.
type Handler struct {
	docs   *Documents
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(docs *Documents, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{docs: docs, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if !h.docs.PDFEnabled() {
		http.Error(w, "pdf rendering not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.docs.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Serve writes a document. Without Gotenberg, or with ?format=html, the
// printable HTML is served instead of a PDF. A Gotenberg failure is a 502.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, filename string, html func(io.Writer) error, pdf func(context.Context) ([]byte, error)) {
	if !h.docs.PDFEnabled() || r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := html(&buf); err != nil {
			h.logger.Error("render document", slog.String("file", filename), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
		return
	}
	out, err := pdf(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error("render pdf", slog.String("file", filename), slog.Any("error", err))
		http.Error(w, "The PDF service is unavailable. Try again shortly.", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Documents exposes the renderer.
func (h *Handler) Documents() *Documents {
	return h.docs
}
