package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/listing"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// Handler serves one entity.
type Handler[T Record] struct {
	deps   Deps
	entity *Entity[T]
}

// NewHandler builds the handler for entity.
func NewHandler[T Record](deps Deps, entity *Entity[T]) *Handler[T] {
	if deps.Binder == nil {
		deps.Binder = NewBinder()
	}
	return &Handler[T]{deps: deps, entity: entity}
}

// Mount registers the entity under its base path.
func Mount[T Record](r chi.Router, deps Deps, entity *Entity[T]) *Handler[T] {
	h := NewHandler(deps, entity)
	r.Route(entity.BasePath, h.MountRoutes)
	return h
}

// MountRoutes registers the list, form, detail and modal routes.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.newForm)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/edit", h.editModal)
	r.Post("/{id}/edit", h.update)
	r.Get("/{id}/delete", h.deleteModal)
	r.Post("/{id}/delete", h.remove)
	if h.entity.Routes != nil {
		h.entity.Routes(r)
	}
}

func (h *Handler[T]) query(r *http.Request) listing.Query {
	return listing.ParseQuery(r.URL.Query(), h.deps.pageSize())
}

func (h *Handler[T]) listURL(q listing.Query) string {
	if encoded := q.Encode(); encoded != "" {
		return h.entity.BasePath + "?" + encoded
	}
	return h.entity.BasePath
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	data, err := h.listView(r.Context(), h.query(r), nil)
	if err != nil {
		h.deps.Fail(w, r, err, "/")
		return
	}
	h.deps.Render(w, r, http.StatusOK, h.listTemplate(), h.entity.Plural, data)
}

func (h *Handler[T]) listTemplate() string {
	if h.entity.ListTemplate != "" {
		return h.entity.ListTemplate
	}
	return "pages/entity_list.html"
}

func (h *Handler[T]) listView(ctx context.Context, q listing.Query, modal *ModalView) (ListView, error) {
	e := h.entity
	items, err := e.Store.List(ctx)
	if err != nil {
		return ListView{}, err
	}
	options, err := h.loadOptions(ctx, e.lookupNames())
	if err != nil {
		return ListView{}, err
	}
	filtered := listing.Filter(items, q, func(item T) []string {
		var text []string
		if e.Search != nil {
			text = e.Search(item)
		}
		for _, c := range e.Columns {
			if c.Lookup != "" && c.Value != nil {
				text = append(text, optionLabel(options[c.Lookup], c.Value(item)))
			}
		}
		return text
	}, e.Status)
	page := listing.Paginate(filtered, q.Page, q.PerPage)
	q.Page = page.Page

	data := ListView{
		Entity:    e.meta(),
		Query:     q,
		Pager:     newPager(page, q, e.BasePath),
		Statuses:  e.Statuses,
		PageSizes: listing.PageSizes,
		Modal:     modal,
	}
	if e.ListExtra != nil {
		if data.Extra, err = e.ListExtra(ctx, items); err != nil {
			return ListView{}, err
		}
	}
	for _, c := range e.Columns {
		data.Columns = append(data.Columns, c.Label)
	}
	for _, item := range page.Items {
		row := RowView{ID: item.RecordID(), Label: e.label(item)}
		for _, c := range e.Columns {
			row.Cells = append(row.Cells, cell(c, item, options))
		}
		if e.Links != nil {
			row.Links = e.Links(item)
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func cell[T any](c Column[T], item T, options map[string][]Option) CellView {
	var out CellView
	switch {
	case c.HTML != nil:
		out.HTML = c.HTML(item)
	case c.Value != nil:
		out.Text = c.Value(item)
		if c.Lookup != "" {
			out.Text = optionLabel(options[c.Lookup], out.Text)
		}
	}
	if c.Badge != nil {
		out.Badge = c.Badge(item)
	}
	return out
}

// loadOptions fetches lookups concurrently. Only a signed-out error aborts;
// other failures leave that select empty.
func (h *Handler[T]) loadOptions(ctx context.Context, names []string) (map[string][]Option, error) {
	out := make(map[string][]Option, len(names))
	if len(names) == 0 {
		return out, nil
	}
	results := make([][]Option, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		lookup := h.entity.Lookups[name]
		if lookup == nil {
			continue
		}
		g.Go(func() error {
			opts, err := lookup(gctx)
			if err != nil {
				if apiclient.IsLoggedOut(err) {
					return err
				}
				h.deps.Log().Warn("load lookup", slog.String("entity", h.entity.Key), slog.String("lookup", name), slog.Any("error", err))
				return nil
			}
			results[i] = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

func (h *Handler[T]) show(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	id, ok := IDParam(r, "id")
	if !ok {
		h.deps.RenderError(w, r, http.StatusNotFound, "The record you asked for does not exist.", e.BasePath)
		return
	}
	ctx := r.Context()
	record, err := e.Store.Get(ctx, id)
	if err != nil {
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	options, err := h.loadOptions(ctx, e.lookupNames())
	if err != nil {
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	values, err := h.deps.Binder.Encode(record)
	if err != nil {
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	data := DetailView{Entity: e.meta(), ID: id, Label: e.label(record)}
	for _, f := range e.Fields {
		data.Rows = append(data.Rows, detailRow(f, values.Get(f.Name), options))
	}
	if e.Links != nil {
		data.Links = e.Links(record)
	}
	if e.Detail != nil {
		extra, err := e.Detail(ctx, record)
		if err != nil {
			h.deps.Fail(w, r, err, e.BasePath)
			return
		}
		data.Extra = extra
	}
	tpl := e.ShowTemplate
	if tpl == "" {
		tpl = "pages/entity_show.html"
	}
	h.deps.Render(w, r, http.StatusOK, tpl, data.Label, data)
}

func detailRow(f Field, value string, options map[string][]Option) DetailRow {
	row := DetailRow{Label: f.Label, Value: value}
	switch {
	case f.Kind == KindMarkdown:
		row.HTML = view.Markdown(value)
	case f.Kind == KindCheckbox:
		row.Value = "No"
		if value == "true" {
			row.Value = "Yes"
		}
	case len(f.Choices) > 0:
		row.Value = optionLabel(f.Choices, value)
	case f.Lookup != "":
		row.Value = optionLabel(options[f.Lookup], value)
	}
	return row
}

// FormPage is the data of pages/entity_form.html.
type FormPage struct {
	Entity Meta
	Form   FormView
}

func (h *Handler[T]) newForm(w http.ResponseWriter, r *http.Request) {
	var record T
	if h.entity.New != nil {
		record = h.entity.New()
	}
	values, err := h.deps.Binder.Encode(record)
	if err != nil {
		h.deps.Fail(w, r, err, h.entity.BasePath)
		return
	}
	// Prefill from the query string, e.g. /order-items/new?order=4.
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 && vals[0] != "" {
			values.Set(key, vals[0])
		}
	}
	h.renderForm(w, r, http.StatusOK, values, nil, "", uuid.NewString())
}

func (h *Handler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, values url.Values, errs map[string]string, general, key string) {
	e := h.entity
	options, err := h.loadOptions(r.Context(), e.lookupNames())
	if err != nil {
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	page := FormPage{
		Entity: e.meta(),
		Form: FormView{
			Action:         e.BasePath,
			Submit:         "Register " + strings.ToLower(e.Singular),
			Cancel:         e.BasePath,
			Fields:         buildFields(e.Fields, values, errs, options),
			General:        general,
			IdempotencyKey: key,
		},
	}
	h.deps.Render(w, r, status, "pages/entity_form.html", "New "+strings.ToLower(e.Singular), page)
}

// bind decodes the posted form into a record and collects every field error.
func (h *Handler[T]) bind(r *http.Request) (T, map[string]string, error) {
	var record T
	if err := r.ParseForm(); err != nil {
		return record, nil, err
	}
	errs := make(map[string]string)
	for field, msg := range h.deps.Binder.Decode(&record, r.PostForm) {
		errs[field] = msg
	}
	if h.entity.Prepare != nil {
		if err := h.entity.Prepare(withForm(r.Context(), r.PostForm), &record); err != nil {
			if apiclient.IsLoggedOut(err) {
				return record, nil, err
			}
			errs["general"] = err.Error()
		}
	}
	for field, msg := range h.deps.Binder.Validate(record) {
		if _, exists := errs[field]; !exists {
			errs[field] = msg
		}
	}
	if h.entity.Check != nil {
		for field, msg := range h.entity.Check(record) {
			if _, exists := errs[field]; !exists {
				errs[field] = msg
			}
		}
	}
	return record, errs, nil
}

func splitGeneral(errs map[string]string) (map[string]string, string) {
	general := errs["general"]
	delete(errs, "general")
	if general == "" && len(errs) > 0 {
		general = "Please correct the highlighted fields."
	}
	return errs, general
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	record, errs, err := h.bind(r)
	if err != nil {
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	key := r.PostFormValue(shared.IdempotencyFormField)
	if len(errs) > 0 {
		errs, general := splitGeneral(errs)
		h.renderForm(w, r, http.StatusUnprocessableEntity, r.PostForm, errs, general, key)
		return
	}
	ctx := r.Context()
	if err := h.deps.Idempotency.CheckAndInsert(ctx, key, e.Key); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			h.deps.Redirect(w, r, e.BasePath, shared.FlashInfo, "This form was already submitted.")
			return
		}
		h.deps.Log().Warn("idempotency check", slog.String("entity", e.Key), slog.Any("error", err))
	}
	created, err := e.Store.Create(ctx, record)
	if err != nil {
		if delErr := h.deps.Idempotency.Delete(ctx, key); delErr != nil {
			h.deps.Log().Warn("release idempotency key", slog.Any("error", delErr))
		}
		if errors.Is(err, apiclient.ErrValidation) {
			fields := apiclient.FieldErrors(err)
			if fields == nil {
				fields = map[string]string{}
			}
			h.renderForm(w, r, http.StatusUnprocessableEntity, r.PostForm, fields, apiclient.UserSafeMessage(err), key)
			return
		}
		h.deps.Fail(w, r, err, e.BasePath)
		return
	}
	label := e.label(created)
	h.deps.Record(r, "create", e.Key, created.RecordID(), map[string]any{"label": label})
	h.deps.Redirect(w, r, e.BasePath, shared.FlashSuccess, fmt.Sprintf("%s %q registered.", e.Singular, label))
}

func (h *Handler[T]) editModal(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	q := h.query(r)
	id, ok := IDParam(r, "id")
	if !ok {
		h.deps.RenderError(w, r, http.StatusNotFound, "The record you asked for does not exist.", e.BasePath)
		return
	}
	record, err := e.Store.Get(r.Context(), id)
	if err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	values, err := h.deps.Binder.Encode(record)
	if err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	h.renderModal(w, r, http.StatusOK, q, h.editModalView(q, id, e.label(record), values, nil, ""))
}

func (h *Handler[T]) editModalView(q listing.Query, id int64, label string, values url.Values, errs map[string]string, general string) func(map[string][]Option) *ModalView {
	return func(options map[string][]Option) *ModalView {
		action := h.entity.BasePath + "/" + idString(id) + "/edit"
		if encoded := q.Encode(); encoded != "" {
			action += "?" + encoded
		}
		return &ModalView{
			Kind:  "edit",
			Title: "Edit " + strings.ToLower(h.entity.Singular),
			Label: label,
			ID:    id,
			Form: &FormView{
				Action:  action,
				Submit:  "Save changes",
				Cancel:  h.listURL(q),
				Fields:  buildFields(h.entity.Fields, values, errs, options),
				General: general,
			},
		}
	}
}

func (h *Handler[T]) renderModal(w http.ResponseWriter, r *http.Request, status int, q listing.Query, build func(map[string][]Option) *ModalView) {
	ctx := r.Context()
	options, err := h.loadOptions(ctx, h.entity.lookupNames())
	if err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	data, err := h.listView(ctx, q, build(options))
	if err != nil {
		h.deps.Fail(w, r, err, "/")
		return
	}
	h.deps.Render(w, r, status, h.listTemplate(), h.entity.Plural, data)
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	q := h.query(r)
	id, ok := IDParam(r, "id")
	if !ok {
		h.deps.Redirect(w, r, h.listURL(q), shared.FlashError, "That record no longer exists.")
		return
	}
	record, errs, err := h.bind(r)
	if err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	label := r.PostFormValue("_label")
	if e.CheckUpdate != nil {
		current, err := e.Store.Get(r.Context(), id)
		if err != nil {
			h.deps.Fail(w, r, err, h.listURL(q))
			return
		}
		refused, err := e.CheckUpdate(r.Context(), current, record)
		if err != nil {
			h.deps.Fail(w, r, err, h.listURL(q))
			return
		}
		for field, msg := range refused {
			if _, exists := errs[field]; !exists {
				errs[field] = msg
			}
		}
	}
	if len(errs) > 0 {
		errs, general := splitGeneral(errs)
		h.renderModal(w, r, http.StatusUnprocessableEntity, q, h.editModalView(q, id, label, r.PostForm, errs, general))
		return
	}
	saved, err := e.Store.Update(r.Context(), id, record)
	if err != nil {
		if errors.Is(err, apiclient.ErrValidation) {
			h.renderModal(w, r, http.StatusUnprocessableEntity, q, h.editModalView(q, id, label, r.PostForm, apiclient.FieldErrors(err), apiclient.UserSafeMessage(err)))
			return
		}
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	savedLabel := e.label(saved)
	h.deps.Record(r, "update", e.Key, id, map[string]any{"label": savedLabel})
	h.deps.Redirect(w, r, h.listURL(q), shared.FlashSuccess, fmt.Sprintf("%s %q updated.", e.Singular, savedLabel))
}

func (h *Handler[T]) deleteModal(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	q := h.query(r)
	id, ok := IDParam(r, "id")
	if !ok {
		h.deps.RenderError(w, r, http.StatusNotFound, "The record you asked for does not exist.", e.BasePath)
		return
	}
	record, err := e.Store.Get(r.Context(), id)
	if err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	label := e.label(record)
	h.renderModal(w, r, http.StatusOK, q, func(map[string][]Option) *ModalView {
		action := e.BasePath + "/" + idString(id) + "/delete"
		if encoded := q.Encode(); encoded != "" {
			action += "?" + encoded
		}
		return &ModalView{
			Kind:  "delete",
			Title: "Delete " + strings.ToLower(e.Singular),
			Label: label,
			ID:    id,
			Form:  &FormView{Action: action, Submit: "Delete", Cancel: h.listURL(q)},
		}
	})
}

func (h *Handler[T]) remove(w http.ResponseWriter, r *http.Request) {
	e := h.entity
	q := h.query(r)
	id, ok := IDParam(r, "id")
	if !ok {
		h.deps.Redirect(w, r, h.listURL(q), shared.FlashError, "That record no longer exists.")
		return
	}
	if e.CheckDelete != nil {
		current, err := e.Store.Get(r.Context(), id)
		if err != nil {
			h.deps.Fail(w, r, err, h.listURL(q))
			return
		}
		reason, err := e.CheckDelete(r.Context(), current)
		if err != nil {
			h.deps.Fail(w, r, err, h.listURL(q))
			return
		}
		if reason != "" {
			h.deps.Redirect(w, r, h.listURL(q), shared.FlashWarning, reason)
			return
		}
	}
	if err := e.Store.Delete(r.Context(), id); err != nil {
		h.deps.Fail(w, r, err, h.listURL(q))
		return
	}
	label := r.PostFormValue("_label")
	h.deps.Record(r, "delete", e.Key, id, map[string]any{"label": label})
	msg := e.Singular + " deleted."
	if label != "" {
		msg = fmt.Sprintf("%s %q deleted.", e.Singular, label)
	}
	h.deps.Redirect(w, r, h.listURL(q), shared.FlashSuccess, msg)
}
