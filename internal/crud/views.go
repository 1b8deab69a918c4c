package crud

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/vivionix/vivionix-admin/internal/listing"
)

// FieldView is a form input ready for rendering.
type FieldView struct {
	Name     string
	Label    string
	Kind     FieldKind
	Value    string
	Checked  bool
	Required bool
	Help     string
	Step     string
	Options  []Option
	Error    string
}

// FormView is a rendered form: registration page or edit modal.
type FormView struct {
	Action         string
	Submit         string
	Cancel         string
	Fields         []FieldView
	General        string
	IdempotencyKey string
}

// CellView is one table cell.
type CellView struct {
	Text  string
	HTML  template.HTML
	Badge string
}

// RowView is one table row.
type RowView struct {
	ID    int64
	Label string
	Cells []CellView
	Links []Link
}

// PageLink is one pagination link.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pager is the template-facing pagination state.
type Pager struct {
	Page       int
	TotalPages int
	Total      int
	From       int
	To         int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

// ModalView is the edit or delete dialog drawn over the list.
type ModalView struct {
	Kind  string
	Title string
	Label string
	ID    int64
	Form  *FormView
}

// ListView is the data of pages/entity_list.html.
type ListView struct {
	Entity    Meta
	Columns   []string
	Rows      []RowView
	Query     listing.Query
	Pager     Pager
	Statuses  []string
	PageSizes []int
	Modal     *ModalView
	Extra     any
}

// DetailRow is one label/value pair on the detail page.
type DetailRow struct {
	Label string
	Value string
	HTML  template.HTML
}

// DetailView is the data of the detail page.
type DetailView struct {
	Entity Meta
	ID     int64
	Label  string
	Rows   []DetailRow
	Links  []Link
	Extra  any
}

func newPager[T any](page listing.Page[T], q listing.Query, basePath string) Pager {
	link := func(n int) string {
		return basePath + "?" + q.WithPage(n).Encode()
	}
	p := Pager{Page: page.Page, TotalPages: page.TotalPages, Total: page.Total, From: page.From, To: page.To}
	if page.HasPrev() {
		p.PrevURL = link(page.PrevPage())
	}
	if page.HasNext() {
		p.NextURL = link(page.NextPage())
	}
	for _, n := range page.Links {
		p.Links = append(p.Links, PageLink{Number: n, URL: link(n), Current: n == page.Page})
	}
	return p
}

func buildFields(fields []Field, values url.Values, errs map[string]string, options map[string][]Option) []FieldView {
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		fv := FieldView{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     f.Kind,
			Value:    values.Get(f.Name),
			Required: f.Required,
			Help:     f.Help,
			Step:     f.Step,
			Error:    errs[f.Name],
		}
		if fv.Kind == "" {
			fv.Kind = KindText
		}
		if fv.Kind == KindCheckbox {
			fv.Checked = fv.Value == "true"
		}
		if fv.Kind == KindNumber && fv.Step == "" {
			fv.Step = "any"
		}
		switch {
		case len(f.Choices) > 0:
			fv.Options = f.Choices
		case f.Lookup != "":
			fv.Options = options[f.Lookup]
		}
		out = append(out, fv)
	}
	return out
}

func optionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	if value == "" || value == "0" {
		return ""
	}
	return "#" + value
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
