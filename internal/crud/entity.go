// Package crud renders the list, registration form, detail page and modal
// edit/delete flows shared by every resource managed through the console.
package crud

import (
	"context"
	"html/template"

	"github.com/go-chi/chi/v5"
)

// Record is implemented by every resource model.
type Record interface {
	RecordID() int64
}

// FieldKind selects the input widget for a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindTextarea FieldKind = "textarea"
	KindMarkdown FieldKind = "markdown"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
)

// Field describes one form input. Name matches the model's form tag.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Help     string
	Step     string
	// Lookup names an entry of Entity.Lookups feeding a select.
	Lookup string
	// Choices is a fixed option list for selects that need no lookup.
	Choices []Option
}

// Column is one table column.
type Column[T any] struct {
	Label string
	Value func(T) string
	// HTML renders trusted markup instead of Value.
	HTML func(T) template.HTML
	// Badge returns a CSS modifier; the cell renders as a badge when non-empty.
	Badge func(T) string
	// Lookup resolves Value through Entity.Lookups (an id shown as a name).
	Lookup string
}

// Link is an extra action rendered next to a record.
type Link struct {
	Label string
	URL   string
}

// Entity describes a resource and how the console presents it.
type Entity[T Record] struct {
	Key      string
	Singular string
	Plural   string
	BasePath string
	Store    Store[T]

	Columns []Column[T]
	Fields  []Field
	Lookups map[string]Lookup

	// Search returns the text matched by the search box.
	Search func(T) []string
	// Status returns the value filtered by the status facet.
	Status   func(T) string
	Statuses []string
	// Label names a record in headings, modals and flashes.
	Label func(T) string

	// New returns the defaults for the registration form.
	New func() T
	// Prepare normalises a bound record before validation.
	Prepare func(ctx context.Context, record *T) error
	// Check adds entity rules beyond struct tags, keyed by form field.
	Check func(record T) map[string]string
	// CheckUpdate compares an edit with the stored record. Returned messages
	// are keyed by form field; "general" shows above the form.
	CheckUpdate func(ctx context.Context, current, next T) (map[string]string, error)
	// CheckDelete returns a non-empty reason when current must not be deleted.
	CheckDelete func(ctx context.Context, current T) (string, error)

	// ListTemplate overrides pages/entity_list.html.
	ListTemplate string
	// ListExtra derives page-level data (e.g. a summary) from the unfiltered collection.
	ListExtra func(ctx context.Context, items []T) (any, error)
	// ShowTemplate overrides pages/entity_show.html.
	ShowTemplate string
	// Detail loads extra data for the detail page.
	Detail func(ctx context.Context, record T) (any, error)
	// Links adds per-record actions.
	Links func(record T) []Link
	// Routes mounts entity specific endpoints under BasePath.
	Routes func(r chi.Router)
}

// Meta is the template-facing summary of an entity.
type Meta struct {
	Key      string
	Singular string
	Plural   string
	BasePath string
}

func (e *Entity[T]) meta() Meta {
	return Meta{Key: e.Key, Singular: e.Singular, Plural: e.Plural, BasePath: e.BasePath}
}

func (e *Entity[T]) label(record T) string {
	if e.Label != nil {
		if l := e.Label(record); l != "" {
			return l
		}
	}
	return e.Singular
}

func (e *Entity[T]) lookupNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range e.Fields {
		if f.Lookup != "" && !seen[f.Lookup] {
			seen[f.Lookup] = true
			names = append(names, f.Lookup)
		}
	}
	for _, c := range e.Columns {
		if c.Lookup != "" && !seen[c.Lookup] {
			seen[c.Lookup] = true
			names = append(names, c.Lookup)
		}
	}
	return names
}
