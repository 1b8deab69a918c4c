package view

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
	printer  = message.NewPrinter(language.English)
)

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"money":          FormatMoney,
		"number":         FormatNumber,
		"markdown":       Markdown,
		"title":          Title,
		"hasPrefix":      strings.HasPrefix,
		"query":          func(v url.Values) template.URL { return template.URL(v.Encode()) },
		"add":            func(a, b int) int { return a + b },
		"dict":           dict,
	}
}

// FormatDate renders a calendar date; zero and nil values render empty.
func FormatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatDate(*t)
	case shared.Date:
		return FormatDate(t.Time)
	case *shared.Date:
		if t == nil {
			return ""
		}
		return FormatDate(t.Time)
	default:
		return ""
	}
}

// FormatDateTime renders a timestamp in minutes precision.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

// FormatMoney renders an amount in Indian rupees with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return printer.Sprintf("%s %.2f", currency.INR, d.Round(2).InexactFloat64())
}

// FormatNumber renders a decimal with thousands grouping, trimming trailing zeros.
func FormatNumber(d decimal.Decimal) string {
	return printer.Sprint(d.InexactFloat64())
}

// Markdown converts user authored markdown into sanitised HTML.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// Sanitize strips markup from free text before it is sent to the API.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s)))
}

// Title turns a snake_case status into display text.
func Title(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// dict builds a map from alternating keys and values so partials can take
// more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
