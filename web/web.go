// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses every page with the shared helpers. Currency prefixes money values.
func Templates(currency string) (*template.Template, error) {
	return template.New("").Funcs(FuncMap(currency)).ParseFS(templatesFS, "templates/*.html")
}

// FuncMap returns the helpers available to page templates.
func FuncMap(currency string) template.FuncMap {
	return template.FuncMap{
		"money":   func(d decimal.Decimal) string { return FormatMoney(currency, d) },
		"date":    formatDate,
		"datePtr": formatDatePtr,
		"deref":   deref,
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"lower":   strings.ToLower,
		"overdue": func(due time.Time, paid bool) bool {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			return !paid && due.Before(today)
		},
	}
}

// FormatMoney renders an amount with two decimals and thousands separators.
func FormatMoney(currency string, d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		whole, frac = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if currency != "" {
		out = currency + " " + out
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
