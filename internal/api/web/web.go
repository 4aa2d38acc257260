// Package web holds the embedded HTML templates of the site.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses every page with the helper functions they use.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS -> %w", err)
	}

	return tmpl, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"pageURL": pageURL,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n]) + "…"
}

// pageURL links to the listing with the current view and filters kept.
func pageURL(view, field, q string, page int) string {
	values := url.Values{}
	if view != "" {
		values.Set("view", view)
	}
	if field != "" {
		values.Set("field", field)
	}
	if q != "" {
		values.Set("q", q)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return "/"
	}

	return "/?" + values.Encode()
}
