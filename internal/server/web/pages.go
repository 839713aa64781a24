package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type indexData struct {
	Site  *models.Site
	Admin bool
}

type adminData struct {
	Email  string
	Upload uploadLimits
}

// uploadLimits are the relay's limits, checked in the browser before sending.
type uploadLimits struct {
	MaxBytes int64
	MaxLabel string
	Types    []string
}

func newUploadLimits() uploadLimits {
	types := make([]string, 0, len(common.AcceptedUploadTypes))
	for ct := range common.AcceptedUploadTypes {
		types = append(types, ct)
	}
	sort.Strings(types)
	return uploadLimits{
		MaxBytes: common.MaxUploadBytes,
		MaxLabel: common.FormatSize(common.MaxUploadBytes),
		Types:    types,
	}
}

// pages holds one template set per page, each sharing layout.html.
type pages struct {
	set map[string]*template.Template
}

var funcs = template.FuncMap{
	"period": period,
	"join":   strings.Join,
}

func loadPages() (*pages, error) {
	p := &pages{set: map[string]*template.Template{}}
	for _, name := range []string{"index.html", "login.html", "admin.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.set[name] = t
	}
	return p, nil
}

func (p *pages) execute(w io.Writer, name string, data any) error {
	t, ok := p.set[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// period renders "Jan 2020 – Present" style ranges.
func period(start time.Time, end *time.Time) string {
	if end == nil {
		return start.Format("Jan 2006") + " – Present"
	}
	return start.Format("Jan 2006") + " – " + end.Format("Jan 2006")
}
