package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/pkg/money"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"money":      func(d decimal.Decimal) string { return money.Format(d) },
	"dateTime":   func(t time.Time) string { return t.Format("02/01/06 15:04") },
	"bpClass":    apiclient.BloodPressureClass,
	"tempClass":  apiclient.TemperatureClass,
	"oxClass":    apiclient.OxygenClass,
	"scoreClass": apiclient.ScoreClass,
}

// Renderer executes the embedded page templates for echo.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
