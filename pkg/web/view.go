package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/chains"
	"github.com/sherpas/supply/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageData feeds the "page" template. Result is never nil.
type PageData struct {
	AppName string
	Chain   string
	Chains  []chains.Descriptor
	SSR     bool
	Wallet  config.WalletOptions
	Result  *types.ReadResult
}

// Renderer adapts the embedded templates to echo.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{templates: templates}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func orPending(result *types.ReadResult) *types.ReadResult {
	if result == nil {
		return types.Pending("", 0)
	}
	return result
}

// RenderSupply writes the supply section for result. A nil result renders as pending.
func RenderSupply(w io.Writer, result *types.ReadResult) error {
	return templates.ExecuteTemplate(w, "supply", orPending(result))
}

// SupplyText is the plain text line of the supply section.
func SupplyText(result *types.ReadResult) string {
	switch {
	case result.IsSuccess():
		return fmt.Sprintf("Goods Supply: %s", result.Value)
	case result.IsError():
		return fmt.Sprintf("Goods Supply: unavailable (%s)", result.Reason)
	default:
		return "Goods Supply: Loading…"
	}
}
