// Package page renders the valuation form page.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/zakolko/zakolko/internal/config"
)

//go:embed templates/index.html
var templatesFS embed.FS

// Renderer renders the index page from configuration
type Renderer struct {
	tpl    *pongo2.Template
	cfg    config.PageConfig
	action string
	fields []Field
	now    func() time.Time
}

// NewRenderer compiles the page template. action is the URL the form posts to.
func NewRenderer(cfg config.PageConfig, action string) (*Renderer, error) {
	src, err := templatesFS.ReadFile("templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read page template: %w", err)
	}

	tpl, err := pongo2.FromString(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to compile page template: %w", err)
	}

	return &Renderer{
		tpl:    tpl,
		cfg:    cfg,
		action: action,
		fields: DefaultFields(),
		now:    time.Now,
	}, nil
}

// Render writes the page
func (r *Renderer) Render(w io.Writer) error {
	ctx := pongo2.Context{
		"form_id":      r.cfg.FormID,
		"message_id":   r.cfg.MessageID,
		"box_id":       r.cfg.BoxID,
		"elapsed_id":   r.cfg.ElapsedID,
		"header_ratio": strconv.FormatFloat(r.cfg.HeaderRatio, 'f', -1, 64),
		"action":       r.action,
		"fields":       r.fields,
		"elapsed":      Elapsed(r.cfg.Since, r.now()),
	}
	return r.tpl.ExecuteWriter(ctx, w)
}

// ServeHTTP renders the page for each request
func (r *Renderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "Page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}
