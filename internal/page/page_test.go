package page

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zakolko/zakolko/internal/config"
)

func TestElapsed(t *testing.T) {
	since := time.Date(2021, time.July, 6, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"same instant", since, "0 dní a 0 hodín"},
		{"under an hour", since.Add(59 * time.Minute), "0 dní a 0 hodín"},
		{"hours only", since.Add(5*time.Hour + 30*time.Minute), "0 dní a 5 hodín"},
		{"days and hours", since.Add(3*24*time.Hour + 7*time.Hour), "3 dní a 7 hodín"},
		{"rounds up across the hour", since.Add(2*time.Hour - 400*time.Millisecond), "0 dní a 2 hodín"},
		{"rounds down below the hour", since.Add(2*time.Hour - 600*time.Millisecond), "0 dní a 1 hodín"},
		{"before reference", since.Add(-time.Hour), "0 dní a 0 hodín"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Elapsed(since, tt.now); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.DefaultPageConfig(), "/api/predict")
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	r.now = func() time.Time { return r.cfg.Since.Add(10*24*time.Hour + 2*time.Hour) }
	return r
}

func TestRenderUsesConfiguredIdentifiers(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`<form id="byt-form" action="/api/predict" method="post">`,
		`<div id="pred-box" class="prediction" style="display: none">`,
		`<p id="myData"></p>`,
		`<span id="time-elapsed">10 dní a 2 hodín</span>`,
		`data-header-ratio="1.5"`,
		`name="uzit_plocha"`,
		`<option value="Novostavba">Novostavba</option>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %s", want)
		}
	}
}

func TestRenderEveryField(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, f := range DefaultFields() {
		if !strings.Contains(buf.String(), `name="`+f.Name+`"`) {
			t.Errorf("Expected input for field %s", f.Name)
		}
	}
}

func TestServeHTTP(t *testing.T) {
	r := newTestRenderer(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected text/html, got %q", ct)
	}
}
