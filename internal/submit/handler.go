// Package submit turns a form submission into a prediction request and
// renders the answer into the page's result targets.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TextTarget receives the rendered result message
type TextTarget interface {
	SetText(text string)
}

// VisibilityTarget is the result container, hidden until a prediction arrives
type VisibilityTarget interface {
	Show()
}

// Form is a submitted form: its action URL and named field values
type Form struct {
	Action string
	Fields url.Values
}

// Payload flattens the form fields. For repeated names the last value wins.
func (f Form) Payload() models.FormPayload {
	payload := make(models.FormPayload, len(f.Fields))
	for name, values := range f.Fields {
		if len(values) == 0 {
			payload[name] = ""
			continue
		}
		payload[name] = values[len(values)-1]
	}
	return payload
}

// Handler performs one request/response exchange per submission
type Handler struct {
	client      *http.Client
	contentType string
	printer     *message.Printer
	logger      *log.Logger

	// mu pairs the message write with the visibility change
	mu      sync.Mutex
	message TextTarget
	box     VisibilityTarget
}

// Option customizes a Handler
type Option func(*Handler)

// WithClient sets the HTTP client used for submissions
func WithClient(c *http.Client) Option {
	return func(h *Handler) { h.client = c }
}

// WithLogger sets the logger that receives submission diagnostics
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a handler bound to its result targets
func NewHandler(cfg config.SubmitConfig, msg TextTarget, box VisibilityTarget, opts ...Option) *Handler {
	contentType := cfg.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	tag := language.AmericanEnglish
	if cfg.Locale != "" {
		tag = language.Make(cfg.Locale)
	}

	h := &Handler{
		client:      http.DefaultClient,
		contentType: contentType,
		printer:     message.NewPrinter(tag),
		logger:      log.Default(),
		message:     msg,
		box:         box,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle submits the form and renders the prediction. On failure the
// targets are left untouched and the error is logged and returned.
func (h *Handler) Handle(ctx context.Context, form Form) (*models.PredictionResponse, error) {
	resp, err := h.post(ctx, form)
	if err != nil {
		h.logger.Printf("Error submitting form to %s: %v", form.Action, err)
		return nil, err
	}

	h.logger.Printf("Prediction received from %s: %v", form.Action, resp.Prediction)
	h.render(resp.Prediction)
	return resp, nil
}

func (h *Handler) post(ctx context.Context, form Form) (*models.PredictionResponse, error) {
	body, err := json.Marshal(form.Payload())
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.Action, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", h.contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{Status: resp.StatusCode, Detail: string(data)}
	}

	var decoded struct {
		Prediction *float64 `json:"prediction"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}
	if decoded.Prediction == nil {
		return nil, &ParseError{Err: errors.New("missing prediction field")}
	}

	return &models.PredictionResponse{Prediction: *decoded.Prediction}, nil
}

func (h *Handler) render(prediction float64) {
	text := FormatMessage(h.printer, prediction)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.message.SetText(text)
	h.box.Show()
}
