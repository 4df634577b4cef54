package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/models"
)

// memoryView records target mutations the way a document would
type memoryView struct {
	mu      sync.Mutex
	text    string
	visible bool
	writes  int
}

func (v *memoryView) SetText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text = text
	v.writes++
}

func (v *memoryView) Show() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = true
	v.writes++
}

func (v *memoryView) state() (string, bool, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text, v.visible, v.writes
}

func newTestHandler(t *testing.T) (*Handler, *memoryView, *bytes.Buffer) {
	t.Helper()
	view := &memoryView{}
	logs := &bytes.Buffer{}
	h := NewHandler(config.DefaultSubmitConfig(), view, view,
		WithLogger(log.New(logs, "", 0)))
	return h, view, logs
}

func assertUntouched(t *testing.T, view *memoryView) {
	t.Helper()
	text, visible, writes := view.state()
	if writes != 0 || text != "" || visible {
		t.Errorf("Expected no target mutation, got text=%q visible=%v writes=%d", text, visible, writes)
	}
}

func TestRequestBodyAndHeaders(t *testing.T) {
	var (
		gotBody   models.FormPayload
		gotCT     string
		gotAccept string
		gotMethod string
		decodeErr error
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		decodeErr = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"prediction": 1}`)
	}))
	defer srv.Close()

	h, _, _ := newTestHandler(t)
	form := Form{
		Action: srv.URL,
		Fields: url.Values{
			"uzit_plocha": {"62"},
			"pocet_izieb": {"3"},
			"mesto":       {"Bratislava-Ružinov"},
			"balkon":      {""},
		},
	}
	if _, err := h.Handle(context.Background(), form); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if decodeErr != nil {
		t.Fatalf("Body is not a JSON object of strings: %v", decodeErr)
	}
	want := models.FormPayload{
		"uzit_plocha": "62",
		"pocet_izieb": "3",
		"mesto":       "Bratislava-Ružinov",
		"balkon":      "",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %s", gotMethod)
	}
	if gotCT != "text/plain" {
		t.Errorf("Expected Content-Type text/plain, got %q", gotCT)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept application/json, got %q", gotAccept)
	}
}

func TestPayloadLastValueWins(t *testing.T) {
	form := Form{Fields: url.Values{"stav": {"Pôvodný stav", "Novostavba"}}}
	got := form.Payload()
	if diff := cmp.Diff(models.FormPayload{"stav": "Novostavba"}, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessRendersMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"prediction": 123456}`)
	}))
	defer srv.Close()

	h, view, _ := newTestHandler(t)
	resp, err := h.Handle(context.Background(), Form{Action: srv.URL})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if resp.Prediction != 123456 {
		t.Errorf("Expected prediction 123456, got %v", resp.Prediction)
	}

	text, visible, _ := view.state()
	want := "Aktuálna odhadovaná hodnota bytu je: 123,456 €."
	if text != want {
		t.Errorf("Expected message %q, got %q", want, text)
	}
	if !visible {
		t.Error("Expected result container to be visible")
	}
}

func TestServerErrorLeavesTargetsUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `"server error"`)
	}))
	defer srv.Close()

	h, view, logs := newTestHandler(t)
	_, err := h.Handle(context.Background(), Form{Action: srv.URL})

	var reqErr *RequestFailedError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestFailedError, got %v", err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", reqErr.Status)
	}
	if reqErr.Detail != `"server error"` {
		t.Errorf("Expected body as detail, got %q", reqErr.Detail)
	}
	if !strings.Contains(logs.String(), "server error") {
		t.Errorf("Expected diagnostic containing 'server error', got %q", logs.String())
	}
	assertUntouched(t, view)
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	h, view, logs := newTestHandler(t)
	_, err := h.Handle(context.Background(), Form{Action: srv.URL})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if logs.Len() == 0 {
		t.Error("Expected a diagnostic to be emitted")
	}
	assertUntouched(t, view)
}

func TestMissingPredictionField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": 200, "prediciton": 5}`)
	}))
	defer srv.Close()

	h, view, _ := newTestHandler(t)
	_, err := h.Handle(context.Background(), Form{Action: srv.URL})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	assertUntouched(t, view)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	h, view, logs := newTestHandler(t)
	_, err := h.Handle(context.Background(), Form{Action: addr})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}
	if logs.Len() == 0 {
		t.Error("Expected a diagnostic to be emitted")
	}
	assertUntouched(t, view)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, `{"prediction": 1}`)
	}))
	defer srv.Close()
	defer close(release)

	view := &memoryView{}
	h := NewHandler(config.DefaultSubmitConfig(), view, view,
		WithClient(&http.Client{Timeout: 50 * time.Millisecond}),
		WithLogger(log.New(io.Discard, "", 0)))

	_, err := h.Handle(context.Background(), Form{Action: srv.URL, Fields: url.Values{"pocet_izieb": {"2"}}})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError from the client timeout, got %v", err)
	}
	assertUntouched(t, view)
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prediction": 1}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, view, _ := newTestHandler(t)
	_, err := h.Handle(ctx, Form{Action: srv.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	assertUntouched(t, view)
}

func TestOverlappingSubmissionsLastResolvedWins(t *testing.T) {
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/first", func(w http.ResponseWriter, r *http.Request) {
		<-releaseFirst
		fmt.Fprint(w, `{"prediction": 100000}`)
	})
	mux.HandleFunc("/second", func(w http.ResponseWriter, r *http.Request) {
		<-releaseSecond
		fmt.Fprint(w, `{"prediction": 200000}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h, view, _ := newTestHandler(t)

	firstDone := make(chan error, 1)
	secondDone := make(chan error, 1)
	go func() {
		_, err := h.Handle(context.Background(), Form{Action: srv.URL + "/first"})
		firstDone <- err
	}()
	go func() {
		_, err := h.Handle(context.Background(), Form{Action: srv.URL + "/second"})
		secondDone <- err
	}()

	// The second submission resolves first, the first one resolves last.
	close(releaseSecond)
	if err := <-secondDone; err != nil {
		t.Fatalf("second submission failed: %v", err)
	}
	text, _, _ := view.state()
	if !strings.Contains(text, "200,000") {
		t.Fatalf("Expected intermediate state from second response, got %q", text)
	}

	close(releaseFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	text, visible, _ := view.state()
	want := "Aktuálna odhadovaná hodnota bytu je: 100,000 €."
	if text != want {
		t.Errorf("Expected final message %q, got %q", want, text)
	}
	if !visible {
		t.Error("Expected result container to be visible")
	}
}

func TestCustomContentType(t *testing.T) {
	var gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		io.Copy(io.Discard, r.Body)
		fmt.Fprint(w, `{"prediction": 1}`)
	}))
	defer srv.Close()

	view := &memoryView{}
	cfg := config.SubmitConfig{ContentType: "application/json"}
	h := NewHandler(cfg, view, view, WithLogger(log.New(io.Discard, "", 0)))
	if _, err := h.Handle(context.Background(), Form{Action: srv.URL}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if gotCT != "application/json" {
		t.Errorf("Expected configured content type, got %q", gotCT)
	}
}

func TestConsoleViewPrintsOnShow(t *testing.T) {
	var out bytes.Buffer
	v := NewConsoleView(&out)

	v.SetText("hello")
	if out.Len() != 0 {
		t.Errorf("Expected nothing before Show, got %q", out.String())
	}
	v.Show()
	if out.String() != "hello\n" {
		t.Errorf("Expected 'hello\\n', got %q", out.String())
	}
}
