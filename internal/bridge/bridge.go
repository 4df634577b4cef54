// Package bridge runs form submissions from the desktop window through the
// Go submission handler and writes the result back into the page.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/zakolko/zakolko/internal/config"
	"github.com/zakolko/zakolko/internal/submit"
)

// Window is the part of the webview the bridge drives
type Window interface {
	Dispatch(f func())
	Eval(js string)
}

// ElementText writes the text content of a page element
type ElementText struct {
	win Window
	id  string
}

// SetText replaces the element's text on the UI thread
func (e ElementText) SetText(text string) {
	js := fmt.Sprintf("document.getElementById(%s).textContent = %s;", jsString(e.id), jsString(text))
	e.win.Dispatch(func() { e.win.Eval(js) })
}

// ElementVisibility reveals a hidden page element
type ElementVisibility struct {
	win Window
	id  string
}

// Show clears the element's display style on the UI thread
func (e ElementVisibility) Show() {
	js := fmt.Sprintf("document.getElementById(%s).style.display = \"\";", jsString(e.id))
	e.win.Dispatch(func() { e.win.Eval(js) })
}

// Bridge exposes the submission handler to the page script
type Bridge struct {
	ctx     context.Context
	handler *submit.Handler
	wg      sync.WaitGroup
}

// New binds a submission handler to the page's result elements
func New(ctx context.Context, win Window, page config.PageConfig, cfg config.SubmitConfig, opts ...submit.Option) *Bridge {
	msg := ElementText{win: win, id: page.MessageID}
	box := ElementVisibility{win: win, id: page.BoxID}
	return &Bridge{
		ctx:     ctx,
		handler: submit.NewHandler(cfg, msg, box, opts...),
	}
}

// Submit is bound into the page. It returns at once so the window stays
// responsive; the outcome reaches the page through the result elements.
func (b *Bridge) Submit(action string, fields map[string]string) {
	form := submit.Form{Action: action, Fields: make(url.Values, len(fields))}
	for k, v := range fields {
		form.Fields.Set(k, v)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handler.Handle(b.ctx, form)
	}()
}

// Wait blocks until every submission started so far has finished
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
