package submit

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleView is a result target for terminal use. The message is held
// back until the view is shown.
type ConsoleView struct {
	w    io.Writer
	mu   sync.Mutex
	text string
}

// NewConsoleView creates a view writing to w
func NewConsoleView(w io.Writer) *ConsoleView {
	return &ConsoleView{w: w}
}

// SetText stores the message
func (v *ConsoleView) SetText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text = text
}

// Show prints the stored message
func (v *ConsoleView) Show() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.w, v.text)
}
