// Package teatest drives bubbletea models (huh forms included) synchronously
// in tests. Update is called directly and returned Cmds are drained in place
// of a running tea.Program.
//
// Cmds that block, such as cursor blinks, are abandoned after a short timeout.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// MaxDrainDepth caps how many Cmds one message may chain.
const MaxDrainDepth = 100

// cmdTimeout bounds how long a single Cmd may run. Form navigation Cmds return
// immediately; cursor blinks wait roughly half a second.
const cmdTimeout = 10 * time.Millisecond

// Driver owns the model under test and replaces it with whatever Update
// returns.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg has been drained. A real program
	// would stop there, so later sends are ignored.
	Quitting bool
}

// New wraps model. Options run immediately; call DrainInit before the first
// key press.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures the Driver during construction.
type Option func(*Driver)

// WithSize sends an initial WindowSizeMsg before any other processing.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.T.Helper()
		d.update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// DrainInit runs Init and everything it chains.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drainCmd(d.Model.Init(), 0)
}

// Send feeds msg to Update and drains the result. Ignored after quit.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	d.drainCmd(d.update(msg), 0)
}

// PressKey sends a single rune.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressEnter advances a form field, or submits on the last one.
func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEnter})
}

// PressDown moves a select cursor.
func (d *Driver) PressDown() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyDown})
}

// Type sends s one rune at a time, as a terminal would.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View is the model's current render.
func (d *Driver) View() string {
	return d.Model.View()
}

// FormState reports the state of a huh form under test. Any other model
// fails the test.
func (d *Driver) FormState() huh.FormState {
	d.T.Helper()
	f, ok := d.Model.(*huh.Form)
	if !ok {
		d.T.Fatalf("teatest: model is %T, not *huh.Form", d.Model)
	}
	return f.State
}

func (d *Driver) update(msg tea.Msg) tea.Cmd {
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	return cmd
}

// drainCmd runs cmd and feeds its message back through Update until the
// chain ends, a Cmd times out, or MaxDrainDepth is hit.
func (d *Driver) drainCmd(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	switch msg := execCmdWithTimeout(cmd).(type) {
	case nil:
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drainCmd(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.update(msg)
	default:
		if isCursorBlink(msg) {
			return
		}
		d.drainCmd(d.update(msg), depth+1)
	}
}

// execCmdWithTimeout returns nil when cmd does not finish within cmdTimeout.
func execCmdWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isCursorBlink matches the unexported blink messages of bubbles/cursor.
func isCursorBlink(msg tea.Msg) bool {
	t := fmt.Sprintf("%T", msg)
	return strings.Contains(t, "Blink") || strings.Contains(t, "blink")
}
