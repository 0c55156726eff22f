// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package editor

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/internal/log"
)

const outlinerWidth = 24

const help = "j/k select  tab field  x/y/z axis  +/- nudge  e edit  r reset  R reset all  X/Y/Z +90  u uniform  s shadow  i import  d remove  w save  q quit"

var (
	styleText     = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true).Reverse(true)
	styleHeader   = tcell.StyleDefault.Bold(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAxis     = [3]tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorRed),
		tcell.StyleDefault.Foreground(tcell.ColorGreen),
		tcell.StyleDefault.Foreground(tcell.ColorBlue),
	}
)

// prompt reads a line of text.
type prompt struct {
	label  string
	text   []rune
	submit func(string)
}

// TUI is a terminal front end for an Editor.
// It implements engine.UI: input is handled and the
// screen is drawn during the UI step of each frame.
type TUI struct {
	ed     *Editor
	screen tcell.Screen
	field  Field
	axis   int
	prompt *prompt

	events chan tcell.Event
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewTUI initializes screen and starts polling it for
// events.
// Close must be called to restore the terminal.
func NewTUI(screen tcell.Screen, ed *Editor) (*TUI, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	screen.Clear()
	t := &TUI{
		ed:     ed,
		screen: screen,
		events: make(chan tcell.Event, 64),
		stop:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.poll()
	return t, nil
}

// poll forwards screen events until the screen is
// finalized or t is closed.
func (t *TUI) poll() {
	defer t.wg.Done()
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.stop:
			return
		}
	}
}

// Editor returns the Editor that t drives.
func (t *TUI) Editor() *Editor { return t.ed }

// Cursor returns the field and axis that edits apply to.
func (t *TUI) Cursor() (Field, int) { return t.field, t.axis }

// Update handles pending input and redraws the screen.
func (t *TUI) Update(f *engine.Frame, s *engine.Scene) {
	if s != nil {
		t.ed.scene = s
	}
drain:
	for {
		select {
		case ev := <-t.events:
			t.handle(ev)
		default:
			break drain
		}
	}
	t.draw(f)
}

// Done returns whether the user confirmed exit.
func (t *TUI) Done() bool { return t.ed.Done() }

// Close stops polling and restores the terminal.
func (t *TUI) Close() {
	t.once.Do(func() {
		close(t.stop)
		t.screen.Fini()
		t.wg.Wait()
	})
}

func (t *TUI) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		t.ed.status = ""
		switch {
		case t.prompt != nil:
			t.promptKey(ev)
		case t.ed.Exiting():
			t.exitKey(ev)
		default:
			t.key(ev)
		}
	}
}

func (t *TUI) exitKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y'):
		t.ed.Confirm(true)
	case ev.Key() == tcell.KeyEnter:
		t.ed.Confirm(true)
	default:
		t.ed.Confirm(false)
	}
}

func (t *TUI) promptKey(ev *tcell.EventKey) {
	p := t.prompt
	switch ev.Key() {
	case tcell.KeyEscape:
		t.prompt = nil
	case tcell.KeyEnter:
		t.prompt = nil
		p.submit(strings.TrimSpace(string(p.text)))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(p.text); n > 0 {
			p.text = p.text[:n-1]
		}
	case tcell.KeyRune:
		p.text = append(p.text, ev.Rune())
	}
}

func (t *TUI) ask(label string, submit func(string)) {
	t.prompt = &prompt{label: label, submit: submit}
}

func (t *TUI) report(err error) {
	if err != nil {
		t.ed.setStatus("%v", err)
		log.L().Debug("edit failed", log.Err(err))
	}
}

func (t *TUI) key(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		t.ed.Prev()
		return
	case tcell.KeyDown:
		t.ed.Next()
		return
	case tcell.KeyTab:
		t.field = (t.field + 1) % fieldN
		return
	case tcell.KeyBacktab:
		t.field = (t.field + fieldN - 1) % fieldN
		return
	case tcell.KeyLeft:
		t.axis = (t.axis + 2) % 3
		return
	case tcell.KeyRight:
		t.axis = (t.axis + 1) % 3
		return
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.ed.RequestExit()
		return
	case tcell.KeyDelete:
		t.report(t.ed.Remove())
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch r := ev.Rune(); r {
	case 'j':
		t.ed.Next()
	case 'k':
		t.ed.Prev()
	case 'p':
		t.field = Position
	case 'o':
		t.field = Rotation
	case 'c':
		t.field = Scale
	case 'x', 'y', 'z':
		t.axis = int(r - 'x')
	case 'X', 'Y', 'Z':
		t.report(t.ed.Rotate90(int(r - 'X')))
	case '+', '=':
		t.report(t.ed.Nudge(t.field, t.axis, t.field.Step()))
	case '-':
		t.report(t.ed.Nudge(t.field, t.axis, -t.field.Step()))
	case 'r':
		t.report(t.ed.ResetAxis(t.field, t.axis))
	case 'R':
		t.report(t.ed.ResetTransform())
	case 'e':
		field, axis := t.field, t.axis
		label := fmt.Sprintf("%v %c: ", field, 'X'+rune(axis))
		t.ask(label, func(s string) {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				t.ed.setStatus("not a number: %q", s)
				return
			}
			t.report(t.ed.SetAxis(field, axis, float32(v)))
		})
	case 'u':
		t.ask("Uniform scale: ", func(s string) {
			if s != "" {
				v, err := strconv.ParseFloat(s, 32)
				if err != nil || v == 0 {
					t.ed.setStatus("bad scale: %q", s)
					return
				}
				t.ed.SetUniform(float32(v))
			}
			t.report(t.ed.ApplyUniform())
		})
	case 's':
		t.report(t.ed.ToggleShadow())
	case 'i':
		t.ask("Model file: ", func(model string) {
			if model == "" {
				return
			}
			t.ask("Texture file (optional): ", func(tex string) {
				t.report(t.ed.Import(model, tex))
			})
		})
	case 'd':
		t.report(t.ed.Remove())
	case 'w':
		t.report(t.ed.Save())
	case 'q':
		t.ed.RequestExit()
	}
}

func (t *TUI) text(x, y int, style tcell.Style, s string) int {
	w, _ := t.screen.Size()
	for _, r := range s {
		if x >= w {
			break
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (t *TUI) draw(f *engine.Frame) {
	t.screen.Clear()
	w, h := t.screen.Size()

	title := " hybrid editor"
	if f != nil {
		title += fmt.Sprintf("  frame %d  %.1f ms", f.Index, float64(f.Delta)/float64(time.Millisecond))
	}
	for x := t.text(0, 0, styleTitle, title); x < w; x++ {
		t.screen.SetContent(x, 0, ' ', nil, styleTitle)
	}

	sel, x, ok := t.ed.Selected()
	t.text(0, 2, styleHeader, "Outliner")
	row := 3
	for id, a := range t.ed.scene.All() {
		if row >= h-2 {
			break
		}
		style := styleText
		if id == sel {
			style = styleSelected
		}
		name := a.Name()
		if a.CastShadow() {
			name += " *"
		}
		if len(name) > outlinerWidth-2 {
			name = name[:outlinerWidth-2]
		}
		t.text(1, row, style, name)
		row++
	}

	ix := outlinerWidth + 2
	t.text(ix, 2, styleHeader, "Inspector")
	if ok {
		t.text(ix, 3, styleText, "Name: "+x.Name())
		t.text(ix, 4, styleText, "GUID: "+x.GUID().String())
		for i := Position; i < fieldN; i++ {
			y := 6 + int(i)
			style := styleText
			if i == t.field {
				style = styleHeader
			}
			cx := t.text(ix, y, style, fmt.Sprintf("%-9v", i))
			v, _ := t.ed.Value(i)
			for a := range 3 {
				st := styleAxis[a]
				if i == t.field && a == t.axis {
					st = st.Reverse(true)
				}
				cx = t.text(cx+1, y, st, fmt.Sprintf("%c %8.2f", 'X'+rune(a), v[a]))
			}
		}
		t.text(ix, 10, styleText, fmt.Sprintf("Uniform  %8.2f", t.ed.Uniform()))
		t.text(ix, 11, styleText, fmt.Sprintf("Shadow   %v", x.CastShadow()))
		l := t.ed.scene.Light()
		t.text(ix, 12, styleText, fmt.Sprintf("Light    %.2f %.2f %.2f", l[0], l[1], l[2]))
	} else {
		t.text(ix, 3, styleText, "(empty scene)")
	}

	switch {
	case t.prompt != nil:
		t.text(0, h-1, styleStatus, t.prompt.label+string(t.prompt.text)+"_")
	case t.ed.Exiting():
		t.text(0, h-1, styleStatus, "Exit the editor? (y/n)")
	case t.ed.Status() != "":
		t.text(0, h-1, styleStatus, t.ed.Status())
	default:
		t.text(0, h-1, styleText, help)
	}
	t.screen.Show()
}
