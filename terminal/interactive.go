package terminal

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"proofcanvas/autopan"
	"proofcanvas/collab"
	"proofcanvas/config"
	"proofcanvas/editor"
	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/session"
	"proofcanvas/viewport"
)

// UI is the interactive terminal host for one canvas.
type UI struct {
	screen  tcell.Screen
	ed      *editor.Editor
	surface *surface
	log     *slog.Logger

	runner  *autopan.Runner
	cursors map[string]graph.Cursor
	client  *collab.Client
	me      graph.Cursor

	// prompt is the single inline text input, used for group naming and
	// node titles.
	promptActive bool
	promptLabel  string
	promptBuffer []rune
	promptDone   func(string)

	// menu is the right-click context menu.
	menuActive bool
	menuItems  []menuItem
	menuIndex  int
	menuAt     geometry.Point

	quit bool
}

type menuItem struct {
	label  string
	action func(context.Context)
}

// frameEvent is posted by the auto-pan runner to serialize frame ticks
// onto the event loop.
type frameEvent struct {
	tcell.EventTime
}

// cursorEvent carries a remote collaborator cursor onto the event loop.
type cursorEvent struct {
	tcell.EventTime
	cursor graph.Cursor
}

// New creates the terminal host over an existing editor.
func New(ed *editor.Editor, cfg *config.Config, log *slog.Logger) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	ui := &UI{
		screen:  screen,
		ed:      ed,
		surface: newSurface(),
		log:     log,
		cursors: make(map[string]graph.Cursor),
		me: graph.Cursor{
			ID:    uuid.NewString(),
			Name:  cfg.UserName,
			Color: cfg.CursorColor,
		},
	}

	w, h := screen.Size()
	ed.View.Resize(float64(w), float64(h))
	ed.View.AttachSurface(ui.surface)
	ed.Sess.SetSurface(ui.surface)
	ui.runner = autopan.NewRunner(ed.Sess.AutoPan(), func() {
		screen.PostEvent(&frameEvent{})
	})

	if cfg.CursorHub != "" {
		client, err := collab.Dial(cfg.CursorHub)
		if err != nil {
			log.Warn("cursor hub unreachable", slog.String("url", cfg.CursorHub), slog.String("error", err.Error()))
		} else {
			ui.client = client
			go func() {
				for c := range client.Cursors {
					screen.PostEvent(&cursorEvent{cursor: c})
				}
			}()
		}
	}
	return ui, nil
}

// Surface returns the imperative render channel for wiring into the
// session manager.
func (ui *UI) Surface() session.Surface { return ui.surface }

// Run is the event loop. It returns when the user quits.
func (ui *UI) Run(ctx context.Context) error {
	defer ui.close()
	ui.draw()
	for !ui.quit {
		ev := ui.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			ui.ed.View.Resize(float64(w), float64(h))
			ui.surface.dirty = true
		case *tcell.EventKey:
			ui.handleKey(ctx, ev)
		case *tcell.EventMouse:
			ui.handleMouse(ctx, ev)
		case *frameEvent:
			ui.ed.Sess.Tick()
		case *cursorEvent:
			ui.cursors[ev.cursor.ID] = ev.cursor
			ui.surface.dirty = true
		}
		if ui.surface.dirty {
			ui.draw()
		}
	}
	return nil
}

func (ui *UI) close() {
	ui.runner.Stop()
	if ui.client != nil {
		ui.client.Close()
	}
	ui.screen.Fini()
}

func (ui *UI) handleKey(ctx context.Context, ev *tcell.EventKey) {
	if ui.promptActive {
		ui.handlePromptKey(ev)
		return
	}
	if ui.menuActive {
		ui.handleMenuKey(ctx, ev)
		return
	}

	k := editor.Key{
		Rune:  ev.Rune(),
		Ctrl:  ev.Modifiers()&tcell.ModCtrl != 0,
		Shift: ev.Modifiers()&tcell.ModShift != 0,
		Meta:  ev.Modifiers()&tcell.ModMeta != 0,
	}
	switch ev.Key() {
	case tcell.KeyEscape:
		k.Name = "escape"
	case tcell.KeyDelete:
		k.Name = "delete"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k.Name = "backspace"
	case tcell.KeyCtrlC:
		ui.quit = true
		return
	case tcell.KeyCtrlZ:
		k.Ctrl, k.Rune = true, 'z'
	case tcell.KeyCtrlY:
		k.Ctrl, k.Rune = true, 'y'
	case tcell.KeyCtrlG:
		k.Ctrl, k.Rune = true, 'g'
	case tcell.KeyCtrlA:
		k.Ctrl, k.Rune = true, 'a'
	}
	if k.Rune == 'q' && !k.Ctrl {
		ui.quit = true
		return
	}

	handled, err := ui.ed.HandleKey(ctx, k)
	if err != nil {
		ui.log.Warn("command failed", slog.String("error", err.Error()))
	}
	if handled {
		// Ctrl+G opened a proposal; collect the name.
		if ui.ed.GroupPending() {
			ui.openPrompt("group name: ", func(name string) {
				if name == "" {
					ui.ed.CancelGroup()
					return
				}
				if _, err := ui.ed.ConfirmGroup(ctx, name); err != nil {
					ui.log.Warn("group failed", slog.String("error", err.Error()))
				}
			})
		}
		// N created a node in editing state; collect its title inline.
		if id := ui.ed.TakePendingEdit(); id != "" {
			ui.titleNode(ctx, id)
		}
		// Escape may have cancelled a drag mid-gesture; the frame loop has
		// nothing left to drive.
		if ui.ed.Sess.State() == session.StateIdle {
			ui.runner.Stop()
		}
		ui.surface.reset()
	}
}

func (ui *UI) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ui.promptActive = false
		ui.promptDone("")
	case tcell.KeyEnter:
		ui.promptActive = false
		ui.promptDone(string(ui.promptBuffer))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ui.promptBuffer) > 0 {
			ui.promptBuffer = ui.promptBuffer[:len(ui.promptBuffer)-1]
		}
	default:
		if r := ev.Rune(); r != 0 {
			ui.promptBuffer = append(ui.promptBuffer, r)
		}
	}
	ui.surface.dirty = true
}

func (ui *UI) openPrompt(label string, done func(string)) {
	ui.promptActive = true
	ui.promptLabel = label
	ui.promptBuffer = nil
	ui.promptDone = done
	ui.surface.dirty = true
}

func (ui *UI) handleMenuKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ui.menuActive = false
	case tcell.KeyUp:
		if ui.menuIndex > 0 {
			ui.menuIndex--
		}
	case tcell.KeyDown:
		if ui.menuIndex < len(ui.menuItems)-1 {
			ui.menuIndex++
		}
	case tcell.KeyEnter:
		item := ui.menuItems[ui.menuIndex]
		ui.menuActive = false
		item.action(ctx)
	}
	ui.surface.dirty = true
}

func (ui *UI) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	x, y := ev.Position()
	screen := geometry.Point{X: float64(x), Y: float64(y)}
	buttons := ev.Buttons()

	// Wheel first: tcell reports wheel as button flags.
	if buttons&(tcell.WheelUp|tcell.WheelDown|tcell.WheelLeft|tcell.WheelRight) != 0 {
		// With the zoom modifier held, zoom anchored under the pointer so
		// the canvas point being inspected stays put.
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			if buttons&tcell.WheelUp != 0 {
				ui.ed.View.ZoomAt(screen, viewport.WheelZoomIn)
			} else if buttons&tcell.WheelDown != 0 {
				ui.ed.View.ZoomAt(screen, viewport.WheelZoomOut)
			}
			return
		}
		var delta geometry.Point
		if buttons&tcell.WheelUp != 0 {
			delta.Y = -3
		}
		if buttons&tcell.WheelDown != 0 {
			delta.Y = 3
		}
		if buttons&tcell.WheelLeft != 0 {
			delta.X = -3
		}
		if buttons&tcell.WheelRight != 0 {
			delta.X = 3
		}
		ui.ed.View.Wheel(delta, false)
		return
	}

	ui.broadcastCursor(screen)

	p := session.Pointer{
		Screen: screen,
		Shift:  ev.Modifiers()&tcell.ModShift != 0,
	}

	switch {
	case buttons&tcell.Button1 != 0:
		p.Button = session.ButtonLeft
	case buttons&tcell.Button3 != 0:
		p.Button = session.ButtonMiddle
	case buttons&tcell.Button2 != 0:
		p.Button = session.ButtonRight
	}

	idle := ui.ed.Sess.State() == session.StateIdle
	switch {
	case p.Button == session.ButtonRight && idle:
		hit := ui.ed.PointerDown(p)
		ui.openContextMenu(screen, hit)
	case p.Button != session.ButtonNone && idle:
		ui.ed.PointerDown(p)
		if ui.ed.Sess.State().Dragging() {
			ui.runner.Start()
		}
	case p.Button != session.ButtonNone:
		ui.ed.PointerMove(p)
	default:
		if !idle {
			ui.ed.PointerUp(ctx, p)
			ui.runner.Stop()
			ui.surface.reset()
		} else {
			ui.ed.TrackPointer(ui.ed.View.ToCanvas(screen))
		}
	}
}

func (ui *UI) broadcastCursor(screen geometry.Point) {
	if ui.client == nil {
		return
	}
	canvas := ui.ed.View.ToCanvas(screen)
	ui.me.X, ui.me.Y = canvas.X, canvas.Y
	if err := ui.client.Send(ui.me); err != nil {
		ui.log.Warn("cursor send failed", slog.String("error", err.Error()))
		ui.client = nil
	}
}

func (ui *UI) openContextMenu(at geometry.Point, hit session.Hit) {
	ui.menuItems = nil
	switch hit.Kind {
	case session.HitNode, session.HitConnectHandle:
		id := hit.NodeID
		ui.menuItems = []menuItem{
			{"rename", func(ctx context.Context) {
				ui.openPrompt("title: ", func(title string) {
					if title == "" {
						return
					}
					ui.renameNode(ctx, id, title)
				})
			}},
			{"delete node", func(ctx context.Context) {
				ui.ed.Sess.SetSelection([]string{id})
				if err := ui.ed.DeleteSelection(ctx); err != nil {
					ui.log.Warn("delete failed", slog.String("error", err.Error()))
				}
			}},
		}
	case session.HitBlockHandle:
		id := hit.BlockID
		ui.menuItems = []menuItem{
			{"ungroup", func(ctx context.Context) {
				ui.deleteBlock(ctx, id)
			}},
		}
	default:
		ui.menuItems = []menuItem{
			{"new node here", func(ctx context.Context) {
				canvas := ui.ed.View.ToCanvas(at)
				id, err := ui.ed.CreateNode(ctx, graph.Node{
					Type: graph.NodeConjecture, Status: graph.StatusEditing,
					X: canvas.X, Y: canvas.Y,
				})
				if err != nil {
					ui.log.Warn("create failed", slog.String("error", err.Error()))
					return
				}
				ui.titleNode(ctx, id)
			}},
			{"fit to view", func(context.Context) { ui.ed.FitToView() }},
		}
	}
	ui.menuIndex = 0
	ui.menuAt = at
	ui.menuActive = true
	ui.surface.dirty = true
}

// titleNode opens the inline prompt for a node sitting in editing state and
// commits the result, clearing the editing status either way.
func (ui *UI) titleNode(ctx context.Context, id string) {
	ui.openPrompt("title: ", func(title string) {
		if err := ui.ed.CommitNodeTitle(ctx, id, title); err != nil {
			ui.log.Warn("title failed", slog.String("error", err.Error()))
		}
	})
}

func (ui *UI) renameNode(ctx context.Context, id, title string) {
	if n := ui.ed.Graph.NodeByID(id); n != nil {
		n.Title = title
	}
	if err := ui.ed.UpdateNodeTitle(ctx, id, title); err != nil {
		ui.log.Warn("rename failed", slog.String("error", err.Error()))
	}
}

func (ui *UI) deleteBlock(ctx context.Context, id string) {
	if err := ui.ed.DeleteBlock(ctx, id); err != nil {
		ui.log.Warn("ungroup failed", slog.String("error", err.Error()))
	}
}
