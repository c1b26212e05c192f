package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/scroll"
	"github.com/jask/stickyscroll/internal/service"
)

// App hosts a collapsing header over a scrollable list in the terminal.
type App struct {
	ctx     context.Context
	cfg     config.Config
	traces  *service.TraceService
	session *service.Session
	list    *contentList
	keys    keyMap
	log     *slog.Logger
	clock   func() time.Duration

	width  int
	height int

	drag        dragTarget
	lastY       int
	tickPending bool
	redraws     int

	lastTrace *repository.Trace
	status    string
}

type dragTarget int

const (
	dragNone dragTarget = iota
	dragHeader
	dragList
)

func New(ctx context.Context, cfg config.Config, traces *service.TraceService, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	a := &App{
		ctx:    ctx,
		cfg:    cfg,
		traces: traces,
		keys:   defaultKeys(),
		log:    logger,
		clock:  func() time.Duration { return time.Since(start) },
		width:  80,
		height: 24,
	}
	a.list = newContentList(cfg)
	a.session = service.NewSession(service.SessionOptions{
		HeaderHeight: cfg.Demo.HeaderLines * cfg.Demo.CellPx,
		Physics:      cfg.Physics,
		Child:        a.list,
		Surface:      a,
		Logger:       logger,
	})
	a.list.resize(a.height - 2)
	return a
}

// Invalidate is called by the coordinator whenever the header offset moves.
func (a *App) Invalidate() { a.redraws++ }

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.list.resize(a.height - 2)
	case tea.KeyMsg:
		switch {
		case key.Matches(m, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(m, a.keys.Record):
			a.toggleRecording()
		case key.Matches(m, a.keys.Save):
			cmd = a.saveRecording()
		case key.Matches(m, a.keys.Reset):
			a.reset()
		}
	case tea.MouseMsg:
		a.handleMouse(m)
	case frameMsg:
		a.tickPending = false
		a.session.Frame(a.clock())
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, tea.Batch(cmd, a.scheduleFrame())
}

// scheduleFrame arms one tick while the frame queue has work.
func (a *App) scheduleFrame() tea.Cmd {
	if a.tickPending || !a.session.FramePending() {
		return nil
	}
	a.tickPending = true
	return tea.Tick(a.cfg.Demo.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (a *App) handleMouse(m tea.MouseMsg) {
	now := a.clock()
	y := m.Y * a.cfg.Demo.CellPx
	switch {
	case m.Button == tea.MouseButtonWheelUp && m.Action == tea.MouseActionPress:
		a.wheel(now, -a.cfg.Demo.CellPx)
	case m.Button == tea.MouseButtonWheelDown && m.Action == tea.MouseActionPress:
		a.wheel(now, a.cfg.Demo.CellPx)
	case m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft:
		a.press(now, m.Y, y)
	case m.Action == tea.MouseActionMotion && a.drag != dragNone:
		a.move(now, y)
	case m.Action == tea.MouseActionRelease && a.drag != dragNone:
		a.release(now, y)
	}
}

func (a *App) press(now time.Duration, row, y int) {
	a.lastY = y
	if a.inHeader(row) {
		a.drag = dragHeader
		a.session.Pointer(scroll.PointerEvent{Kind: scroll.PointerDown, At: now, Y: float64(y)})
		return
	}
	if row > a.visibleHeaderRows() && row < a.height-1 {
		a.drag = dragList
		a.list.beginDrag(now, float64(y))
	}
}

func (a *App) move(now time.Duration, y int) {
	switch a.drag {
	case dragHeader:
		a.session.Pointer(scroll.PointerEvent{Kind: scroll.PointerMove, At: now, Y: float64(y)})
	case dragList:
		a.childScroll(now, a.lastY-y)
		a.list.velocity.AddSample(now, float64(y))
	}
	a.lastY = y
}

func (a *App) release(now time.Duration, y int) {
	drag := a.drag
	a.drag = dragNone
	switch drag {
	case dragHeader:
		a.session.Pointer(scroll.PointerEvent{Kind: scroll.PointerUp, At: now, Y: float64(y)})
	case dragList:
		if y != a.lastY {
			a.childScroll(now, a.lastY-y)
		}
		v := a.list.endDrag(now, float64(y), a.cfg.Physics.MaxFlingVelocity)
		if math.Abs(v) < a.cfg.Physics.MinFlingVelocity {
			return
		}
		if a.session.PreFling(now, v) {
			return
		}
		a.session.Fling(now, v)
		if !a.session.Coordinator().FlingActive() {
			a.startListFling(v)
		}
	}
	a.lastY = y
}

func (a *App) wheel(now time.Duration, dy int) {
	a.list.stopFling()
	a.childScroll(now, dy)
}

// childScroll offers dy to the coordinator and lets the list take the rest.
// It returns how much moved in total.
func (a *App) childScroll(now time.Duration, dy int) int {
	if dy == 0 {
		return 0
	}
	res := a.session.PreScroll(now, dy, a.list.CanScrollUp())
	return res.Consumed + a.list.scrollBy(res.Remainder)
}

// startListFling runs the list's own fling on the shared frame queue. The
// fling covers the list and the header, so a fling towards the top keeps
// going into the header once the list runs out.
func (a *App) startListFling(velocity float64) {
	l := a.list
	l.stopFling()
	limit := l.maxPos() + a.session.Coordinator().HeaderHeight()
	l.fling.Start(0, velocity, -limit, limit)
	if !l.fling.Active() {
		return
	}
	l.flingGen++
	l.flingAt = 0
	a.log.Debug("list fling", "velocity", velocity, "target", l.fling.Target())
	a.requestListFrame(l.flingGen)
}

func (a *App) requestListFrame(gen uint64) {
	a.session.RequestFrame(func(now time.Duration) {
		l := a.list
		if gen != l.flingGen || !l.fling.Active() {
			return
		}
		pos, active := l.fling.Tick(now)
		dy := pos - l.flingAt
		l.flingAt = pos
		if dy != 0 && a.childScroll(now, dy) == 0 {
			// both the list and the header are at their edge
			l.stopFling()
			return
		}
		if active {
			a.requestListFrame(gen)
		}
	})
}

func (a *App) toggleRecording() {
	if !a.session.Recording() {
		a.session.StartRecording()
		a.status = "recording"
		return
	}
	t := a.session.StopRecording()
	a.lastTrace = &t
	a.status = fmt.Sprintf("recorded %d events, s to save", len(t.Events))
}

func (a *App) saveRecording() tea.Cmd {
	if a.session.Recording() {
		a.toggleRecording()
	}
	if a.lastTrace == nil || len(a.lastTrace.Events) == 0 {
		a.status = "nothing recorded"
		return nil
	}
	if a.traces == nil {
		a.status = "no trace store"
		return nil
	}
	t := *a.lastTrace
	name := "rec-" + time.Now().Format("20060102-150405")
	return func() tea.Msg {
		saved, err := a.traces.Save(a.ctx, name, t)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("saved %s (%d events)", saved.Name, len(saved.Events)))
	}
}

func (a *App) reset() {
	a.list.stopFling()
	a.list.pos = 0
	a.session.Apply(a.clock(), 0)
	a.status = "reset"
}

// hiddenHeaderRows is how many header rows the offset has scrolled away.
func (a *App) hiddenHeaderRows() int {
	return a.session.Offset() / a.cfg.Demo.CellPx
}

func (a *App) visibleHeaderRows() int {
	return a.cfg.Demo.HeaderLines - a.hiddenHeaderRows()
}

// inHeader reports whether a terminal row falls on the visible header. Row 0
// is the title bar.
func (a *App) inHeader(row int) bool {
	return row >= 1 && row <= a.visibleHeaderRows()
}
