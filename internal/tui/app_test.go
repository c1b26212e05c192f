package tui

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/scroll"
	"github.com/jask/stickyscroll/internal/service"
)

type testClock struct{ now time.Duration }

func newTestApp(t *testing.T, traces *service.TraceService) (*App, *testClock) {
	t.Helper()
	cfg := config.Default()
	cfg.Demo.HeaderLines = 6
	cfg.Demo.CellPx = 16
	cfg.Demo.Items = 120
	a := New(context.Background(), cfg, traces, slog.New(slog.DiscardHandler))
	clk := &testClock{}
	a.clock = func() time.Duration { return clk.now }
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return a, clk
}

func mouse(action tea.MouseAction, button tea.MouseButton, row int) tea.MouseMsg {
	return tea.MouseMsg{X: 4, Y: row, Action: action, Button: button}
}

func press(row int) tea.MouseMsg { return mouse(tea.MouseActionPress, tea.MouseButtonLeft, row) }
func motion(row int) tea.MouseMsg {
	return mouse(tea.MouseActionMotion, tea.MouseButtonLeft, row)
}
func release(row int) tea.MouseMsg {
	return mouse(tea.MouseActionRelease, tea.MouseButtonNone, row)
}
func wheelDown() tea.MouseMsg {
	return mouse(tea.MouseActionPress, tea.MouseButtonWheelDown, 20)
}
func wheelUp() tea.MouseMsg { return mouse(tea.MouseActionPress, tea.MouseButtonWheelUp, 20) }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runFrames drives frame ticks until the queue drains.
func runFrames(t *testing.T, a *App, clk *testClock) {
	t.Helper()
	for i := 0; i < 300 && a.session.FramePending(); i++ {
		clk.now += 16 * time.Millisecond
		a.Update(frameMsg{})
	}
	require.False(t, a.session.FramePending(), "animation did not settle")
}

func TestHeaderDragFollowsFinger(t *testing.T) {
	t.Parallel()

	a, clk := newTestApp(t, nil)
	a.Update(press(6))
	clk.now = 10 * time.Millisecond
	a.Update(motion(3))
	require.Equal(t, 48, a.session.Offset())
	require.Equal(t, scroll.Dragging, a.session.Coordinator().Phase())

	// held long enough that no velocity survives
	clk.now = 300 * time.Millisecond
	_, cmd := a.Update(release(3))
	require.Nil(t, cmd)
	require.Equal(t, 48, a.session.Offset())
	require.Equal(t, scroll.Idle, a.session.Coordinator().Phase())
	require.Equal(t, 3, a.visibleHeaderRows())
}

func TestHeaderSwipeFlingsClosed(t *testing.T) {
	t.Parallel()

	a, clk := newTestApp(t, nil)
	a.Update(press(6))
	clk.now = 10 * time.Millisecond
	a.Update(motion(5))
	clk.now = 20 * time.Millisecond
	a.Update(motion(4))
	_, cmd := a.Update(release(4))
	require.NotNil(t, cmd)
	require.True(t, a.tickPending)
	require.Equal(t, scroll.Flinging, a.session.Coordinator().Phase())

	runFrames(t, a, clk)
	require.Equal(t, 96, a.session.Offset())
	require.Zero(t, a.list.pos)
	require.Positive(t, a.redraws)
	require.False(t, a.tickPending)
}

func TestWheelCollapsesHeaderBeforeList(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	for i := 0; i < 6; i++ {
		a.Update(wheelDown())
	}
	require.Equal(t, 96, a.session.Offset())
	require.Zero(t, a.list.pos)

	a.Update(wheelDown())
	require.Equal(t, 96, a.session.Offset())
	require.Equal(t, 16, a.list.pos)

	a.Update(wheelUp())
	require.Equal(t, 96, a.session.Offset())
	require.Zero(t, a.list.pos)

	a.Update(wheelUp())
	require.Equal(t, 80, a.session.Offset())
}

func TestListDragAtTopRevealsHeader(t *testing.T) {
	t.Parallel()

	a, clk := newTestApp(t, nil)
	a.session.Apply(0, 96)
	require.Zero(t, a.visibleHeaderRows())

	a.Update(press(10))
	require.Equal(t, dragList, a.drag)
	clk.now = 10 * time.Millisecond
	a.Update(motion(12))
	require.Equal(t, 64, a.session.Offset())
	require.Zero(t, a.list.pos)

	clk.now = 400 * time.Millisecond
	a.Update(release(12))
	require.False(t, a.session.FramePending())
	require.Equal(t, 64, a.session.Offset())
}

func listFling(a *App, clk *testClock) {
	a.Update(press(10))
	clk.now += 10 * time.Millisecond
	a.Update(motion(11))
	clk.now += 10 * time.Millisecond
	a.Update(motion(12))
	a.Update(release(12))
}

func TestListFlingCarriesIntoHeader(t *testing.T) {
	t.Parallel()

	a, clk := newTestApp(t, nil)
	a.session.Apply(0, 96)
	a.list.pos = 160

	listFling(a, clk)
	require.Equal(t, 128, a.list.pos)
	require.True(t, a.list.fling.Active())
	require.False(t, a.session.Coordinator().FlingActive())

	runFrames(t, a, clk)
	require.Zero(t, a.list.pos)
	require.Zero(t, a.session.Offset())
	require.False(t, a.list.fling.Active())
}

func TestPressStopsListFling(t *testing.T) {
	t.Parallel()

	a, clk := newTestApp(t, nil)
	a.session.Apply(0, 96)
	a.list.pos = 1400

	listFling(a, clk)
	require.True(t, a.list.fling.Active())
	clk.now += 16 * time.Millisecond
	a.Update(frameMsg{})

	a.Update(press(10))
	require.False(t, a.list.fling.Active())
	pos := a.list.pos
	runFrames(t, a, clk)
	require.Equal(t, pos, a.list.pos)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	a.Update(key("r"))
	require.True(t, a.session.Recording())
	a.Update(wheelDown())
	a.Update(key("r"))
	require.False(t, a.session.Recording())
	require.NotNil(t, a.lastTrace)
	require.Len(t, a.lastTrace.Events, 1)
	require.Contains(t, a.status, "recorded 1")

	_, cmd := a.Update(key("s"))
	require.Nil(t, cmd)
	require.Equal(t, "no trace store", a.status)

	a.list.pos = 64
	a.Update(key(" "))
	require.Zero(t, a.session.Offset())
	require.Zero(t, a.list.pos)

	_, cmd = a.Update(key("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSavedRecordingReplays(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tui.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	traces := &service.TraceService{Traces: repository.NewTraceRepo(db), Physics: config.Default().Physics}

	a, clk := newTestApp(t, traces)
	a.session.Apply(0, 96)
	a.list.pos = 160

	a.Update(key("r"))
	listFling(a, clk)
	runFrames(t, a, clk)
	a.Update(wheelDown())

	_, cmd := a.Update(key("s"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, statusMsg(""), msg)
	a.Update(msg)
	require.Contains(t, a.status, "saved rec-")

	list, err := traces.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, traces.Verify(context.Background(), list[0].Name))
}

func TestViewShowsVisibleHeaderRows(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	a.session.Apply(0, 40)
	out := a.View()
	require.NotContains(t, out, "header 2/6")
	require.Contains(t, out, "header 3/6")
	require.Contains(t, out, "item 001")
	require.Contains(t, out, "offset 40/96")
}
