// Package tui is the Renderer (spec.md §2, detailed in SPEC_FULL.md
// §4.12): a bubbletea Model wrapping the core App State Machine.
// bubbletea's own read loop doubles as the Input Worker and the Event
// Dispatcher/Main Loop described in spec.md §4.4-§4.5: core.AppEvent
// values are tea.Msg (interface{}) already, so Host Manager / Action
// Executor / Log Stream Worker goroutines feed this Model directly
// through a channel a tea.Cmd drains one message at a time. Grounded on
// siftail's internal/tui/model.go shape (viewport-backed content model,
// a render-throttling tick, an inline error banner).
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/input"
	"github.com/siftail/dtop/internal/logging"
	"github.com/siftail/dtop/internal/persist"
)

// frameInterval is T_frame from spec.md §4.5: the render cadence the
// dispatcher ticks at even with no new events.
const frameInterval = 500 * time.Millisecond

// Model is the bubbletea program state. The wrapped *core.AppState is
// the single writer of application data (spec.md §5); Model only adds
// terminal-facing concerns (viewport scroll position, window size,
// transient banners, theme).
type Model struct {
	state *core.AppState

	events   <-chan core.AppEvent
	settings *persist.Store
	logger   *logrus.Logger

	vp    viewport.Model
	theme *Theme

	width, height int
	showHelp      bool

	banner     string
	bannerTime time.Time

	ready bool
}

// New builds the Model around an already-wired AppState (its
// SpawnLogWorker/ExecuteAction hooks set by the caller)
// and the shared event channel Host Managers, the Log Stream Worker, and
// the Action Executor all publish onto. logger may be nil in tests; every
// DiagnosticEvent that reaches the UI banner is also logged through it
// (spec.md §7: diagnostics are logged in addition to shown).
func New(state *core.AppState, events <-chan core.AppEvent, settings *persist.Store, themeName string, logger *logrus.Logger) Model {
	vp := viewport.New(80, 24)
	return Model{
		state:    state,
		events:   events,
		settings: settings,
		logger:   logger,
		vp:       vp,
		theme:    themeByName(themeName),
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// waitForEvent blocks on the shared channel and resolves to whatever
// AppEvent arrives, so bubbletea's own scheduler is the single consumer
// pulling from N Host Managers, the Log Stream Worker, and the Action
// Executor (spec.md §4.5).
func waitForEvent(events <-chan core.AppEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return e
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		logHeight := msg.Height - 4
		if logHeight < 3 {
			logHeight = 3
		}
		m.vp.Height = logHeight
		m.ready = true
		m.state.Apply(core.ResizeEvent{Width: msg.Width, Height: msg.Height})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.state.ExpireActionStatuses(time.Now())
		if m.banner != "" && time.Since(m.bannerTime) > 3*time.Second {
			m.banner = ""
		}
		return m, tickCmd()

	case clipboardResultMsg:
		m.banner = msg.message
		m.bannerTime = time.Now()
		return m, nil

	case core.AppEvent:
		m.state.Apply(msg)
		if diag, ok := msg.(core.DiagnosticEvent); ok {
			m.banner = fmt.Sprintf("[%s] %s", diag.Host, diag.Message)
			m.bannerTime = time.Now()
			if m.logger != nil {
				logging.Diagnostic(m.logger, string(diag.Host), diag.Kind.String(), diag.Message)
			}
		}
		m.syncViewport()
		return m, waitForEvent(m.events)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	view := m.state.View().Kind

	if view != core.ViewSearchMode && key == "?" {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if view == core.ViewContainerList && key == "y" {
		if c, ok := m.state.Selected(); ok {
			return m, copySelectionCmd(c.Key.ContainerId)
		}
		return m, nil
	}

	ev := input.Translate(key, view)
	if ev == nil {
		return m, nil
	}

	if _, ok := ev.(core.QuitEvent); ok {
		return m, tea.Quit
	}

	if _, ok := ev.(core.OpenDozzleEvent); ok {
		c, ok := m.state.Selected()
		if !ok || c.DozzleURL == "" {
			m.banner = "no dozzle URL configured for this host"
			m.bannerTime = time.Now()
			return m, nil
		}
		return m, openDozzleCmd(c.DozzleURL + "/container/" + c.Key.ContainerId)
	}

	m.state.Apply(ev)
	m.syncViewport()
	return m, nil
}

// syncViewport rebuilds the log viewport's content after any state
// change that could affect LogView (spec.md §4.6: LogLine append,
// scroll, view-transition).
func (m *Model) syncViewport() {
	if m.state.View().Kind != core.ViewLogView {
		return
	}
	m.vp.SetContent(m.renderLogBuffer())
	if m.state.AutoScroll() {
		m.vp.GotoBottom()
		return
	}
	// AppState.LogOffset is lines back from the tail (state.go's
	// scrollUp/scrollDown); translate it into the viewport's absolute
	// YOffset so manual scroll actually moves what's on screen instead of
	// leaving the viewport pinned wherever GotoBottom last left it.
	offset := len(m.state.LogBuffer()) - m.vp.Height - m.state.LogOffset()
	if offset < 0 {
		offset = 0
	}
	m.vp.SetYOffset(offset)
}
