package core

import (
	"context"
	"time"
)

// resortThrottle is the minimum interval between stats-driven re-sorts
// (spec.md §4.6, §5: "re-sort throttle 3s under pure stats pressure").
const resortThrottle = 3 * time.Second

// statusDisplay is how long a transient per-container action status line
// stays up before auto-expiring (spec.md §4.6: "e.g., 3s").
const statusDisplay = 3 * time.Second

// AppState is the single-writer state machine described in spec.md §4.6.
// It owns the container mapping, view state, sort state, show-all flag,
// search query, and log buffer, and exposes exactly one entry point
// (Apply) that folds one AppEvent at a time. Nothing here holds a mutex:
// the caller (the Main Loop, internal/tui's Model.Update) is the only goroutine
// ever permitted to call Apply, matching spec.md §5's "single writer of
// all core state".
type AppState struct {
	containers map[ContainerKey]*Container
	order      []ContainerKey // insertion order, for sort stability (property 4)

	view    ViewState
	sort    SortState
	showAll bool
	search  string

	logBuf     []LogEntry
	autoScroll bool
	logOffset  int // lines back from the tail; 0 == at the tail

	viewModel   []Container
	selected    int
	lastResort  time.Time
	resortTimer bool // true once lastResort has been set at least once

	statCancel map[ContainerKey]context.CancelFunc
	logCancel  context.CancelFunc

	// SpawnStatWorker and SpawnLogWorker are injected by the caller that
	// wires the App State Machine to the Host Managers (internal/hostmgr):
	// core stays free of any goroutine/transport concerns, but per spec.md
	// §9 "each stat/log worker carries a cancellation handle owned by the
	// state machine", so the handles live here.
	SpawnStatWorker func(ContainerKey) context.CancelFunc
	SpawnLogWorker  func(ContainerKey) context.CancelFunc
	ExecuteAction   func(ContainerKey, ContainerAction)

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

// NewAppState constructs the initial state described in spec.md §4.8:
// ContainerList, selection at index 0 (or none), the given show-all flag
// and sort state, empty search query.
func NewAppState(showAll bool, sort SortState) *AppState {
	return &AppState{
		containers: make(map[ContainerKey]*Container),
		statCancel: make(map[ContainerKey]context.CancelFunc),
		view:       ViewState{Kind: ViewContainerList},
		sort:       sort,
		showAll:    showAll,
		selected:   -1,
		Clock:      time.Now,
	}
}

func (s *AppState) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// View returns the current ViewState.
func (s *AppState) View() ViewState { return s.view }

// Sort returns the current SortState.
func (s *AppState) Sort() SortState { return s.sort }

// ShowAll returns the current show-all flag.
func (s *AppState) ShowAll() bool { return s.showAll }

// Search returns the current search query buffer.
func (s *AppState) Search() string { return s.search }

// AutoScroll returns whether the log viewport is tracking the tail.
func (s *AppState) AutoScroll() bool { return s.autoScroll }

// LogBuffer returns the log buffer for the active LogView (empty if none).
func (s *AppState) LogBuffer() []LogEntry { return s.logBuf }

// LogOffset returns how many lines back from the tail the log viewport
// is currently scrolled (0 == pinned at the tail).
func (s *AppState) LogOffset() int { return s.logOffset }

// ViewModel returns the cached sorted+filtered container list ready for
// rendering.
func (s *AppState) ViewModel() []Container { return s.viewModel }

// Selected returns the currently selected container and true, or the
// zero Container and false if nothing is selected.
func (s *AppState) Selected() (Container, bool) {
	if s.selected < 0 || s.selected >= len(s.viewModel) {
		return Container{}, false
	}
	return s.viewModel[s.selected], true
}

// SelectedIndex returns the index into ViewModel() of the current
// selection, or -1.
func (s *AppState) SelectedIndex() int { return s.selected }

// Apply folds one event into the state machine. It is the only mutator
// apart from ExpireActionStatuses, which clears elapsed status lines.
func (s *AppState) Apply(event AppEvent) {
	switch e := event.(type) {
	case InitialContainerListEvent:
		s.applyInitialContainerList(e)
	case ContainerCreatedEvent:
		s.applyContainerCreated(e)
	case ContainerDestroyedEvent:
		s.applyContainerDestroyed(e)
	case ContainerStatEvent:
		s.applyContainerStat(e)
	case ContainerHealthChangedEvent:
		s.applyContainerHealthChanged(e)
	case ToggleShowAllEvent:
		s.showAll = !s.showAll
		s.recompute(true)
	case CycleSortFieldEvent:
		next := (s.sort.Field + 1) % 4
		s.sort = SortState{Field: next, Direction: DefaultDirection(next)}
		s.recompute(true)
	case SetSortFieldEvent:
		if e.Field == s.sort.Field {
			if s.sort.Direction == Asc {
				s.sort.Direction = Desc
			} else {
				s.sort.Direction = Asc
			}
		} else {
			s.sort = SortState{Field: e.Field, Direction: DefaultDirection(e.Field)}
		}
		s.recompute(true)
	case EnterSearchModeEvent:
		s.search = ""
		s.view = ViewState{Kind: ViewSearchMode}
		s.recompute(true)
	case SearchKeyEvent:
		s.search = ApplySearchEdit(s.search, e.Key)
		s.recompute(true)
	case CancelActionMenuEvent:
		s.view = ViewState{Kind: ViewContainerList}
	case ExitLogViewEvent:
		s.closeLogView()
	case ShowLogViewEvent:
		s.openLogView()
	case LogLineEvent:
		s.applyLogLine(e)
	case ScrollUpEvent:
		s.scrollUp()
	case ScrollDownEvent:
		s.scrollDown()
	case SelectPreviousEvent:
		s.selectDelta(-1)
	case SelectNextEvent:
		s.selectDelta(1)
	case EnterPressedEvent:
		s.enterPressed()
	case SelectActionUpEvent:
		s.selectActionDelta(-1)
	case SelectActionDownEvent:
		s.selectActionDelta(1)
	case ActionInProgressEvent:
		s.setStatus(e.Key, e.Action.String()+"...")
	case ActionSuccessEvent:
		s.setStatus(e.Key, e.Action.String()+" ok")
	case ActionErrorEvent:
		s.setStatus(e.Key, e.Action.String()+" failed: "+e.Message)
	case QuitEvent, ResizeEvent, DiagnosticEvent, OpenDozzleEvent, ToggleHelpEvent:
		// Handled entirely outside the state machine (process exit,
		// terminal resize, diagnostic logging, OS-level URL open, help
		// overlay toggle in the renderer); nothing to fold here.
	}
}

func (s *AppState) applyInitialContainerList(e InitialContainerListEvent) {
	keep := make(map[ContainerKey]bool, len(e.Containers))
	for i := range e.Containers {
		keep[e.Containers[i].Key] = true
	}
	for _, k := range s.order {
		if k.HostId == e.Host && !keep[k] {
			s.removeContainer(k)
		}
	}
	for i := range e.Containers {
		s.upsertContainer(e.Containers[i])
	}
	s.recompute(true)
}

func (s *AppState) applyContainerCreated(e ContainerCreatedEvent) {
	s.upsertContainer(e.Container)
	s.recompute(true)
}

func (s *AppState) upsertContainer(c Container) {
	if existing, ok := s.containers[c.Key]; ok {
		c.StatusLine = existing.StatusLine
		c.StatusExpireAt = existing.StatusExpireAt
		*existing = c
		return
	}
	cp := c
	s.containers[c.Key] = &cp
	s.order = append(s.order, c.Key)
	if s.SpawnStatWorker != nil {
		s.statCancel[c.Key] = s.SpawnStatWorker(c.Key)
	}
}

func (s *AppState) applyContainerDestroyed(e ContainerDestroyedEvent) {
	s.removeContainer(e.Key)
	if s.view.Kind == ViewLogView && s.view.LogTarget == e.Key {
		s.closeLogView()
	}
	if s.view.Kind == ViewActionMenu && s.view.ActionTarget == e.Key {
		s.view = ViewState{Kind: ViewContainerList}
	}
	s.recompute(true)
}

func (s *AppState) removeContainer(key ContainerKey) {
	if _, ok := s.containers[key]; !ok {
		return
	}
	if cancel, ok := s.statCancel[key]; ok && cancel != nil {
		cancel()
	}
	delete(s.statCancel, key)
	delete(s.containers, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *AppState) applyContainerStat(e ContainerStatEvent) {
	c, ok := s.containers[e.Key]
	if !ok {
		return
	}
	c.Stats = e.Stats
	// Stats refresh every sample regardless of the re-sort throttle below:
	// only the row *order* is throttled (spec.md §4.6), not the freshness
	// of the metrics a row displays. Patch the cached view model in place
	// so Selected()/ViewModel() see the new numbers immediately even when
	// recompute's full rebuild is about to be skipped.
	for i := range s.viewModel {
		if s.viewModel[i].Key == e.Key {
			s.viewModel[i].Stats = e.Stats
			break
		}
	}
	s.recompute(false)
}

func (s *AppState) applyContainerHealthChanged(e ContainerHealthChangedEvent) {
	c, ok := s.containers[e.Key]
	if !ok {
		return
	}
	c.Health = e.Health
	c.HasHealth = true
}

func (s *AppState) applyLogLine(e LogLineEvent) {
	if s.view.Kind != ViewLogView || s.view.LogTarget != e.Key {
		return
	}
	s.logBuf = append(s.logBuf, e.Entry)
	if !s.autoScroll {
		s.logOffset++
	}
}

func (s *AppState) openLogView() {
	c, ok := s.Selected()
	if !ok {
		return
	}
	s.closeLogView()
	s.view = ViewState{Kind: ViewLogView, LogTarget: c.Key}
	s.logBuf = nil
	s.autoScroll = true
	s.logOffset = 0
	if s.SpawnLogWorker != nil {
		s.logCancel = s.SpawnLogWorker(c.Key)
	}
}

func (s *AppState) closeLogView() {
	if s.logCancel != nil {
		s.logCancel()
		s.logCancel = nil
	}
	s.logBuf = nil
	s.autoScroll = true
	s.logOffset = 0
	if s.view.Kind == ViewLogView {
		s.view = ViewState{Kind: ViewContainerList}
	}
}

func (s *AppState) scrollUp() {
	if s.view.Kind != ViewLogView {
		return
	}
	if s.logOffset < len(s.logBuf)-1 {
		s.logOffset++
	}
	s.autoScroll = false
}

func (s *AppState) scrollDown() {
	if s.view.Kind != ViewLogView {
		return
	}
	if s.logOffset > 0 {
		s.logOffset--
	}
	if s.logOffset == 0 {
		s.autoScroll = true
	}
}

func (s *AppState) selectDelta(delta int) {
	if s.view.Kind != ViewContainerList && s.view.Kind != ViewSearchMode {
		return
	}
	if len(s.viewModel) == 0 {
		s.selected = -1
		return
	}
	next := s.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(s.viewModel) {
		next = len(s.viewModel) - 1
	}
	s.selected = next
}

func (s *AppState) selectActionDelta(delta int) {
	if s.view.Kind != ViewActionMenu {
		return
	}
	c, ok := s.containers[s.view.ActionTarget]
	if !ok {
		return
	}
	actions := AvailableActions(c.State)
	if len(actions) == 0 {
		return
	}
	next := (s.view.ActionIndex + delta) % len(actions)
	if next < 0 {
		next += len(actions)
	}
	s.view.ActionIndex = next
}

func (s *AppState) enterPressed() {
	switch s.view.Kind {
	case ViewContainerList:
		c, ok := s.Selected()
		if !ok {
			return
		}
		actions := AvailableActions(c.State)
		if len(actions) == 0 {
			return
		}
		s.view = ViewState{Kind: ViewActionMenu, ActionTarget: c.Key, ActionIndex: 0}
	case ViewActionMenu:
		c, ok := s.containers[s.view.ActionTarget]
		if !ok {
			s.view = ViewState{Kind: ViewContainerList}
			return
		}
		actions := AvailableActions(c.State)
		if s.view.ActionIndex >= 0 && s.view.ActionIndex < len(actions) && s.ExecuteAction != nil {
			s.ExecuteAction(c.Key, actions[s.view.ActionIndex])
		}
		s.view = ViewState{Kind: ViewContainerList}
	case ViewSearchMode:
		s.view = ViewState{Kind: ViewContainerList}
	}
}

func (s *AppState) setStatus(key ContainerKey, line string) {
	c, ok := s.containers[key]
	if !ok {
		return
	}
	c.StatusLine = line
	c.StatusExpireAt = s.now().Add(statusDisplay)
}

// ExpireActionStatuses clears any per-container status line whose display
// window has elapsed. The Main Loop calls this once per drain cycle.
func (s *AppState) ExpireActionStatuses(now time.Time) {
	for _, c := range s.containers {
		if c.StatusLine != "" && now.After(c.StatusExpireAt) {
			c.StatusLine = ""
		}
	}
}

// passesFilters implements the show-all and search predicates that
// determine whether a container is present in the view model (spec.md
// §4.6, §8 property 5).
func (s *AppState) passesFilters(c Container) bool {
	if !s.showAll && !isActiveState(c.State) {
		return false
	}
	return MatchesSearch(s.search, c.Name, c.Key.ContainerId)
}

// isActiveState decides which containers show up without show-all, the
// same split `docker ps` (no `-a`) draws: anything still "up" in some
// form, as opposed to a container that has stopped or never started.
func isActiveState(st ContainerState) bool {
	switch st {
	case StateRunning, StateRestarting, StatePaused, StateRemoving:
		return true
	default:
		return false
	}
}

// recompute rebuilds the cached view model. force bypasses the re-sort
// throttle (user input and membership changes always bypass it per
// spec.md §4.6); otherwise a rebuild triggered by stats-only pressure is
// subject to the 3s throttle (spec.md §8 property 7).
func (s *AppState) recompute(force bool) {
	if !force {
		if s.resortTimer && s.now().Sub(s.lastResort) < resortThrottle {
			return
		}
	}
	s.lastResort = s.now()
	s.resortTimer = true

	var selectedKey ContainerKey
	hadSelection := false
	if c, ok := s.Selected(); ok {
		selectedKey = c.Key
		hadSelection = true
	}

	filtered := make([]Container, 0, len(s.order))
	for _, k := range s.order {
		c := s.containers[k]
		if c == nil || !s.passesFilters(*c) {
			continue
		}
		filtered = append(filtered, *c)
	}
	s.viewModel = SortContainers(filtered, s.sort)

	switch {
	case len(s.viewModel) == 0:
		s.selected = -1
	case hadSelection:
		idx := -1
		for i, c := range s.viewModel {
			if c.Key == selectedKey {
				idx = i
				break
			}
		}
		if idx >= 0 {
			s.selected = idx
		} else if s.selected >= len(s.viewModel) {
			s.selected = len(s.viewModel) - 1
		} else if s.selected < 0 {
			s.selected = 0
		}
	default:
		s.selected = 0
	}
}
