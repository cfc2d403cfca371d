package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/reconcile"
)

type fakeStore struct {
	mu       sync.Mutex
	projects []claudehistory.Project
	messages map[string][]json.RawMessage
	deleted  []string
	failWith error
}

func (f *fakeStore) ListProjects(context.Context) []claudehistory.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects
}

func (f *fakeStore) Messages(_ context.Context, name, id string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[name+"/"+id]
}

func (f *fakeStore) DeleteSession(_ context.Context, name, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, name+"/"+id)
	for i, p := range f.projects {
		if p.Name != name {
			continue
		}
		kept := make([]claudehistory.Session, 0, len(p.Sessions))
		for _, s := range p.Sessions {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		f.projects[i].Sessions = kept
	}
	return nil
}

func newTestScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(func() { screen.Fini() })
	return screen
}

func newTestState(projects []claudehistory.Project) *uiState {
	holder := reconcile.NewHolder(nil)
	holder.Replace(projects)
	return newUIState(holder, config.UISettings{})
}

func sampleProjects() []claudehistory.Project {
	return []claudehistory.Project{
		{
			Name:         "-work-alpha",
			DisplayName:  "alpha",
			ResolvedPath: "/work/alpha",
			Sessions: []claudehistory.Session{
				{ID: "a1", Summary: "first alpha", MessageCount: 2, LastActivity: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				{ID: "a2", Summary: "second alpha", Cwd: "/work/alpha/sub"},
			},
			SessionMeta: claudehistory.SessionMeta{Total: 2},
		},
		{
			Name:         "-work-beta",
			DisplayName:  "beta",
			ResolvedPath: "/work/beta",
			Sessions:     []claudehistory.Session{{ID: "b1", Summary: "only beta"}},
			SessionMeta:  claudehistory.SessionMeta{Total: 1},
		},
	}
}

func pressRune(t *testing.T, screen tcell.Screen, state *uiState, opts Options, ch rune) *Selection {
	t.Helper()
	sel, err := handleKey(context.Background(), screen, state, opts, tcell.NewEventKey(tcell.KeyRune, ch, 0))
	if err != nil {
		t.Fatalf("handleKey(%q) error: %v", ch, err)
	}
	return sel
}

func drawOnce(t *testing.T, screen tcell.Screen, state *uiState, opts Options) {
	t.Helper()
	if err := draw(context.Background(), screen, state, opts, make(chan previewEvent, 8)); err != nil {
		t.Fatalf("draw error: %v", err)
	}
}

func TestHandleKeyQuit(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())

	_, err := handleKey(context.Background(), screen, state, Options{}, tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if !errors.Is(err, errQuit) {
		t.Fatalf("expected quit error, got %v", err)
	}
	_, err = handleKey(context.Background(), screen, state, Options{}, tcell.NewEventKey(tcell.KeyCtrlC, 0, 0))
	if !errors.Is(err, errQuit) {
		t.Fatalf("expected quit on ctrl+c, got %v", err)
	}
}

func TestNavigationUpdatesHolderSelection(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	opts := Options{Store: &fakeStore{}}

	drawOnce(t, screen, state, opts)
	if sel := state.holder.Selection(); sel.Project != "-work-alpha" || sel.Session != "a1" {
		t.Fatalf("unexpected initial selection %#v", sel)
	}

	pressRune(t, screen, state, opts, 'j')
	drawOnce(t, screen, state, opts)
	if sel := state.holder.Selection(); sel.Project != "-work-beta" || sel.Session != "b1" {
		t.Fatalf("expected beta selected, got %#v", sel)
	}

	pressRune(t, screen, state, opts, 'k')
	pressRune(t, screen, state, opts, 'l')
	pressRune(t, screen, state, opts, 'j')
	drawOnce(t, screen, state, opts)
	if sel := state.holder.Selection(); sel.Project != "-work-alpha" || sel.Session != "a2" {
		t.Fatalf("expected second alpha session, got %#v", sel)
	}
}

func TestHandleKeyEnterOpensSession(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	state.focus = "sessions"
	state.lastListFocus = "sessions"
	state.sessionState.selected = 1

	sel, err := handleKey(context.Background(), screen, state, Options{}, tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if err != nil {
		t.Fatalf("handleKey error: %v", err)
	}
	if sel == nil || sel.Session.ID != "a2" || sel.Project.Name != "-work-alpha" {
		t.Fatalf("unexpected selection %#v", sel)
	}
	if sel.Cwd != "/work/alpha/sub" {
		t.Fatalf("expected session cwd, got %q", sel.Cwd)
	}

	state.sessionState.selected = 0
	sel, _ = handleKey(context.Background(), screen, state, Options{}, tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if sel == nil || sel.Cwd != "/work/alpha" {
		t.Fatalf("expected project path fallback, got %#v", sel)
	}
}

func TestActiveSessionHoldsBackRefresh(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	opts := Options{Store: &fakeStore{}}
	drawOnce(t, screen, state, opts)

	pressRune(t, screen, state, opts, 'a')
	if !state.holder.Active().IsActive("a1") {
		t.Fatalf("expected a1 marked active")
	}
	drawOnce(t, screen, state, opts)
	if !strings.Contains(readScreenLine(screen, 39), "1 active") {
		t.Fatalf("expected active count in status, got %q", readScreenLine(screen, 39))
	}

	previous := state.holder.Snapshot()
	changed := sampleProjects()
	changed[0].Sessions[0].MessageCount = 9
	accepted := state.holder.Offer(changed)
	applyRefresh(state, previous, accepted)
	if accepted {
		t.Fatalf("expected refresh touching the active session to be held back")
	}
	if !strings.Contains(state.notice, "held") {
		t.Fatalf("expected notice, got %q", state.notice)
	}

	pressRune(t, screen, state, opts, 'a')
	if state.holder.Active().IsActive("a1") {
		t.Fatalf("expected a1 unmarked")
	}
	accepted = state.holder.Offer(changed)
	applyRefresh(state, previous, accepted)
	if !accepted || state.notice != "" {
		t.Fatalf("expected refresh applied, got accepted=%v notice=%q", accepted, state.notice)
	}
}

func TestApplyRefreshRelocatesSelection(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	opts := Options{Store: &fakeStore{}}
	state.projectState.selected = 1
	drawOnce(t, screen, state, opts)

	previous := state.holder.Snapshot()
	reordered := []claudehistory.Project{sampleProjects()[1], sampleProjects()[0]}
	if !state.holder.Offer(reordered) {
		t.Fatalf("expected refresh accepted")
	}
	applyRefresh(state, previous, true)
	if state.projectState.selected != 0 {
		t.Fatalf("expected cursor to follow beta to index 0, got %d", state.projectState.selected)
	}
}

func TestPendingSessionAdoptsNewID(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	opts := Options{Store: &fakeStore{}}
	state.projectState.selected = 1
	drawOnce(t, screen, state, opts)

	if _, err := handleKey(context.Background(), screen, state, opts, tcell.NewEventKey(tcell.KeyCtrlN, 0, 0)); err != nil {
		t.Fatalf("handleKey error: %v", err)
	}
	if !state.holder.Active().HasTemporary() {
		t.Fatalf("expected a pending session")
	}

	previous := state.holder.Snapshot()
	next := sampleProjects()
	next[1].Sessions = append([]claudehistory.Session{{ID: "b2", Summary: "fresh"}}, next[1].Sessions...)
	state.holder.Select("-work-beta", "")
	if !state.holder.Offer(next) {
		t.Fatalf("expected refresh accepted without a selected session")
	}
	applyRefresh(state, previous, true)

	active := state.holder.Active()
	if active.HasTemporary() || !active.IsActive("b2") {
		t.Fatalf("expected temporary id replaced by b2, got %v", active.IDs())
	}
	if sel := state.holder.Selection(); sel.Session != "b2" {
		t.Fatalf("expected new session selected, got %#v", sel)
	}
}

func TestTogglePendingSessionAbandons(t *testing.T) {
	state := newTestState(sampleProjects())
	togglePendingSession(state)
	togglePendingSession(state)
	if state.holder.Active().Len() != 0 {
		t.Fatalf("expected pending session abandoned, got %v", state.holder.Active().IDs())
	}
}

func TestDeleteSessionConfirm(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	store := &fakeStore{projects: sampleProjects()}
	state := newTestState(store.projects)
	opts := Options{Store: store}
	state.focus = "sessions"
	state.lastListFocus = "sessions"

	pressRune(t, screen, state, opts, 'd')
	if !state.confirmDelete {
		t.Fatalf("expected confirmation prompt")
	}
	pressRune(t, screen, state, opts, 'x')
	if state.confirmDelete || len(store.deleted) != 0 {
		t.Fatalf("expected delete cancelled")
	}

	pressRune(t, screen, state, opts, 'd')
	pressRune(t, screen, state, opts, 'y')
	if len(store.deleted) != 1 || store.deleted[0] != "-work-alpha/a1" {
		t.Fatalf("unexpected deletes %v", store.deleted)
	}
	project, _ := claudehistory.FindProject(state.holder.Snapshot(), "-work-alpha")
	if len(project.Sessions) != 1 {
		t.Fatalf("expected snapshot reloaded, got %#v", project.Sessions)
	}

	store.failWith = errors.New("disk full")
	pressRune(t, screen, state, opts, 'd')
	pressRune(t, screen, state, opts, 'y')
	if !strings.Contains(state.notice, "disk full") {
		t.Fatalf("expected failure notice, got %q", state.notice)
	}
}

func TestDeleteIgnoredOnProjects(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	pressRune(t, screen, state, Options{Store: &fakeStore{}}, 'd')
	if state.confirmDelete {
		t.Fatalf("expected delete to need session focus")
	}
}

func TestEnsurePreviewLoadsFromStore(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	store := &fakeStore{messages: map[string][]json.RawMessage{
		"-work-alpha/a1": {
			json.RawMessage(`{"type":"user","message":{"role":"user","content":"hello preview"}}`),
			json.RawMessage(`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t","name":"Bash","input":{"cmd":"ls"}}]}}`),
		},
	}}
	state := newTestState(sampleProjects())
	opts := Options{Store: store}
	previewCh := make(chan previewEvent, 8)

	ensurePreview(context.Background(), screen, state, opts, "-work-alpha", "a1", previewCh)
	select {
	case ev := <-previewCh:
		state.previewCache[ev.key] = ev.text
	case <-time.After(2 * time.Second):
		t.Fatalf("preview not delivered")
	}
	text := previewText(state, sampleProjects()[0], sampleProjects()[0].Sessions[0], true)
	if !strings.Contains(text, "hello preview") || strings.Contains(text, "Bash") {
		t.Fatalf("unexpected preview %q", text)
	}

	pressRune(t, screen, state, opts, 't')
	if previewText(state, sampleProjects()[0], sampleProjects()[0].Sessions[0], true) != "" {
		t.Fatalf("expected toggling tools to use a separate cache entry")
	}
	ensurePreview(context.Background(), screen, state, opts, "-work-alpha", "a1", previewCh)
	ev := <-previewCh
	if !strings.Contains(ev.text, "Bash") {
		t.Fatalf("expected tool block once expanded, got %q", ev.text)
	}
}

func TestPreviewArrowScrollsWhenFocused(t *testing.T) {
	screen := newTestScreen(t, 60, 12)
	state := newTestState(sampleProjects())
	state.focus = "preview"
	state.lastListFocus = "sessions"
	state.previewCache[previewKey(state, "-work-alpha", "a1")] = strings.Repeat("line ", 80)

	_, err := handleKey(context.Background(), screen, state, Options{}, tcell.NewEventKey(tcell.KeyDown, 0, 0))
	if err != nil {
		t.Fatalf("handleKey error: %v", err)
	}
	if state.previewState.scroll == 0 {
		t.Fatalf("expected preview scroll to move")
	}
}

func TestAutoScrollToBottom(t *testing.T) {
	screen := newTestScreen(t, 120, 20)
	state := newTestState(sampleProjects())
	state.previewCache[previewKey(state, "-work-alpha", "a1")] = strings.Repeat("line\n", 60)
	opts := Options{Store: &fakeStore{}, UI: config.UISettings{AutoScrollToBottom: true}}

	drawOnce(t, screen, state, opts)
	if state.previewState.scroll == 0 {
		t.Fatalf("expected preview scrolled to the end")
	}
	state.previewState.scroll = 0
	drawOnce(t, screen, state, opts)
	if state.previewState.scroll != 0 {
		t.Fatalf("expected auto scroll only once per session")
	}
}

func TestPreviewSearchMatches(t *testing.T) {
	screen := newTestScreen(t, 80, 12)
	state := newTestState(sampleProjects())
	state.focus = "preview"
	state.lastListFocus = "sessions"
	state.previewCache[previewKey(state, "-work-alpha", "a1")] = "gamma\nbeta\ngamma"
	opts := Options{Store: &fakeStore{}}

	pressRune(t, screen, state, opts, '/')
	for _, ch := range "gamma" {
		pressRune(t, screen, state, opts, ch)
	}
	if _, err := handleKey(context.Background(), screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0)); err != nil {
		t.Fatalf("handleKey error: %v", err)
	}

	drawOnce(t, screen, state, opts)
	if len(state.previewMatches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(state.previewMatches))
	}
	pressRune(t, screen, state, opts, 'n')
	if state.previewMatchIdx != 1 {
		t.Fatalf("expected next match, got %d", state.previewMatchIdx)
	}
	pressRune(t, screen, state, opts, 'N')
	pressRune(t, screen, state, opts, 'N')
	if state.previewMatchIdx != 1 {
		t.Fatalf("expected wrap to last match, got %d", state.previewMatchIdx)
	}
}

func TestProjectFilter(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	state := newTestState(sampleProjects())
	opts := Options{Store: &fakeStore{}}

	pressRune(t, screen, state, opts, '/')
	for _, ch := range "BETA" {
		pressRune(t, screen, state, opts, ch)
	}
	if _, err := handleKey(context.Background(), screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0)); err != nil {
		t.Fatalf("handleKey error: %v", err)
	}
	if state.projectFilter != "BETA" {
		t.Fatalf("unexpected filter %q", state.projectFilter)
	}
	drawOnce(t, screen, state, opts)
	if sel := state.holder.Selection(); sel.Project != "-work-beta" {
		t.Fatalf("expected filtered selection, got %#v", sel)
	}
	if got := filterSessions(buildSessionItems(sampleProjects()[0], reconcile.NewActive()), "SECOND"); len(got) != 1 {
		t.Fatalf("expected one session match, got %d", len(got))
	}
}

func TestDrawShowsProjectsAndSessions(t *testing.T) {
	screen := newTestScreen(t, 120, 20)
	state := newTestState(sampleProjects())
	state.holder.Active().MarkActive("a2")
	drawOnce(t, screen, state, Options{Store: &fakeStore{}, Version: "1.2.0"})

	var all strings.Builder
	for y := 0; y < 20; y++ {
		all.WriteString(readScreenLine(screen, y))
		all.WriteString("\n")
	}
	text := all.String()
	for _, want := range []string{"alpha (2)", "beta (1)", "first alpha", "* ", "Path: /work/alpha", "v1.2.0"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q on screen:\n%s", want, text)
		}
	}
}

func TestDrawEmpty(t *testing.T) {
	screen := newTestScreen(t, 60, 12)
	state := newTestState(nil)
	drawOnce(t, screen, state, Options{Store: &fakeStore{}})
	found := false
	for y := 0; y < 12; y++ {
		if strings.Contains(readScreenLine(screen, y), "No projects found.") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty message")
	}
	if sel := state.holder.Selection(); sel.Project != "" {
		t.Fatalf("expected empty selection, got %#v", sel)
	}
}

func TestBrowseStopsOnCanceledContext(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sel, err := Browse(ctx, Options{Store: &fakeStore{projects: sampleProjects()}, Screen: screen})
	if sel != nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %#v, %v", sel, err)
	}
	if _, err := Browse(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without a store")
	}
}

func TestComputeLayoutModes(t *testing.T) {
	cases := []struct {
		w, h int
		want string
	}{
		{160, 40, "3col"},
		{100, 30, "2col"},
		{60, 20, "1col"},
	}
	for _, tc := range cases {
		screen := newTestScreen(t, tc.w, tc.h)
		if got := computeLayout(screen).mode; got != tc.want {
			t.Fatalf("%dx%d: expected %s, got %s", tc.w, tc.h, tc.want, got)
		}
	}
}

func TestDisplayWidthHelpers(t *testing.T) {
	txt := "中文ABC"
	if got := displayWidth(txt); got != 7 {
		t.Fatalf("expected display width 7, got %d", got)
	}
	if got := truncate(txt, 4); got != "中文" {
		t.Fatalf("expected truncate to 中文, got %q", got)
	}
	padded := padRight("中文", 6)
	if got := displayWidth(padded); got != 6 {
		t.Fatalf("expected padded width 6, got %d (%q)", got, padded)
	}
	if got := wrapText("abcdef", 4); len(got) != 2 || got[1] != "ef" {
		t.Fatalf("unexpected wrap %#v", got)
	}
	if versionLabel("") != "dev" || versionLabel("2.0") != "v2.0" {
		t.Fatalf("unexpected version labels")
	}
}

func readScreenLine(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var buf strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		if ch == 0 {
			ch = ' '
		}
		buf.WriteRune(ch)
	}
	return buf.String()
}
