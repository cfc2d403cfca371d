package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/reconcile"
)

var errQuit = errors.New("quit")

const previewCharsPerMessage = 400

// Store is the part of the session store the browser needs.
type Store interface {
	ListProjects(ctx context.Context) []claudehistory.Project
	Messages(ctx context.Context, name, sessionID string) []json.RawMessage
	DeleteSession(ctx context.Context, name, sessionID string) error
}

// Selection is what the user picked to open.
type Selection struct {
	Project claudehistory.Project `json:"project"`
	Session claudehistory.Session `json:"session"`
	Cwd     string                `json:"cwd"`
}

type Options struct {
	Store  Store
	Holder *reconcile.Holder
	// Changes signals that the projects directory changed on disk.
	Changes <-chan struct{}
	UI      config.UISettings
	Version string
	// Screen overrides the terminal screen.
	Screen tcell.Screen
}

type uiEvent struct {
	when     time.Time
	kind     string
	accepted bool
}

func (e *uiEvent) When() time.Time { return e.when }

type previewEvent struct {
	key  string
	text string
}

type projectItem struct {
	project claudehistory.Project
	label   string
}

type sessionItem struct {
	session claudehistory.Session
	label   string
	active  bool
}

type uiState struct {
	holder        *reconcile.Holder
	focus         string
	lastListFocus string
	inputMode     string
	inputBuffer   string
	projectFilter string
	sessionFilter string
	projectState  listState
	sessionState  listState
	previewState  previewState

	expandTools   bool
	showRaw       bool
	confirmDelete bool
	notice        string

	previewCache     map[string]string
	previewLoading   map[string]bool
	previewSearch    string
	previewSearchBuf string
	previewMatches   []int
	previewMatchIdx  int
	previewSearchKey string
	autoScrolledKey  string
}

func newUIState(holder *reconcile.Holder, ui config.UISettings) *uiState {
	return &uiState{
		holder:         holder,
		focus:          "projects",
		lastListFocus:  "projects",
		expandTools:    ui.AutoExpandTools,
		showRaw:        ui.ShowRawParameters,
		previewCache:   map[string]string{},
		previewLoading: map[string]bool{},
	}
}

// Browse runs the interactive browser until the user quits or opens a
// session. Background changes are offered to the holder so an active session
// is not disturbed.
func Browse(ctx context.Context, opts Options) (*Selection, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Holder == nil {
		opts.Holder = reconcile.NewHolder(nil)
	}
	opts.Holder.Replace(opts.Store.ListProjects(ctx))
	state := newUIState(opts.Holder, opts.UI)

	screen := opts.Screen
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	defer screen.Fini()

	done := make(chan struct{})
	defer close(done)

	if opts.Changes != nil {
		go func() {
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					return
				case _, ok := <-opts.Changes:
					if !ok {
						return
					}
					accepted := opts.Holder.Offer(opts.Store.ListProjects(ctx))
					screen.PostEvent(&uiEvent{when: time.Now(), kind: "refresh", accepted: accepted})
				}
			}
		}()
	}

	previewCh := make(chan previewEvent, 8)

	go func() {
		select {
		case <-ctx.Done():
			screen.PostEvent(&uiEvent{when: time.Now(), kind: "quit"})
		case <-done:
		}
	}()

	var previous []claudehistory.Project
	for {
		previous = opts.Holder.Snapshot()
		if err := draw(ctx, screen, state, opts, previewCh); err != nil {
			return nil, err
		}
		ev := screen.PollEvent()
		if ev == nil {
			return nil, ctx.Err()
		}

		switch tev := ev.(type) {
		case *uiEvent:
			switch tev.kind {
			case "quit":
				return nil, ctx.Err()
			case "refresh":
				applyRefresh(state, previous, tev.accepted)
			case "preview":
				drainPreview(state, previewCh)
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			selection, err := handleKey(ctx, screen, state, opts, tev)
			if err != nil {
				if errors.Is(err, errQuit) {
					return nil, nil
				}
				return nil, err
			}
			if selection != nil {
				return selection, nil
			}
		}
	}
}

func drainPreview(state *uiState, previewCh <-chan previewEvent) {
	for {
		select {
		case ev := <-previewCh:
			state.previewCache[ev.key] = ev.text
			delete(state.previewLoading, ev.key)
		default:
			return
		}
	}
}

// applyRefresh moves the cursors onto the holder's selection after a
// background refresh, or notes that the refresh was held back.
func applyRefresh(state *uiState, previous []claudehistory.Project, accepted bool) {
	if !accepted {
		state.notice = "Update held while a session is active"
		return
	}
	state.notice = ""
	state.previewCache = map[string]string{}
	state.previewLoading = map[string]bool{}
	adoptNewSession(state.holder, previous)
	relocateSelection(state)
}

// adoptNewSession swaps a pending temporary id for the first session that
// appeared in the selected project.
func adoptNewSession(holder *reconcile.Holder, previous []claudehistory.Project) {
	active := holder.Active()
	if !active.HasTemporary() {
		return
	}
	sel := holder.Selection()
	if sel.Project == "" {
		return
	}
	current, ok := claudehistory.FindProject(holder.Snapshot(), sel.Project)
	if !ok {
		return
	}
	before, _ := claudehistory.FindProject(previous, sel.Project)
	for _, sess := range current.Sessions {
		if _, seen := before.FindSession(sess.ID); seen {
			continue
		}
		active.ReplaceTemporary(sess.ID)
		holder.Select(sel.Project, sess.ID)
		return
	}
}

func relocateSelection(state *uiState) {
	sel := state.holder.Selection()
	projects := filterProjects(buildProjectItems(state.holder.Snapshot()), state.projectFilter)
	state.projectState.selected = 0
	for i, it := range projects {
		if it.project.Name == sel.Project {
			state.projectState.selected = i
			break
		}
	}
	project := selectedProject(projects, state.projectState.selected)
	sessions := filterSessions(buildSessionItems(project, state.holder.Active()), state.sessionFilter)
	state.sessionState.selected = 0
	for i, it := range sessions {
		if it.session.ID == sel.Session {
			state.sessionState.selected = i
			break
		}
	}
}

func reload(ctx context.Context, state *uiState, opts Options) {
	state.holder.Replace(opts.Store.ListProjects(ctx))
	state.previewCache = map[string]string{}
	state.previewLoading = map[string]bool{}
	state.notice = ""
	relocateSelection(state)
}

func handleKey(
	ctx context.Context,
	screen tcell.Screen,
	state *uiState,
	opts Options,
	ev *tcell.EventKey,
) (*Selection, error) {
	if state.inputMode != "" {
		handleInputKey(state, ev)
		return nil, nil
	}

	layoutMode := computeLayout(screen)
	projects := filterProjects(buildProjectItems(state.holder.Snapshot()), state.projectFilter)
	state.projectState.clamp(len(projects))
	project := selectedProject(projects, state.projectState.selected)
	sessions := filterSessions(buildSessionItems(project, state.holder.Active()), state.sessionFilter)
	state.sessionState.clamp(len(sessions))
	session, hasSession := selectedSession(sessions, state.sessionState.selected)

	if state.confirmDelete {
		state.confirmDelete = false
		if ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y') && hasSession {
			if err := opts.Store.DeleteSession(ctx, project.Name, session.ID); err != nil {
				state.notice = fmt.Sprintf("Delete failed: %v", err)
				return nil, nil
			}
			state.holder.Active().MarkInactive(session.ID)
			reload(ctx, state, opts)
			state.notice = "Deleted session " + session.ID
			return nil, nil
		}
		state.notice = "Delete cancelled"
		return nil, nil
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyESC:
		return nil, errQuit
	case tcell.KeyCtrlR:
		reload(ctx, state, opts)
		return nil, nil
	case tcell.KeyCtrlN:
		togglePendingSession(state)
		return nil, nil
	case tcell.KeyTab, tcell.KeyRight:
		focusNext(state)
		return nil, nil
	case tcell.KeyLeft:
		focusPrev(state)
		return nil, nil
	case tcell.KeyEnter, tcell.KeyCtrlJ:
		if hasSession {
			return &Selection{Project: project, Session: session, Cwd: openCwd(project, session)}, nil
		}
		return nil, nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return nil, errQuit
		case 'r', 'R':
			reload(ctx, state, opts)
			return nil, nil
		case '/':
			startSearch(state)
			return nil, nil
		case 'h', 'H':
			focusPrev(state)
			return nil, nil
		case 'l', 'L':
			focusNext(state)
			return nil, nil
		case 'v', 'V':
			state.showRaw = !state.showRaw
			return nil, nil
		case 't', 'T':
			state.expandTools = !state.expandTools
			return nil, nil
		case 'a', 'A':
			if hasSession {
				toggleActive(state.holder.Active(), session.ID)
			}
			return nil, nil
		case 'd', 'D':
			if hasSession && state.focus != "projects" {
				state.confirmDelete = true
			}
			return nil, nil
		case 'n', 'N':
			if state.focus == "preview" && len(state.previewMatches) > 0 {
				if ev.Rune() == 'n' {
					state.previewMatchIdx = (state.previewMatchIdx + 1) % len(state.previewMatches)
				} else {
					state.previewMatchIdx = (state.previewMatchIdx - 1 + len(state.previewMatches)) % len(state.previewMatches)
				}
				matchLine := state.previewMatches[state.previewMatchIdx]
				state.previewState.scroll = previewScrollToMatch(matchLine, max(0, layoutMode.preview.h-2))
				return nil, nil
			}
		}
	}

	listFocus := state.focus
	if layoutMode.mode == "1col" && state.focus == "preview" {
		listFocus = state.lastListFocus
	}

	if state.focus == "preview" && isPreviewNavKey(ev) {
		lines := buildPreviewLines(project, session, hasSession, state, previewText(state, project, session, hasSession))
		lines = buildWrappedLines(lines, max(0, layoutMode.preview.w-2))
		applyPreviewNavigation(&state.previewState, len(lines), max(0, layoutMode.preview.h-2), ev)
		return nil, nil
	}

	switch listFocus {
	case "projects":
		prev := state.projectState.selected
		applyListNavigation(&state.projectState, len(projects), layoutMode.projects.h-2, ev)
		if state.projectState.selected != prev {
			state.sessionState = listState{}
			state.previewState.scroll = 0
		}
	case "sessions":
		prev := state.sessionState.selected
		applyListNavigation(&state.sessionState, len(sessions), layoutMode.sessions.h-2, ev)
		if state.sessionState.selected != prev {
			state.previewState.scroll = 0
		}
	}
	return nil, nil
}

func handleInputKey(state *uiState, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyESC:
		state.previewSearchBuf = state.previewSearch
		state.inputMode = ""
		state.inputBuffer = ""
	case tcell.KeyEnter:
		value := strings.TrimSpace(state.inputBuffer)
		switch state.inputMode {
		case "projects":
			state.projectFilter = value
			state.projectState = listState{}
			state.sessionState = listState{}
		case "sessions":
			state.sessionFilter = value
			state.sessionState = listState{}
		case "preview":
			state.previewSearch = value
			state.previewSearchBuf = value
			state.previewMatchIdx = 0
			state.previewSearchKey = ""
		}
		state.inputMode = ""
		state.inputBuffer = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(state.inputBuffer); len(r) > 0 {
			state.inputBuffer = string(r[:len(r)-1])
		}
		if state.inputMode == "preview" {
			state.previewSearchBuf = state.inputBuffer
		}
	case tcell.KeyRune:
		if ch := ev.Rune(); ch >= 32 {
			state.inputBuffer += string(ch)
			if state.inputMode == "preview" {
				state.previewSearchBuf = state.inputBuffer
			}
		}
	}
}

func startSearch(state *uiState) {
	state.inputMode = state.focus
	switch state.focus {
	case "projects":
		state.inputBuffer = state.projectFilter
	case "sessions":
		state.inputBuffer = state.sessionFilter
	case "preview":
		state.inputBuffer = state.previewSearch
		state.previewSearchBuf = state.previewSearch
	}
}

func focusNext(state *uiState) {
	switch state.focus {
	case "projects":
		state.focus = "sessions"
		state.lastListFocus = "sessions"
	case "sessions":
		state.focus = "preview"
	default:
		state.focus = "projects"
		state.lastListFocus = "projects"
	}
}

func focusPrev(state *uiState) {
	if state.focus == "preview" {
		state.focus = state.lastListFocus
		return
	}
	state.focus = "projects"
	state.lastListFocus = "projects"
}

func toggleActive(active *reconcile.Active, id string) {
	if active.IsActive(id) {
		active.MarkInactive(id)
		return
	}
	active.MarkActive(id)
}

// togglePendingSession starts or abandons a session that has no id yet.
func togglePendingSession(state *uiState) {
	active := state.holder.Active()
	if active.HasTemporary() {
		for _, id := range active.IDs() {
			if reconcile.IsTemporaryID(id) {
				active.MarkInactive(id)
			}
		}
		state.notice = "New session abandoned"
		return
	}
	active.NewTemporaryID()
	state.notice = "Waiting for new session"
}

func openCwd(project claudehistory.Project, session claudehistory.Session) string {
	if session.Cwd != "" {
		return session.Cwd
	}
	return project.ResolvedPath
}

func draw(ctx context.Context, screen tcell.Screen, state *uiState, opts Options, previewCh chan<- previewEvent) error {
	screen.Clear()

	layoutMode := computeLayout(screen)

	projects := filterProjects(buildProjectItems(state.holder.Snapshot()), state.projectFilter)
	state.projectState.clamp(len(projects))
	state.projectState.ensureVisible(layoutMode.projects.h-2, len(projects))
	project := selectedProject(projects, state.projectState.selected)

	sessions := filterSessions(buildSessionItems(project, state.holder.Active()), state.sessionFilter)
	state.sessionState.clamp(len(sessions))
	state.sessionState.ensureVisible(layoutMode.sessions.h-2, len(sessions))
	session, hasSession := selectedSession(sessions, state.sessionState.selected)

	sessionRef := ""
	if hasSession {
		sessionRef = session.ID
	}
	state.holder.Select(project.Name, sessionRef)

	listFocus := state.focus
	if layoutMode.mode == "1col" && state.focus == "preview" {
		listFocus = state.lastListFocus
	}

	projectFilter := state.projectFilter
	sessionFilter := state.sessionFilter
	if state.inputMode == "projects" {
		projectFilter = state.inputBuffer
	}
	if state.inputMode == "sessions" {
		sessionFilter = state.inputBuffer
	}

	if layoutMode.mode == "1col" {
		if listFocus == "sessions" {
			drawBox(screen, layoutMode.sessions, "Sessions", true, sessionFilter)
			drawList(screen, layoutMode.sessions, renderSessionRows(sessions, true, state.sessionState, layoutMode.sessions.h-2))
		} else {
			drawBox(screen, layoutMode.projects, "Projects", listFocus == "projects", projectFilter)
			drawList(screen, layoutMode.projects, renderProjectRows(projects, listFocus == "projects", state.projectState, layoutMode.projects.h-2))
		}
	} else {
		drawBox(screen, layoutMode.projects, "Projects", state.focus == "projects", projectFilter)
		drawList(screen, layoutMode.projects, renderProjectRows(projects, state.focus == "projects", state.projectState, layoutMode.projects.h-2))
		drawBox(screen, layoutMode.sessions, "Sessions", state.focus == "sessions", sessionFilter)
		drawList(screen, layoutMode.sessions, renderSessionRows(sessions, state.focus == "sessions", state.sessionState, layoutMode.sessions.h-2))
	}

	if hasSession {
		ensurePreview(ctx, screen, state, opts, project.Name, session.ID, previewCh)
	}

	previewFilter := state.previewSearch
	if state.inputMode == "preview" {
		previewFilter = state.previewSearchBuf
	}
	drawBox(screen, layoutMode.preview, "Preview", state.focus == "preview", previewFilter)
	text := previewText(state, project, session, hasSession)
	lines := buildPreviewLines(project, session, hasSession, state, text)
	lines = buildWrappedLines(lines, max(0, layoutMode.preview.w-2))
	viewH := max(0, layoutMode.preview.h-2)

	key := previewKey(state, project.Name, session.ID)
	if opts.UI.AutoScrollToBottom && hasSession && text != "" && state.autoScrolledKey != key {
		state.autoScrolledKey = key
		state.previewState.scroll = max(0, len(lines)-viewH)
	}
	state.previewState.scroll = clamp(state.previewState.scroll, 0, max(0, len(lines)-viewH))

	searchKey := fmt.Sprintf("%s|%d|%d|%s", key, layoutMode.preview.w, len(text), state.previewSearch)
	if searchKey != state.previewSearchKey {
		state.previewSearchKey = searchKey
		state.previewMatches = previewFindMatches(lines, state.previewSearch)
		state.previewMatchIdx = 0
		if len(state.previewMatches) > 0 {
			state.previewState.scroll = previewScrollToMatch(state.previewMatches[0], viewH)
		}
	}
	highlight := -1
	if len(state.previewMatches) > 0 {
		highlight = state.previewMatches[state.previewMatchIdx]
	}
	drawPreview(screen, layoutMode.preview, lines, state.previewState.scroll, highlight)

	drawStatus(screen, statusLine(state), rightLabel(state, opts.Version), state.holder.Active().Len() > 0)
	screen.Show()
	return nil
}

func statusLine(state *uiState) string {
	switch {
	case state.confirmDelete:
		return "Delete selected session? y: confirm  any other key: cancel"
	case state.inputMode != "":
		return "Type to search. Enter: apply  Esc: cancel"
	case state.notice != "":
		return state.notice
	case state.focus == "preview":
		status := "Up/Down PgUp/PgDn: scroll  /: search  v: raw  t: tools  Tab: switch  q: quit"
		if len(state.previewMatches) > 0 {
			status += "  n/N: next/prev"
		}
		return status
	}
	return "Tab/Left/Right: switch  /: search  Enter: open  a: active  d: delete  Ctrl+N: new  r: refresh  q: quit"
}

func rightLabel(state *uiState, version string) string {
	label := versionLabel(version)
	if n := state.holder.Active().Len(); n > 0 {
		label = fmt.Sprintf("%d active  %s", n, label)
	}
	return label
}

func versionLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "dev"
	}
	if v[0] >= '0' && v[0] <= '9' {
		return "v" + v
	}
	return v
}

func previewKey(state *uiState, project, session string) string {
	return fmt.Sprintf("%s|%s|%t|%t", project, session, state.showRaw, state.expandTools)
}

func ensurePreview(ctx context.Context, screen tcell.Screen, state *uiState, opts Options, project, session string, previewCh chan<- previewEvent) {
	key := previewKey(state, project, session)
	if _, ok := state.previewCache[key]; ok {
		return
	}
	if state.previewLoading[key] {
		return
	}
	state.previewLoading[key] = true

	maxMessages := opts.UI.PreviewMessages
	if maxMessages <= 0 {
		maxMessages = config.DefaultSettings().UI.PreviewMessages
	}
	renderOpts := claudehistory.RenderOptions{ExpandTools: state.expandTools, Raw: state.showRaw}

	go func() {
		msgs := claudehistory.RenderMessages(opts.Store.Messages(ctx, project, session), renderOpts)
		if len(msgs) > maxMessages {
			msgs = msgs[len(msgs)-maxMessages:]
		}
		text := claudehistory.FormatMessages(msgs, previewCharsPerMessage)
		if text == "" {
			text = "No messages."
		}
		previewCh <- previewEvent{key: key, text: text}
		screen.PostEvent(&uiEvent{when: time.Now(), kind: "preview"})
	}()
}

func previewText(state *uiState, project claudehistory.Project, session claudehistory.Session, hasSession bool) string {
	if !hasSession {
		return ""
	}
	return state.previewCache[previewKey(state, project.Name, session.ID)]
}

func buildPreviewLines(project claudehistory.Project, session claudehistory.Session, hasSession bool, state *uiState, text string) []string {
	if project.Name == "" {
		return []string{"No projects found."}
	}
	lines := []string{
		"Project: " + project.DisplayName,
		"Path: " + project.ResolvedPath,
	}
	if !hasSession {
		return append(lines, "", "No sessions.")
	}
	lines = append(lines,
		"Session: "+session.ID,
		"Summary: "+session.Summary,
		fmt.Sprintf("Messages: %d  Last activity: %s", session.MessageCount, formatActivity(session.LastActivity)),
		"",
	)
	if text == "" {
		return append(lines, "Loading...")
	}
	return append(lines, strings.Split(text, "\n")...)
}

func formatActivity(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func buildProjectItems(projects []claudehistory.Project) []projectItem {
	items := make([]projectItem, 0, len(projects))
	for _, project := range projects {
		label := project.DisplayName
		if label == "" {
			label = project.Name
		}
		if project.SessionMeta.Total > 0 {
			label = fmt.Sprintf("%s (%d)", label, project.SessionMeta.Total)
		}
		items = append(items, projectItem{project: project, label: label})
	}
	return items
}

func buildSessionItems(project claudehistory.Project, active *reconcile.Active) []sessionItem {
	items := make([]sessionItem, 0, len(project.Sessions))
	for _, sess := range project.Sessions {
		isActive := active.IsActive(sess.ID)
		marker := "  "
		if isActive {
			marker = "* "
		}
		label := fmt.Sprintf("%s%s  %s", marker, formatActivity(sess.LastActivity), sess.Summary)
		items = append(items, sessionItem{session: sess, label: label, active: isActive})
	}
	return items
}

func selectedProject(items []projectItem, idx int) claudehistory.Project {
	if idx < 0 || idx >= len(items) {
		return claudehistory.Project{}
	}
	return items[idx].project
}

func selectedSession(items []sessionItem, idx int) (claudehistory.Session, bool) {
	if idx < 0 || idx >= len(items) {
		return claudehistory.Session{}, false
	}
	return items[idx].session, true
}

func renderProjectRows(items []projectItem, focused bool, state listState, viewH int) []row {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.label
	}
	return visibleRows(labels, nil, focused, state, viewH)
}

func renderSessionRows(items []sessionItem, focused bool, state listState, viewH int) []row {
	labels := make([]string, len(items))
	bold := make([]bool, len(items))
	for i, it := range items {
		labels[i] = it.label
		bold[i] = it.active
	}
	return visibleRows(labels, bold, focused, state, viewH)
}

func filterProjects(items []projectItem, needle string) []projectItem {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return items
	}
	out := make([]projectItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.label), n) || strings.Contains(strings.ToLower(it.project.ResolvedPath), n) {
			out = append(out, it)
		}
	}
	return out
}

func filterSessions(items []sessionItem, needle string) []sessionItem {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return items
	}
	out := make([]sessionItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.label), n) || strings.Contains(strings.ToLower(it.session.ID), n) {
			out = append(out, it)
		}
	}
	return out
}

func previewFindMatches(lines []string, needle string) []int {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return nil
	}
	out := make([]int, 0, len(lines))
	for i, ln := range lines {
		if strings.Contains(strings.ToLower(ln), n) {
			out = append(out, i)
		}
	}
	return out
}

func previewScrollToMatch(matchLine int, viewH int) int {
	vh := max(1, viewH)
	return max(0, matchLine-(vh/2))
}
