package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type rect struct {
	y int
	x int
	h int
	w int
}

type layout struct {
	projects rect
	sessions rect
	preview  rect
	mode     string
}

type listState struct {
	selected int
	scroll   int
}

type previewState struct {
	scroll int
}

type row struct {
	label    string
	dim      bool
	bold     bool
	selected bool
	focused  bool
}

func computeLayout(screen tcell.Screen) layout {
	maxX, maxY := screen.Size()
	usableH := max(1, maxY-1)

	if maxX >= 120 && usableH >= 10 {
		leftW := min(40, max(24, maxX/4))
		midW := min(60, max(32, maxX/3))
		rightW := max(20, maxX-leftW-midW)
		return layout{
			projects: rect{y: 0, x: 0, h: usableH, w: leftW},
			sessions: rect{y: 0, x: leftW, h: usableH, w: midW},
			preview:  rect{y: 0, x: leftW + midW, h: usableH, w: rightW},
			mode:     "3col",
		}
	}

	if maxX >= 80 && usableH >= 10 {
		leftW := min(40, max(24, maxX/3))
		rightW := maxX - leftW
		listH := max(6, int(float64(usableH)*0.6))
		prevH := max(3, usableH-listH)
		return layout{
			projects: rect{y: 0, x: 0, h: usableH, w: leftW},
			sessions: rect{y: 0, x: leftW, h: listH, w: rightW},
			preview:  rect{y: listH, x: leftW, h: prevH, w: rightW},
			mode:     "2col",
		}
	}

	listH := max(1, int(float64(usableH)*0.6))
	if usableH > 1 {
		listH = clamp(listH, 1, usableH-1)
	}
	return layout{
		projects: rect{y: 0, x: 0, h: listH, w: maxX},
		sessions: rect{y: 0, x: 0, h: listH, w: maxX},
		preview:  rect{y: listH, x: 0, h: usableH - listH, w: maxX},
		mode:     "1col",
	}
}

func applySelection(rows []row, focused bool, state listState) []row {
	if len(rows) == 0 {
		return rows
	}
	state.clamp(len(rows))
	rows[state.selected].selected = true
	rows[state.selected].focused = focused
	rows[state.selected].dim = false
	return rows
}

// visibleRows windows labels to the list's scroll position.
func visibleRows(labels []string, bold []bool, focused bool, state listState, viewH int) []row {
	start := clamp(state.scroll, 0, max(0, len(labels)))
	end := min(len(labels), start+max(0, viewH))
	rows := make([]row, 0, end-start)
	for i := start; i < end; i++ {
		r := row{label: labels[i]}
		if i < len(bold) {
			r.bold = bold[i]
		}
		rows = append(rows, r)
	}
	return applySelection(rows, focused, listState{selected: state.selected - start})
}

func applyListNavigation(state *listState, nItems int, viewH int, ev *tcell.EventKey) {
	if nItems <= 0 {
		state.selected = 0
		state.scroll = 0
		return
	}
	switch ev.Key() {
	case tcell.KeyUp:
		state.selected = clamp(state.selected-1, 0, nItems-1)
	case tcell.KeyDown:
		state.selected = clamp(state.selected+1, 0, nItems-1)
	case tcell.KeyPgUp:
		state.selected = clamp(state.selected-max(1, viewH), 0, nItems-1)
	case tcell.KeyPgDn:
		state.selected = clamp(state.selected+max(1, viewH), 0, nItems-1)
	case tcell.KeyHome:
		state.selected = 0
	case tcell.KeyEnd:
		state.selected = nItems - 1
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'K':
			state.selected = clamp(state.selected-1, 0, nItems-1)
		case 'j', 'J':
			state.selected = clamp(state.selected+1, 0, nItems-1)
		case 'g':
			state.selected = 0
		case 'G':
			state.selected = nItems - 1
		default:
			return
		}
	default:
		return
	}
	state.ensureVisible(viewH, nItems)
}

func applyPreviewNavigation(state *previewState, nLines int, viewH int, ev *tcell.EventKey) {
	if nLines <= 0 || viewH <= 0 {
		state.scroll = 0
		return
	}
	last := max(0, nLines-viewH)
	switch ev.Key() {
	case tcell.KeyUp:
		state.scroll = clamp(state.scroll-1, 0, last)
	case tcell.KeyDown:
		state.scroll = clamp(state.scroll+1, 0, last)
	case tcell.KeyPgUp:
		state.scroll = clamp(state.scroll-max(1, viewH), 0, last)
	case tcell.KeyPgDn:
		state.scroll = clamp(state.scroll+max(1, viewH), 0, last)
	case tcell.KeyHome:
		state.scroll = 0
	case tcell.KeyEnd:
		state.scroll = last
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'K':
			state.scroll = clamp(state.scroll-1, 0, last)
		case 'j', 'J':
			state.scroll = clamp(state.scroll+1, 0, last)
		case 'g':
			state.scroll = 0
		case 'G':
			state.scroll = last
		}
	}
}

func isPreviewNavKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn, tcell.KeyHome, tcell.KeyEnd:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j', 'J', 'k', 'K', 'g', 'G':
			return true
		}
	}
	return false
}

func (s *listState) clamp(nItems int) {
	if nItems <= 0 {
		s.selected = 0
		s.scroll = 0
		return
	}
	s.selected = clamp(s.selected, 0, nItems-1)
	s.scroll = clamp(s.scroll, 0, max(0, nItems-1))
}

func (s *listState) ensureVisible(viewH int, nItems int) {
	if nItems <= 0 || viewH <= 0 {
		s.scroll = 0
		return
	}
	if s.selected < s.scroll {
		s.scroll = s.selected
	} else if s.selected >= s.scroll+viewH {
		s.scroll = s.selected - viewH + 1
	}
	s.scroll = clamp(s.scroll, 0, max(0, nItems-viewH))
}

func drawBox(screen tcell.Screen, r rect, title string, focused bool, filter string) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	borderStyle := tcell.StyleDefault
	if focused {
		borderStyle = borderStyle.Bold(true)
	} else {
		borderStyle = borderStyle.Dim(true)
	}
	for x := r.x + 1; x < r.x+r.w-1; x++ {
		screen.SetContent(x, r.y, tcell.RuneHLine, nil, borderStyle)
		screen.SetContent(x, r.y+r.h-1, tcell.RuneHLine, nil, borderStyle)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		screen.SetContent(r.x, y, tcell.RuneVLine, nil, borderStyle)
		screen.SetContent(r.x+r.w-1, y, tcell.RuneVLine, nil, borderStyle)
	}
	screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y, tcell.RuneURCorner, nil, borderStyle)
	screen.SetContent(r.x, r.y+r.h-1, tcell.RuneLLCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y+r.h-1, tcell.RuneLRCorner, nil, borderStyle)

	titleStyle := tcell.StyleDefault.Reverse(true)
	if focused {
		titleStyle = titleStyle.Bold(true)
		title = "> " + title + " <"
	} else {
		title = " " + title + " "
	}
	maxTitleWidth := max(0, r.w-2)
	title = truncate(title, maxTitleWidth)
	titleX := r.x + 1 + max(0, (maxTitleWidth-displayWidth(title))/2)
	writeText(screen, titleX, r.y, title, titleStyle)

	if filter != "" && r.h >= 2 {
		writeText(screen, r.x+1, r.y+r.h-1, truncate("/"+filter, r.w-2), borderStyle.Dim(true))
	}
}

func drawList(screen tcell.Screen, r rect, rows []row) {
	if r.h < 3 || r.w < 4 {
		return
	}
	innerH := r.h - 2
	innerW := r.w - 2
	for i := 0; i < innerH; i++ {
		y := r.y + 1 + i
		if i >= len(rows) {
			writeText(screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		row := rows[i]
		style := tcell.StyleDefault
		if row.bold {
			style = style.Bold(true)
		}
		if row.selected {
			style = style.Reverse(true)
			if row.focused {
				style = style.Bold(true)
			} else {
				style = style.Dim(true)
			}
		} else if row.dim {
			style = style.Dim(true)
		}
		writeText(screen, r.x+1, y, padRight(truncate(row.label, innerW), innerW), style)
	}
}

func drawPreview(screen tcell.Screen, r rect, lines []string, scroll int, highlight int) {
	if r.h < 3 || r.w < 4 {
		return
	}
	innerH := r.h - 2
	innerW := r.w - 2
	scroll = clamp(scroll, 0, max(0, len(lines)-innerH))
	for i := 0; i < innerH; i++ {
		y := r.y + 1 + i
		idx := scroll + i
		if idx >= len(lines) {
			writeText(screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		style := tcell.StyleDefault
		if idx == highlight {
			style = style.Reverse(true)
		}
		writeText(screen, r.x+1, y, padRight(truncate(lines[idx], innerW), innerW), style)
	}
}

func drawStatus(screen tcell.Screen, left string, right string, rightBold bool) {
	w, h := screen.Size()
	if h <= 0 {
		return
	}
	y := h - 1
	writeText(screen, 0, y, padRight(truncate(left, w), w), tcell.StyleDefault.Reverse(true))
	if right == "" {
		return
	}
	r := truncate(right, w)
	style := tcell.StyleDefault.Reverse(true)
	if rightBold {
		style = style.Bold(true)
	}
	writeText(screen, max(0, w-displayWidth(r)), y, r, style)
}

func writeText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	offset := 0
	for _, ch := range text {
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			continue
		}
		screen.SetContent(x+offset, y, ch, nil, style)
		offset += width
	}
}

func buildWrappedLines(lines []string, width int) []string {
	if width <= 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, wrapText(ln, width)...)
	}
	return out
}

func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	if s == "" {
		return []string{""}
	}
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln == "" {
			out = append(out, "")
			continue
		}
		var buf strings.Builder
		curWidth := 0
		for _, ch := range ln {
			chWidth := runewidth.RuneWidth(ch)
			if chWidth == 0 {
				buf.WriteRune(ch)
				continue
			}
			if curWidth+chWidth > width && curWidth > 0 {
				out = append(out, buf.String())
				buf.Reset()
				curWidth = 0
			}
			buf.WriteRune(ch)
			curWidth += chWidth
		}
		out = append(out, buf.String())
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	var buf strings.Builder
	curWidth := 0
	for _, ch := range s {
		chWidth := runewidth.RuneWidth(ch)
		if curWidth+chWidth > width {
			break
		}
		buf.WriteRune(ch)
		curWidth += chWidth
	}
	return buf.String()
}

func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
