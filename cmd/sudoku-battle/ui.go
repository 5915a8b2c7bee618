package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayumu-k/sudoku-battle-client/internal/client"
	"github.com/ayumu-k/sudoku-battle-client/internal/conn"
	"github.com/ayumu-k/sudoku-battle-client/internal/derive"
	"github.com/ayumu-k/sudoku-battle-client/internal/interact"
	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	winStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	givenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	guessStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cooldownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	armedStyle    = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15"))
	boardTitle    = lipgloss.NewStyle().Bold(true)
)

type viewMsg client.View

func waitForView(ch <-chan client.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return viewMsg(v)
	}
}

type model struct {
	room  string
	cn    *conn.Conn
	cl    *client.Client
	views <-chan client.View

	view   client.View
	winner string // sticky banner, unlike the one-shot view field

	// removal-mode target cursor, local to the terminal view
	targetOwner    string
	targetRow      int
	targetCol      int
	copiedRoomNote bool
}

func newModel(room string, cn *conn.Conn, cl *client.Client, views <-chan client.View) model {
	return model{room: room, cn: cn, cl: cl, views: views}
}

func (m model) Init() tea.Cmd {
	return waitForView(m.views)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = client.View(msg)
		if m.view.Winner != "" {
			m.winner = m.view.Winner
		}
		if !m.view.RemovalArmed {
			m.targetOwner = ""
		}
		return m, waitForView(m.views)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k", "down", "j", "left", "h", "right", "l":
		if m.view.RemovalArmed {
			m.moveTarget(key)
			return m, nil
		}
		m.gesture(interact.Move{Dir: keyDir(key)})
		return m, nil

	case "enter", " ":
		if m.view.RemovalArmed && m.targetOwner != "" {
			m.gesture(interact.Tap{Owner: m.targetOwner, Row: m.targetRow, Col: m.targetCol})
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(key)
		m.gesture(interact.Digit{N: n})
		return m, nil

	case "0", "backspace", "delete":
		m.gesture(interact.Clear{})
		return m, nil

	case "r":
		m.gesture(interact.ToggleRemoval{})
		m.resetTarget()
		return m, nil

	case "c":
		m.gesture(interact.Copy{})
		return m, nil

	case "C":
		_ = clipboard.WriteAll(m.room)
		m.copiedRoomNote = true
		return m, nil

	case "s":
		m.cn.StartGame()
		return m, nil
	}
	return m, nil
}

func (m *model) gesture(g interact.Gesture) {
	m.cl.Inbox() <- client.Gesture{G: g}
}

func keyDir(key string) interact.Dir {
	switch key {
	case "up", "k":
		return interact.Up
	case "down", "j":
		return interact.Down
	case "left", "h":
		return interact.Left
	default:
		return interact.Right
	}
}

// resetTarget points the removal cursor at the first opponent board.
func (m *model) resetTarget() {
	m.targetOwner = ""
	m.targetRow, m.targetCol = 0, 0
	for _, id := range m.boardOrder() {
		if id != m.view.SessionID {
			m.targetOwner = id
			return
		}
	}
}

func (m *model) moveTarget(key string) {
	if m.targetOwner == "" {
		m.resetTarget()
	}
	switch keyDir(key) {
	case interact.Up:
		m.targetRow = (m.targetRow + types.BoardSize - 1) % types.BoardSize
	case interact.Down:
		m.targetRow = (m.targetRow + 1) % types.BoardSize
	case interact.Left:
		m.targetCol = (m.targetCol + types.BoardSize - 1) % types.BoardSize
	case interact.Right:
		m.targetCol = (m.targetCol + 1) % types.BoardSize
	}
}

// boardOrder lists sessions with the local board first, the rest sorted,
// matching the original game page layout.
func (m *model) boardOrder() []string {
	var ids []string
	for id := range m.view.Snapshot.Boards {
		if id != m.view.SessionID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if _, ok := m.view.Snapshot.Boards[m.view.SessionID]; ok {
		ids = append([]string{m.view.SessionID}, ids...)
	}
	return ids
}

func (m model) View() string {
	var b strings.Builder
	v := m.view

	b.WriteString(headerStyle.Render("Multiplayer Sudoku"))
	b.WriteString(fmt.Sprintf("  room %s  [%s]", m.room, m.cn.Status()))
	if m.copiedRoomNote {
		b.WriteString(noteStyle.Render("  (room code copied)"))
	}
	b.WriteString("\n")

	if m.winner != "" {
		who := "player " + tail(m.winner)
		if m.winner == v.SessionID {
			who = "you"
		}
		b.WriteString(winStyle.Render(fmt.Sprintf("%s won the game!", who)))
		b.WriteString("\n")
	}

	if !v.HasSnapshot {
		b.WriteString(noteStyle.Render("waiting for boards..."))
		b.WriteString("\n")
		b.WriteString(m.helpLine())
		return b.String()
	}

	b.WriteString(fmt.Sprintf("players in room: %d", v.Snapshot.PlayerCount))
	if v.Snapshot.Difficulty != "" {
		b.WriteString("  difficulty: " + v.Snapshot.Difficulty)
	}
	b.WriteString("\n")

	if !derive.GameStarted(v.Snapshot) {
		if v.Snapshot.PlayerCount >= 2 {
			b.WriteString(noteStyle.Render("press s to start the game"))
		} else {
			b.WriteString(noteStyle.Render("waiting for opponent to join..."))
		}
		b.WriteString("\n")
		b.WriteString(m.helpLine())
		return b.String()
	}

	b.WriteString(m.removalLine())
	b.WriteString("\n\n")

	var rendered []string
	for _, id := range m.boardOrder() {
		rendered = append(rendered, m.renderBoard(id))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, interleave(rendered, "   ")...))
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m model) removalLine() string {
	v := m.view
	if v.RemovalArmed {
		return armedStyle.Render(" REMOVAL ARMED ") +
			noteStyle.Render("  move to an opponent cell, enter to fire, r to disarm")
	}
	if !derive.CanRemoveOpponentCell(v.Snapshot, v.SessionID) {
		return noteStyle.Render("removal power-up locked")
	}
	if cd := derive.RemoveCooldown(v.Snapshot, v.SessionID, v.Now); cd > 0 {
		return noteStyle.Render(fmt.Sprintf("removal power-up recharging (%ds)", cd))
	}
	return "removal power-up ready (press r)"
}

func (m model) renderBoard(owner string) string {
	v := m.view
	board := v.Snapshot.Board(owner)

	title := "player " + tail(owner)
	if owner == v.SessionID {
		title = "your board"
	}
	if steps := derive.StepsAheadDiff(v.Snapshot, owner, v.SessionID); owner != v.SessionID && steps != 0 {
		if steps > 0 {
			title += fmt.Sprintf(" (+%d ahead)", steps)
		} else {
			title += fmt.Sprintf(" (%d behind)", steps)
		}
	}
	if n := derive.FilledCount(v.Snapshot, owner); n > 0 {
		title += fmt.Sprintf("  %d filled", n)
	}

	var b strings.Builder
	b.WriteString(boardTitle.Render(title))
	b.WriteString("\n")
	for r := 0; r < len(board); r++ {
		if r > 0 && r%3 == 0 {
			b.WriteString(strings.Repeat("─", 23))
			b.WriteString("\n")
		}
		for c := 0; c < len(board[r]); c++ {
			if c > 0 && c%3 == 0 {
				b.WriteString("│")
			}
			b.WriteString(m.renderCell(owner, r, c, board[r][c]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderCell(owner string, r, c int, cell types.Cell) string {
	v := m.view

	text := " . "
	if cell.Value != 0 {
		text = fmt.Sprintf(" %d ", cell.Value)
	}
	if cd := derive.CellCooldown(cell, v.Now); cd > 0 {
		return cooldownStyle.Render(fmt.Sprintf("%2d ", cd))
	}

	style := guessStyle
	switch cell.Status {
	case types.StatusGiven:
		style = givenStyle
	case types.StatusCorrectGuess:
		style = correctStyle
	case types.StatusWrongGuess:
		style = wrongStyle
	}

	if v.RemovalArmed && owner == m.targetOwner && r == m.targetRow && c == m.targetCol {
		return armedStyle.Render(text)
	}
	if owner == v.SessionID && v.HasSelection &&
		v.Selected.Row == r && v.Selected.Col == c {
		return selectedStyle.Render(text)
	}
	return style.Render(text)
}

func (m model) helpLine() string {
	return noteStyle.Render(
		"arrows/hjkl move · 1-9 fill · 0 clear · r removal · c copy cell · C copy room · s start · q quit")
}

func tail(sessionID string) string {
	if len(sessionID) <= 4 {
		return sessionID
	}
	return sessionID[len(sessionID)-4:]
}

func interleave(items []string, sep string) []string {
	var out []string
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}
