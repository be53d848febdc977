// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	pollIntervalMillis = 500 // Poll the rig state every N milliseconds
	maxEventLogEntries = 50
)

// Focus states
const (
	focusGrid = iota
	focusCommandInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	// Connection manager (for sending commands and reconnection)
	connMgr  *connectionManager
	connInfo string

	// Mirrored rig state, refreshed by the poll cycle
	mode        string
	position    int
	programName string
	programLen  int
	frame       jetproto.PackedFrame
	readings    [8]float64
	haveRead    bool
	override    bool

	// Event log
	eventLog []eventLogEntry

	// Command input
	cmdInput     textinput.Model
	focusedField int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type pollTickMsg time.Time

type rigLineMsg struct {
	line string
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string) controlModel {
	ti := textinput.New()
	ti.Placeholder = "goto1, preset0, play, ..."
	ti.CharLimit = 64
	ti.Width = 30

	return controlModel{
		connMgr:      connMgr,
		connInfo:     connInfo,
		mode:         "Off",
		position:     1,
		eventLog:     make([]eventLogEntry, 0),
		cmdInput:     ti,
		focusedField: focusGrid,
		width:        80,
		height:       24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return pollTickCmd()
}

func pollTickCmd() tea.Cmd {
	return tea.Tick(pollIntervalMillis*time.Millisecond, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pollTickMsg:
		if !m.connectionLost {
			// The replies are self-describing, so the poll cycle just
			// fires all queries and classifies whatever comes back.
			m.connMgr.send("fsm?")
			m.connMgr.send("p?")
			m.connMgr.send("b?")
			m.connMgr.send("?")
		}
		return m, pollTickCmd()

	case rigLineMsg:
		m.classifyReply(msg.line)

	case connectionLostMsg:
		m.connectionLost = true
		m.logEvent("Connection lost, reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.logEvent(fmt.Sprintf("Reconnected: %s", msg.connInfo), false)
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Command input owns the keyboard while focused
	if m.focusedField == focusCommandInput {
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.cmdInput.Value())
			if cmd != "" {
				m.connMgr.send(cmd)
				m.logEvent("> "+cmd, false)
			}
			m.cmdInput.SetValue("")
			m.cmdInput.Blur()
			m.focusedField = focusGrid
			return m, nil
		case "esc", "tab":
			m.cmdInput.Blur()
			m.focusedField = focusGrid
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.cmdInput, cmd = m.cmdInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.focusedField = focusCommandInput
		return m, m.cmdInput.Focus()

	case " ":
		if m.mode == "Running" {
			m.connMgr.send("pause")
		} else {
			m.connMgr.send("play")
		}

	case "s":
		m.connMgr.send("stop")

	case "left":
		m.connMgr.send(",")

	case "right":
		m.connMgr.send(".")

	case "o":
		if m.override {
			m.connMgr.send("restore_safety")
			m.logEvent("Safety override restored", false)
		} else {
			m.connMgr.send("override_safety")
			m.logEvent("Safety override ACTIVE", true)
		}
		m.override = !m.override
	}

	return m, nil
}

//////////////////////////////////////////////////////////////
// Reply Classification
//////////////////////////////////////////////////////////////

// classifyReply routes a rig reply line into the mirrored state. The rig's
// reply formats are mutually distinguishable: mode names, point lists in
// parentheses, tab-separated reports, bare position integers and prefixed
// HALT/ERROR lines.
func (m *controlModel) classifyReply(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch {
	case strings.HasPrefix(line, "HALT:"):
		m.mode = "Halted"
		m.logEvent(line, true)

	case strings.HasPrefix(line, "ERROR"):
		m.logEvent(line, true)

	case line == "Off" || line == "Paused" || line == "Running" ||
		line == "Uploading" || line == "Halted":
		m.mode = line

	case strings.HasPrefix(line, "("):
		if frame, ok := parsePointList(line); ok {
			m.frame = frame
		}

	case strings.Contains(line, "\t"):
		fields := strings.Split(line, "\t")
		switch len(fields) {
		case 2:
			// Program header: name and frame count
			if n, err := strconv.Atoi(fields[1]); err == nil {
				m.programName = fields[0]
				m.programLen = n
			}
		case 9:
			// Readings report: position plus 4x mA and 4x bar
			if pos, err := strconv.Atoi(fields[0]); err == nil {
				m.position = pos
				for i := 0; i < 8; i++ {
					m.readings[i], _ = strconv.ParseFloat(fields[i+1], 64)
				}
				m.haveRead = true
			}
		}

	default:
		if pos, err := strconv.Atoi(line); err == nil {
			m.position = pos
			return
		}
		m.logEvent(line, false)
	}
}

// parsePointList parses the rig's point list reply, e.g. "(1,2) (-3,-4)" or
// "(empty)", into a packed frame.
func parsePointList(line string) (jetproto.PackedFrame, bool) {
	var frame jetproto.PackedFrame
	if line == "(empty)" {
		return frame, true
	}

	for _, token := range strings.Fields(line) {
		token = strings.TrimPrefix(token, "(")
		token = strings.TrimSuffix(token, ")")
		xy := strings.Split(token, ",")
		if len(xy) != 2 {
			return frame, false
		}
		x, errX := strconv.Atoi(xy[0])
		y, errY := strconv.Atoi(xy[1])
		if errX != nil || errY != nil {
			return frame, false
		}
		if err := frame.Set(jetproto.Point{X: int8(x), Y: int8(y)}); err != nil {
			return frame, false
		}
	}
	return frame, true
}

func (m *controlModel) logEvent(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxEventLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxEventLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Disconnecting...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("25")).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Jetgrid Control"))
	b.WriteString("  ")
	if m.connectionLost {
		b.WriteString(errorStyle.Render("DISCONNECTED"))
	} else {
		b.WriteString(labelStyle.Render(m.connInfo))
	}
	b.WriteString("\n\n")

	// Status line
	modeStyle := valueStyle
	if m.mode == "Halted" {
		modeStyle = errorStyle
	}
	status := fmt.Sprintf("%s %s   %s %s   %s %d/%d",
		labelStyle.Render("Mode:"), modeStyle.Render(m.mode),
		labelStyle.Render("Program:"), valueStyle.Render(m.programName),
		labelStyle.Render("Frame:"), m.position, m.programLen)
	if m.override {
		status += "   " + warningStyle.Render("SAFETY OVERRIDE")
	}
	b.WriteString(status)
	b.WriteString("\n\n")

	// Valve grid and event log side by side
	grid := boxStyle.Render(m.renderGrid())
	events := boxStyle.Render(m.renderEventLog(labelStyle, errorStyle))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, " ", events))
	b.WriteString("\n")

	// Readings bar
	if m.haveRead {
		b.WriteString(fmt.Sprintf("%s %.2f %.2f %.2f %.2f mA   %s %.3f %.3f %.3f %.3f bar\n",
			labelStyle.Render("Sensors:"),
			m.readings[0], m.readings[1], m.readings[2], m.readings[3],
			labelStyle.Render("Pressure:"),
			m.readings[4], m.readings[5], m.readings[6], m.readings[7]))
	}

	// Command input
	if m.focusedField == focusCommandInput {
		b.WriteString("\n" + m.cmdInput.View() + "\n")
	} else {
		b.WriteString("\n" + labelStyle.Render(
			"space play/pause  s stop  ←/→ step  o override  tab command  q quit") + "\n")
	}

	return b.String()
}

// renderGrid draws the live valve bitmask, PCS y axis pointing up.
func (m controlModel) renderGrid() string {
	openStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	closedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	var b strings.Builder
	for y := jetproto.PCSYMax; y >= jetproto.PCSYMin; y-- {
		row := y - jetproto.PCSYMin
		for x := jetproto.PCSXMin; x <= jetproto.PCSXMax; x++ {
			col := x - jetproto.PCSXMin
			if m.frame.Rows[row]&(1<<uint(col)) != 0 {
				b.WriteString(openStyle.Render("● "))
			} else {
				b.WriteString(closedStyle.Render("· "))
			}
		}
		if y > jetproto.PCSYMin {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m controlModel) renderEventLog(labelStyle, errorStyle lipgloss.Style) string {
	visible := 16
	start := 0
	if len(m.eventLog) > visible {
		start = len(m.eventLog) - visible
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Events"))
	b.WriteString("\n")
	if len(m.eventLog) == 0 {
		b.WriteString(labelStyle.Render("(none)"))
	}
	for i, e := range m.eventLog[start:] {
		line := fmt.Sprintf("%s %s", e.timestamp.Format("15:04:05"), e.message)
		if e.isError {
			line = errorStyle.Render(line)
		}
		b.WriteString(line)
		if start+i < len(m.eventLog)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
