// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"bufio"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the jetting grid",
	Long: `Control the jetting grid via an interactive terminal UI.

The TUI shows the live valve grid, operating mode, playback position and the
pressure readings, and sends commands over the connection:

  space      play / pause
  s          stop
  left/right step one frame back / forward
  o          toggle the pump safety override
  tab        focus the command input (goto<N>, preset<N>, any raw command)
  q          quit

Automatic reconnection is attempted when a WebSocket connection drops.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// send writes one command line to the rig. Errors are surfaced through the
// reader loop, which owns reconnection.
func (cm *connectionManager) send(line string) {
	conn := cm.getConn()
	if conn == nil {
		return
	}
	conn.Write([]byte(line + "\n"))
}

func runControl(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	m := initialControlModel(cm, connInfo)

	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.readerLoop()

	if _, err := p.Run(); err != nil {
		close(cm.done)
		cm.getConn().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(cm.done)
	cm.getConn().Close()
	return nil
}

// readerLoop forwards rig reply lines to the TUI and reconnects on loss.
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		scanner := bufio.NewScanner(cm.getConn())
		for scanner.Scan() {
			cm.p.Send(rigLineMsg{line: scanner.Text()})
		}

		select {
		case <-cm.done:
			return
		default:
		}
		cm.p.Send(connectionLostMsg{})

		if !cm.reconnect() {
			return
		}
	}
}

// reconnect retries the connection until it succeeds or the TUI exits.
func (cm *connectionManager) reconnect() bool {
	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(2 * time.Second):
		}

		cm.getConn().Close()
		conn, connInfo, err := OpenConnection()
		if err != nil {
			continue
		}
		cm.setConn(conn, connInfo)
		cm.p.Send(reconnectedMsg{connInfo: connInfo})
		return true
	}
}
