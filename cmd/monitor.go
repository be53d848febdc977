// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var monitorInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll and display rig readings",
	Long: `Continuously poll the rig with the readings query and print the replies.

Each reply line carries the playback position, the four pressure sensor
currents in mA and the derived pressures in bar, tab separated. Lines are
prefixed with a host-side timestamp.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 1000, "Poll interval in milliseconds")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Jetgrid - Readings Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")
	fmt.Printf("host time\tpos\tmA 1-4\t\t\t\tbar 1-4\n")

	reader := newLineReader(conn)
	ticker := time.NewTicker(time.Duration(monitorInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if err := sendLine(conn, "?"); err != nil {
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Write error: %v", err)
			continue
		}
		line, err := reader.next(time.Duration(monitorInterval) * time.Millisecond)
		if err != nil {
			log.Printf("Read error: %v", err)
			continue
		}
		fmt.Printf("%s\t%s\n", time.Now().Format("15:04:05.000"), line)
	}
	return nil
}
