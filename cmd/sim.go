// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/gridctl"
	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
	"github.com/spf13/cobra"
)

var (
	simRender   bool
	simTickRate int
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a local simulator of the jetting grid firmware",
	Long: `Run the grid control core as a local simulator.

The simulator speaks the full rig command surface: upload, playback, seeking,
presets, the safety override and the readings query. Without --port or --url
it serves on stdin/stdout, which makes it a drop-in test target for the
upload, monitor and control commands:

  jetgrid sim --port /dev/pts/3
  echo "id?" | jetgrid sim

With --render every actuated frame is drawn as a 16x16 valve grid on stderr.`,
	RunE: runSim,
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.Flags().BoolVar(&simRender, "render", false, "Draw actuated frames on stderr")
	simCmd.Flags().IntVar(&simTickRate, "tick", 10, "Control loop period in milliseconds")
}

// stdioConnection serves the simulator on the process's own streams.
type stdioConnection struct{}

func (stdioConnection) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConnection) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioConnection) Close() error                { return nil }

// stderrVisual renders actuated frames as a text grid, the simulator's stand-in
// for the rig's LED matrix.
type stderrVisual struct{}

func (stderrVisual) ShowMask(mask gridctl.Mask) {
	pf := jetproto.PackedFrame{Rows: mask}
	fmt.Fprint(os.Stderr, jetproto.FormatPackedFrame(&pf))
}

func (stderrVisual) ShowHalt() {
	fmt.Fprintln(os.Stderr, "!! HALTED !!")
}

func (stderrVisual) Clear() {
	fmt.Fprintln(os.Stderr, "(grid off)")
}

func runSim(cmd *cobra.Command, args []string) error {
	var conn Connection = stdioConnection{}
	connInfo := "stdio"
	if portName != "" || wsURL != "" {
		var err error
		conn, connInfo, err = OpenConnection()
		if err != nil {
			return err
		}
		defer conn.Close()
	}

	fmt.Fprintf(os.Stderr, "Jetgrid - Firmware Simulator\n")
	fmt.Fprintf(os.Stderr, "Connection: %s\n", connInfo)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to exit\n\n")

	cfg := gridctl.Config{Output: conn}
	if simRender {
		cfg.Visual = stderrVisual{}
	}

	var mu sync.Mutex
	ctrl := gridctl.NewController(cfg, time.Now())

	// Control loop ticker, the simulator's equivalent of the firmware's
	// main loop.
	ticker := time.NewTicker(time.Duration(simTickRate) * time.Millisecond)
	defer ticker.Stop()
	go func() {
		for t := range ticker.C {
			mu.Lock()
			ctrl.Tick(t)
			mu.Unlock()
		}
	}()

	// Input router: text lines feed the command dispatcher, raw bytes feed
	// the upload session while its binary stage is active. The decision is
	// made per byte because the mode can flip mid-buffer.
	var line []byte
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err == io.EOF || err == ErrConnectionClosed {
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		mu.Lock()
		now := time.Now()
		for i := 0; i < n; i++ {
			if ctrl.Mode() == gridctl.ModeUploading && !ctrl.UploadWantsText() {
				ctrl.FeedBytes(now, buf[i:i+1])
				continue
			}
			b := buf[i]
			if b == '\n' || b == '\r' {
				if len(line) > 0 {
					ctrl.HandleLine(now, string(line))
					line = line[:0]
				}
				continue
			}
			line = append(line, b)
		}
		mu.Unlock()
	}
}
