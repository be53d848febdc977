// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
	"github.com/spf13/cobra"
)

var (
	uploadFile    string
	uploadTimeout int
	uploadVerify  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a protocol program to the jetting grid",
	Long: `Upload a protocol program file to the rig.

The program file is a CBOR-encoded .jgp file as produced by the pattern
generation scripts. The upload exchange is:

  1. "upload" switches the rig into upload mode
  2. the program name and frame count are sent as text lines, each echoed
  3. the frames follow as binary records, terminated by an end-of-program
     marker
  4. the rig replies "Success!" or an ERROR line

On any failure the rig falls back to its safe default program, so a failed
upload never leaves the grid without a program.

Exit codes:
  0 - Program uploaded and verified
  1 - Rig rejected the program
  2 - Connection or file error`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "Program file (.jgp, CBOR)")
	uploadCmd.Flags().IntVar(&uploadTimeout, "timeout", 10, "Timeout in seconds per reply")
	uploadCmd.Flags().BoolVar(&uploadVerify, "verify", true, "Check rig identity before uploading")
	uploadCmd.MarkFlagRequired("file")
}

// lineReader pumps reply lines from the connection into a channel so callers
// can apply per-reply timeouts.
type lineReader struct {
	lines <-chan string
	errs  <-chan error
}

func newLineReader(conn Connection) *lineReader {
	lines := make(chan string, 16)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			errs <- err
			return
		}
		errs <- fmt.Errorf("connection closed")
	}()
	return &lineReader{lines: lines, errs: errs}
}

func (r *lineReader) next(timeout time.Duration) (string, error) {
	select {
	case line := <-r.lines:
		return line, nil
	case err := <-r.errs:
		return "", err
	case <-time.After(timeout):
		return "", fmt.Errorf("timed out waiting for reply")
	}
}

func sendLine(conn Connection, line string) error {
	_, err := conn.Write([]byte(line + "\n"))
	return err
}

func runUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(uploadFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "File error: %v\n", err)
		os.Exit(2)
	}
	pf, err := jetproto.UnmarshalProgramFile(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "File error: %v\n", err)
		os.Exit(2)
	}
	frames := pf.ToFrames()

	wire, err := jetproto.EncodeProgram(frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "File error: %v\n", err)
		os.Exit(2)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Jetgrid - Program Upload\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Program: %q, %d frames, %d bytes on the wire\n\n", pf.Name, len(frames), len(wire))

	reader := newLineReader(conn)
	timeout := time.Duration(uploadTimeout) * time.Second

	if uploadVerify {
		if err := sendLine(conn, "id?"); err != nil {
			return fmt.Errorf("identity check: %v", err)
		}
		id, err := reader.next(timeout)
		if err != nil {
			return fmt.Errorf("identity check: %v", err)
		}
		if id != "Jetting Grid" {
			return fmt.Errorf("unexpected device identity %q", id)
		}
	}

	// Text stages: mode switch, name, count. Name and count are echoed back.
	if err := sendLine(conn, "upload"); err != nil {
		return err
	}
	if err := sendLine(conn, pf.Name); err != nil {
		return err
	}
	echo, err := reader.next(timeout)
	if err != nil {
		return fmt.Errorf("name stage: %v", err)
	}
	if echo != pf.Name {
		return fmt.Errorf("name echo mismatch: sent %q, got %q", pf.Name, echo)
	}

	if err := sendLine(conn, strconv.Itoa(len(frames))); err != nil {
		return err
	}
	echo, err = reader.next(timeout)
	if err != nil {
		return fmt.Errorf("count stage: %v", err)
	}
	if echo != strconv.Itoa(len(frames)) {
		fmt.Fprintf(os.Stderr, "Rig rejected program: %s\n", echo)
		os.Exit(1)
	}

	// Binary stage: the full record stream including the EOP marker.
	start := time.Now()
	if _, err := conn.Write(wire); err != nil {
		return fmt.Errorf("binary stage: %v", err)
	}

	verdict, err := reader.next(timeout)
	if err != nil {
		return fmt.Errorf("verdict: %v", err)
	}
	if verdict != "Success!" {
		fmt.Fprintf(os.Stderr, "Rig rejected program: %s\n", verdict)
		os.Exit(1)
	}

	fmt.Printf("Success! %d frames in %.2f s\n", len(frames), time.Since(start).Seconds())
	return nil
}
