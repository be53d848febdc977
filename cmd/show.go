// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"fmt"
	"os"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
	"github.com/spf13/cobra"
)

var showFrames bool

var showCmd = &cobra.Command{
	Use:   "show <file.jgp>",
	Short: "Print a protocol program file in human-readable form",
	Long: `Decode a CBOR program file and print it without contacting the rig.

By default only the program header and the per-frame point lists are shown.
With --grid each frame is rendered as a 16x16 valve grid.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showFrames, "grid", false, "Render each frame as a valve grid")
}

func runShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pf, err := jetproto.UnmarshalProgramFile(data)
	if err != nil {
		return fmt.Errorf("decode %s: %v", args[0], err)
	}

	store := jetproto.NewStore()
	store.SetName(pf.Name)
	for _, f := range pf.ToFrames() {
		packed, err := store.Pack(f)
		if err != nil {
			return fmt.Errorf("frame out of domain: %v", err)
		}
		if err := store.Append(packed); err != nil {
			return err
		}
	}

	if !showFrames {
		fmt.Print(jetproto.FormatProgram(store))
		return nil
	}

	fmt.Printf("%s\t%d\n", store.Name(), store.Len())
	for i := 0; i < store.Len(); i++ {
		frame, err := store.FrameAt(i)
		if err != nil {
			return err
		}
		fmt.Printf("#%04d: %s", i+1, jetproto.FormatPackedFrame(frame))
	}
	return nil
}
