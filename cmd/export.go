// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package cmd

import (
	"fmt"
	"os"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
	"github.com/spf13/cobra"
)

var (
	exportPreset int
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a built-in preset to a program file",
	Long: `Render one of the rig's built-in presets as a .jgp program file.

Useful as a starting point for hand-edited programs and as a known-good
upload target:

  jetgrid export --preset 1 -o checkerboard.jgp
  jetgrid upload --port /dev/ttyACM0 -f checkerboard.jgp`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVar(&exportPreset, "preset", 0, "Preset index")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	store := jetproto.NewStore()
	if err := jetproto.LoadPreset(store, exportPreset); err != nil {
		return err
	}

	// Rebuild sparse frames from the store; Unpack's scratch aliasing means
	// each frame has to be copied out before the next call.
	frames := make([]jetproto.Frame, 0, store.Len())
	for i := 0; i < store.Len(); i++ {
		pf, err := store.FrameAt(i)
		if err != nil {
			return err
		}
		points := store.Unpack(pf)
		f := jetproto.Frame{
			DurationMS: pf.DurationMS,
			Points:     append([]jetproto.Point(nil), points...),
		}
		frames = append(frames, f)
	}

	data, err := jetproto.MarshalProgramFile(jetproto.FileFromFrames(store.Name(), frames))
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("Wrote %q: %d frames, %d bytes\n", store.Name(), len(frames), len(data))
	return nil
}
