// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren
//
// Jetgrid - host-side tools and firmware simulator for the Twente Water
// Tunnel jetting grid.

package main

import (
	"os"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
