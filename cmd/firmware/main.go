//go:build tinygo && baremetal

// Command firmware is the tinygo entry point: it wires the on-board HAL
// to the filesystem and kernel and boots the scheduler. It never
// returns.
package main

import (
	"oskernel/fs"
	"oskernel/hal"
	"oskernel/internal/buildinfo"
	"oskernel/kernel"
)

const bootDataSectors = 512

func main() {
	h := hal.New()
	h.Logger().WriteLineString("firmware " + buildinfo.Short() + " starting")

	fsys := fs.New(h.Flash(), 0)
	if err := fsys.Mount(); err != nil {
		h.Logger().WriteLineString("no valid filesystem found, formatting")
		if err := fsys.Format(bootDataSectors); err != nil {
			h.Logger().WriteLineString("format failed: " + err.Error())
			return
		}
	}

	k := kernel.New()
	k.AttachTick(h.Tick())
	k.Start()

	select {}
}
