//go:build !tinygo

// Command simhost runs the kernel and filesystem against the host HAL:
// a file-backed flash, stdin/stdout serial, and a time.Ticker tick
// source. It is the development stand-in for the real board.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"oskernel/fs"
	"oskernel/hal"
	"oskernel/internal/buildinfo"
	"oskernel/kernel"
)

func main() {
	var flashPath string
	var flashSize uint
	var dataSectors uint
	var tickHz int
	var ticks uint64
	flag.StringVar(&flashPath, "flash", "", "Flash image path (empty uses OSKERNEL_FLASH_PATH or a default name).")
	flag.UintVar(&flashSize, "flash-size", 4*1024*1024, "Flash image size in bytes.")
	flag.UintVar(&dataSectors, "sectors", 512, "Data sectors to format with if the image has no valid superblock.")
	flag.IntVar(&tickHz, "hz", 100, "Scheduler tick rate.")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N ticks (0 runs until interrupted).")
	flag.Parse()

	h := hal.New(hal.Config{FlashPath: flashPath, FlashSize: uint32(flashSize), TickHz: tickHz})
	h.Logger().WriteLineString(fmt.Sprintf("simhost %s starting", buildinfo.Short()))

	fsys := fs.New(h.Flash(), 0)
	if err := fsys.Mount(); err != nil {
		h.Logger().WriteLineString(fmt.Sprintf("mount failed (%v), formatting %d data sectors", err, dataSectors))
		if err := fsys.Format(uint32(dataSectors)); err != nil {
			fmt.Fprintln(os.Stderr, "format:", err)
			os.Exit(1)
		}
	}

	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		h.Logger().WriteLineString(fmt.Sprintf("task %d panicked: %v", info.TaskID, info.Value))
	})

	k := kernel.New()

	k.TaskCreate("heartbeat", 5, func(ctx *kernel.TaskContext) {
		for {
			snap := k.Snapshot()
			h.Logger().WriteLineString(fmt.Sprintf("tick=%d idle=%d tasks=%d", snap.Ticks, snap.IdleTicks, len(snap.Tasks)))
			ctx.Sleep(uint64(tickHz))
		}
	})

	k.AttachTick(h.Tick())
	k.Start()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ticks > 0 {
		for k.Ticks() < ticks {
			select {
			case <-runCtx.Done():
				k.DetachTick()
				return
			case <-time.After(5 * time.Millisecond):
			}
		}
		k.DetachTick()
		return
	}

	<-runCtx.Done()
	k.DetachTick()
}
