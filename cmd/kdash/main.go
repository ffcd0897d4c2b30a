//go:build !tinygo

// Command kdash is a host-only live view of a kernel's scheduler state,
// rendered as colored per-task bars in an ebiten window. It boots its
// own kernel with a couple of demo tasks rather than attaching to an
// external one, since the kernel exposes no remote-snapshot wire format.
package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"oskernel/hal"
	"oskernel/internal/buildinfo"
	"oskernel/kernel"
)

const (
	windowWidth  = 640
	windowHeight = 360
	barHeight    = 22
	barGap       = 8
)

func stateColor(s kernel.TaskState) color.RGBA {
	switch s {
	case kernel.StateRunning:
		return color.RGBA{0x30, 0xc8, 0x40, 0xff}
	case kernel.StateReady:
		return color.RGBA{0xc8, 0xc8, 0x30, 0xff}
	case kernel.StateSleeping:
		return color.RGBA{0x30, 0x70, 0xc8, 0xff}
	case kernel.StateBlocked:
		return color.RGBA{0xc8, 0x30, 0x30, 0xff}
	default:
		return color.RGBA{0x50, 0x50, 0x50, 0xff}
	}
}

type dashboard struct {
	k   *kernel.Kernel
	bar *ebiten.Image
}

func (d *dashboard) Update() error {
	return nil
}

func (d *dashboard) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x10, 0x10, 0x16, 0xff})
	snap := d.k.Snapshot()

	ebitenutil.DebugPrint(screen, fmt.Sprintf("kdash %s  ticks=%d idle=%d current=%d",
		buildinfo.Short(), snap.Ticks, snap.IdleTicks, snap.Current))

	if d.bar == nil || d.bar.Bounds().Dx() != windowWidth-40 {
		d.bar = ebiten.NewImage(windowWidth-40, barHeight)
	}

	y := 28
	for _, t := range snap.Tasks {
		d.bar.Fill(stateColor(t.State))
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(20, float64(y))
		screen.DrawImage(d.bar, op)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-12s pri=%-3d %s", t.Name, t.Priority, t.State), 24, y+3)
		y += barHeight + barGap
	}
}

func (d *dashboard) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}

func main() {
	h := hal.New(hal.Config{TickHz: 100})
	k := kernel.New()

	k.TaskCreate("worker-hi", 10, func(ctx *kernel.TaskContext) {
		for {
			ctx.Sleep(30)
		}
	})
	k.TaskCreate("worker-lo", 1, func(ctx *kernel.TaskContext) {
		for {
			ctx.Yield()
		}
	})

	k.AttachTick(h.Tick())
	k.Start()

	ebiten.SetWindowTitle("kdash (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(&dashboard{k: k}); err != nil {
		panic(err)
	}
}
