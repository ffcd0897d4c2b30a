// Command kflash builds a flash image file containing a formatted flat
// filesystem populated from a source directory, for flashing onto a
// board or handing to cmd/simhost.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"oskernel/fs"
	"oskernel/hal"
)

const (
	defaultFlashPath   = "flash.bin"
	defaultFlashSize   = 4 * 1024 * 1024
	defaultSectorCount = 512
)

func main() {
	var srcDir string
	var outPath string
	var flashSize uint
	var sectors uint
	flag.StringVar(&srcDir, "src", "", "Source directory of flat files to import.")
	flag.StringVar(&outPath, "out", defaultFlashPath, "Output flash image path.")
	flag.UintVar(&flashSize, "size", defaultFlashSize, "Flash image size (bytes).")
	flag.UintVar(&sectors, "sectors", defaultSectorCount, "Number of data sectors to format.")
	flag.Parse()

	if srcDir == "" {
		fmt.Fprintln(os.Stderr, "error: -src is required")
		os.Exit(2)
	}

	if err := run(srcDir, outPath, uint32(flashSize), uint32(sectors)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(srcDir, outPath string, flashSize, dataSectors uint32) error {
	srcDir = filepath.Clean(srcDir)
	st, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("stat src %q: %w", srcDir, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("src %q is not a directory", srcDir)
	}

	flash := hal.NewHostFlash(outPath, flashSize)
	fsys := fs.New(flash, 0)
	if err := fsys.Format(dataSectors); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read src %q: %w", srcDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			return fmt.Errorf("src %q contains subdirectory %q: this filesystem has no directories", srcDir, e.Name())
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := copyFile(fsys, filepath.Join(srcDir, name), name); err != nil {
			return err
		}
	}

	fmt.Printf("kflash: wrote %d file(s) to %s (%d data sectors)\n", len(names), outPath, dataSectors)
	return nil
}

func copyFile(fsys *fs.FS, hostPath, name string) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("read %q: %w", hostPath, err)
	}
	if err := fsys.Create(name, data); err != nil {
		if errors.Is(err, fs.ErrInvalidName) {
			return fmt.Errorf("create %q: name too long for a %d-byte field", name, fs.NameLen-1)
		}
		return fmt.Errorf("create %q: %w", name, err)
	}
	return nil
}
