package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Carrerajorge/Hola-sub011/internal/loader"
	"github.com/Carrerajorge/Hola-sub011/internal/snapshot"
	"github.com/Carrerajorge/Hola-sub011/internal/ui"
)

func main() {
	demo := flag.Bool("demo", false, "open a synthetic 10000x10000 workbook instead of a file")
	rows := flag.Int("rows", 0, "row count for -demo (default 10000)")
	cols := flag.Int("cols", 0, "column count for -demo (default 10000)")
	snapDir := flag.String("snapdir", snapshot.DefaultDir(), "directory for edit snapshots; empty disables saving")
	cpuProfile := flag.String("cpuprofile", "", "write a CPU profile to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: holagrid [flags] [workbook | directory]\n\n")
		fmt.Fprintf(os.Stderr, "Opens a workbook, or a picker over the workbooks found under a directory.\n")
		fmt.Fprintf(os.Stderr, "With no argument the picker scans the current directory.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// The CPUPROFILE env var works too, so profiling needs no flag change
	// in wrapper scripts
	if *cpuProfile == "" {
		*cpuProfile = os.Getenv("CPUPROFILE")
	}
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg := ui.Config{
		Loader: loader.Config{SnapshotDir: *snapDir},
	}

	switch {
	case *demo:
		cfg.Source = loader.NewDemoSource(*rows, *cols)
	case flag.NArg() > 0:
		path := flag.Arg(0)
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "holagrid: %v\n", err)
			os.Exit(1)
		}
		if st.IsDir() {
			cfg.ScanRoot = path
		} else {
			src, err := loader.OpenPath(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "holagrid: %v\n", err)
				os.Exit(1)
			}
			cfg.Source = src
		}
	default:
		cfg.ScanRoot = "."
	}

	p := tea.NewProgram(
		ui.NewApp(cfg),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
