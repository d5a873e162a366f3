package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// Debug carries UI and lifecycle messages, Loader carries chunk streaming
// and source IO. Both discard unless HOLAGRID_DEBUG is set: "1" logs to
// ~/.holagrid/debug.log, any other value is used as the log file path.
var (
	Debug  *log.Logger
	Loader *log.Logger
)

func init() {
	target := os.Getenv("HOLAGRID_DEBUG")
	if target == "" {
		Debug = log.New(io.Discard, "", 0)
		Loader = log.New(io.Discard, "", 0)
		return
	}

	path := target
	if target == "1" || target == "true" {
		path = defaultPath()
	}

	_ = os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// A TUI owns stdout, so stderr is the only sane fallback
		Debug = log.New(os.Stderr, "", log.Lmicroseconds)
		Loader = log.New(os.Stderr, "", log.Lmicroseconds)
		return
	}

	Debug = log.New(f, "", log.Lmicroseconds)
	Loader = log.New(f, "", log.Lmicroseconds)
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "holagrid-debug.log"
	}
	return filepath.Join(home, ".holagrid", "debug.log")
}
