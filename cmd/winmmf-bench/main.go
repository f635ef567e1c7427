// Command winmmf-bench is a convenience wrapper around the mmf library,
// exercising create/open/read/write/close from the command line for
// manual cross-process testing. It is not part of the library's surface
// and imports nothing the library itself needs.
package main

import (
	"fmt"
	"os"

	mmf "github.com/RivenSkaye/winmmf-go"
	"github.com/spf13/pflag"
)

var (
	name     string
	size     int
	mode     string
	payload  string
	readonly bool
	global   bool
	maxTries uint32
)

func registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&name, "name", "winmmf-bench", "mapping name (before namespace qualification)")
	flags.IntVar(&size, "size", 64, "payload size in bytes")
	flags.StringVar(&mode, "mode", "create", "create, open, read, or write")
	flags.StringVar(&payload, "payload", "", "bytes to write; only meaningful with -mode write")
	flags.BoolVar(&readonly, "readonly", false, "open for reading only; only meaningful with -mode open")
	flags.BoolVar(&global, "global", false, "qualify the name into the Global\\ namespace instead of Local\\")
	flags.Uint32Var(&maxTries, "max-tries", 0, "spin budget for the operation; 0 uses the library default")
}

func namespace() mmf.Namespace {
	if global {
		return mmf.ENamespace.Global()
	}
	return mmf.ENamespace.Local()
}

func run() error {
	switch mode {
	case "create":
		m, err := mmf.Create(size, name, namespace())
		if err != nil {
			return fmt.Errorf("create %q: %w", name, err)
		}
		defer m.Close()
		fmt.Printf("created %q (%d bytes payload)\n", m.FullName(), m.Size())
	case "open":
		m, err := mmf.Open(size, name, namespace(), readonly)
		if err != nil {
			return fmt.Errorf("open %q: %w", name, err)
		}
		defer m.Close()
		fmt.Printf("opened %q readonly=%v\n", m.FullName(), readonly)
	case "read":
		m, err := mmf.OpenRead(size, name, namespace())
		if err != nil {
			return fmt.Errorf("open %q: %w", name, err)
		}
		defer m.Close()
		buf, err := m.ReadSpin(0, maxTries, nil)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		fmt.Printf("%q\n", buf)
	case "write":
		m, err := mmf.OpenWrite(size, name, namespace())
		if err != nil {
			return fmt.Errorf("open %q: %w", name, err)
		}
		defer m.Close()
		if err := m.WriteSpin([]byte(payload), maxTries, nil); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
		fmt.Printf("wrote %d bytes to %q\n", len(payload), name)
	default:
		return fmt.Errorf("unknown mode %q: want create, open, read, or write", mode)
	}
	return nil
}

func main() {
	registerFlags(pflag.CommandLine)
	pflag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
