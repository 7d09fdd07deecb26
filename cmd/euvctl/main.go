// Command euvctl is a CLI host wired over the nine core components:
// it loads a PE file into a ByteSource, maps its headers, runs
// detectors, and executes/watches `.euv` patch scripts.
//
// Grounded on the teacher's main.go flag layout (flat flag.String/
// flag.Bool declarations, -x/--xxx short-and-long pairs, flag.Parse
// then flag.Args() for the positional filename) adapted to a
// subcommand dispatch since this host has five independent verbs
// instead of one compile pipeline.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/xyproto/euvcore/internal/bytesource"
	"github.com/xyproto/euvcore/internal/config"
	"github.com/xyproto/euvcore/internal/detect"
	"github.com/xyproto/euvcore/internal/diag"
	"github.com/xyproto/euvcore/internal/pemap"
	"github.com/xyproto/euvcore/internal/script"
	"github.com/xyproto/euvcore/internal/sigscan"
	"github.com/xyproto/euvcore/internal/undo"
	"github.com/xyproto/euvcore/internal/watch"
)

const versionString = "euvctl 0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "map":
		err = runMap(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "detect":
		err = runDetect(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "-V", "--version", "version":
		fmt.Println(versionString)
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "euvctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `euvctl - static PE analysis and patching

Usage:
  euvctl map <file>              print the DOS/NT header tree
  euvctl scan <file> <pattern>   search for a hex signature (?? wildcards allowed)
  euvctl detect <file>           run packer/protector detectors
  euvctl run <file> [script]     execute a .euv patch script once (falls back to EUVCORE_SCRIPT_PATH or the saved config)
  euvctl watch <file> [script]   re-run a .euv patch script on every save`)
}

func runMap(args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: euvctl map <file>")
	}

	src, err := bytesource.New(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	window := make([]byte, src.Len())
	src.ReadInto(0, window)

	root, regions := pemap.Parse(window, nil)
	printTree(root, 0)
	fmt.Printf("\n%d region(s)\n", len(regions))
	return nil
}

func printTree(n *pemap.BinaryStructure, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	if n.DisplayValue != "" {
		fmt.Printf("%s = %s\n", n.Name, n.DisplayValue)
	} else {
		fmt.Println(n.Name)
	}
	for _, c := range n.Children {
		printTree(c, depth+1)
	}
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: euvctl scan <file> <pattern>")
	}

	src, err := bytesource.New(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	pattern, err := sigscan.ParsePattern(fs.Arg(1))
	if err != nil {
		return err
	}
	matches := sigscan.FindAllInSource(src, pattern, fs.Arg(1))
	for _, m := range matches {
		window := make([]byte, m.Length)
		src.ReadInto(m.Offset, window)
		fmt.Printf("0x%08X  %s\n", m.Offset, diag.HexDump(window))
	}
	fmt.Printf("%d match(es)\n", len(matches))
	return nil
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: euvctl detect <file>")
	}

	src, err := bytesource.New(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	window := make([]byte, src.Len())
	src.ReadInto(0, window)

	structure, _ := pemap.Parse(window, nil)

	registry := detect.NewRegistry()
	registry.Register(detect.UPXDetector{})
	registry.Register(detect.ThemidaDetector{})
	registry.Register(detect.FSGDetector{})

	for _, r := range registry.Analyze(window, structure, nil) {
		fmt.Printf("%-20s kind=%-10s version=%-6s confidence=%.2f matches=%d\n", r.Name, r.Kind, r.Version, r.Confidence, len(r.Matches))
		for _, m := range r.Matches {
			dump := make([]byte, m.Length)
			src.ReadInto(m.Offset, dump)
			fmt.Printf("  0x%08X  %s\n", m.Offset, diag.HexDump(dump))
		}
	}
	fmt.Printf("entropy=%.2f\n", sigscan.Entropy(window))
	return nil
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 && fs.NArg() != 2 {
		return fmt.Errorf("usage: euvctl run <file> [script]")
	}
	scriptPath, err := resolveScriptPath(fs)
	if err != nil {
		return err
	}
	n, err := executeOnce(fs.Arg(0), scriptPath)
	if err != nil {
		return err
	}
	if err := saveLastScriptPath(scriptPath); err != nil {
		return err
	}
	fmt.Printf("%d byte(s) written\n", n)
	return nil
}

// resolveScriptPath honors an explicit second positional argument
// first, then EUVCORE_SCRIPT_PATH, then the last script path saved in
// the host config — the precedence order spec.md §6 assigns the
// host-config layer relative to CLI input.
func resolveScriptPath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() == 2 {
		return fs.Arg(1), nil
	}
	if p := config.ScriptPathOverride(); p != "" {
		return p, nil
	}
	state, err := config.Load()
	if err != nil {
		return "", err
	}
	if state.LastScriptPath == "" {
		return "", fmt.Errorf("no script path given and none saved in config")
	}
	return state.LastScriptPath, nil
}

func saveLastScriptPath(scriptPath string) error {
	state, err := config.Load()
	if err != nil {
		return err
	}
	state.LastScriptPath = scriptPath
	return config.Save(state)
}

func executeOnce(filePath, scriptPath string) (int, error) {
	src, err := bytesource.New(filePath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	text, err := os.ReadFile(scriptPath)
	if err != nil {
		return 0, err
	}
	parsed, err := script.Parse(string(text))
	if err != nil {
		return 0, err
	}

	journal := undo.New()
	logger := diag.NewChannelLogger(256)
	go drainLogger(logger)

	engine := script.NewEngine(src, journal, logger)
	n, err := engine.Run(parsed)
	if err != nil {
		return n, err
	}
	if err := src.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

func drainLogger(logger *diag.ChannelLogger) {
	for rec := range logger.C() {
		fmt.Fprintln(os.Stderr, rec.String())
	}
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 && fs.NArg() != 2 {
		return fmt.Errorf("usage: euvctl watch <file> [script]")
	}
	filePath := fs.Arg(0)
	scriptPath, err := resolveScriptPath(fs)
	if err != nil {
		return err
	}
	if err := saveLastScriptPath(scriptPath); err != nil {
		return err
	}

	w, err := watch.New(scriptPath, func() {
		n, err := executeOnce(filePath, scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "euvctl: run failed: %v\n", err)
			return
		}
		fmt.Printf("euvctl: re-ran %s (%d byte(s) written)\n", scriptPath, n)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("watching %s (Ctrl-C to stop)\n", scriptPath)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
	return nil
}
