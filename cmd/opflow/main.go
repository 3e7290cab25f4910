// Command opflow drives the catalog/plan/emit/run pipeline from the command
// line: given a start and end state (explicit or guessed from filenames) and
// an execution mode, it plans a path through the demo catalog and dispatches
// to one of the run façade's sinks.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/xerrors"

	"github.com/opflow/opflow/internal/catalog"
	"github.com/opflow/opflow/internal/config"
	"github.com/opflow/opflow/internal/plan"
	"github.com/opflow/opflow/internal/run"
)

const (
	modePlan = "plan"
	modeDot  = "dot"
	modeEmit = "emit"
	modeGen  = "gen"
	modeRun  = "run"
)

var (
	fromFlag  = flag.String("from", "", "state to start from (guessed from the input filename if omitted)")
	toFlag    = flag.String("to", "", "state to produce (guessed from -o if omitted)")
	outFlag   = flag.String("o", "", "output file; empty means write to stdout")
	modeFlag  = flag.String("mode", modeEmit, "plan | dot | emit | gen | run")
	dirFlag   = flag.String("dir", "", "working directory for the build (default \".\", or \".opflow\" for gen/run)")
	keepFlag  = flag.Bool("keep", false, "in run mode, keep the scratch directory even on success")
	debugFlag = flag.Bool("debug", false, "print errors with full detail, including wrapped causes")
)

func main() {
	if err := realMain(); err != nil {
		if *debugFlag {
			log.Fatalf("opflow: %+v", err)
		}
		log.Fatalf("opflow: %v", err)
	}
}

func realMain() error {
	flag.Parse()

	var input string
	if flag.NArg() > 0 {
		input = flag.Arg(0)
	}

	workdir := *dirFlag
	if workdir == "" {
		switch *modeFlag {
		case modeGen, modeRun:
			workdir = ".opflow"
		default:
			workdir = "."
		}
	}

	cat := buildCatalog()

	startState, err := resolveState(cat, *fromFlag, input)
	if err != nil {
		return xerrors.Errorf("resolving start state (pass -from when reading from stdin): %w", err)
	}
	endState, err := resolveState(cat, *toFlag, *outFlag)
	if err != nil {
		return xerrors.Errorf("resolving end state (pass -to when writing to stdout): %w", err)
	}

	req := plan.Request{
		StartState: startState,
		EndState:   endState,
		StartFile:  input,
		EndFile:    *outFlag,
		Workdir:    workdir,
	}
	p, err := plan.Make(cat, req)
	if err != nil {
		return xerrors.Errorf("planning: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return xerrors.Errorf("loading configuration: %w", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "keep" {
			cfg.SetKeepBuildDir(*keepFlag)
		}
	})

	r := run.New(cat, p, cfg)

	switch *modeFlag {
	case modePlan:
		return r.Show(os.Stdout)
	case modeDot:
		return r.ShowDot(os.Stdout)
	case modeEmit:
		return r.EmitToStdout()
	case modeGen:
		return r.EmitToDir(workdir)
	case modeRun:
		return r.EmitAndRun(workdir)
	default:
		return fmt.Errorf("unknown mode %q", *modeFlag)
	}
}

// resolveState honors an explicit state name if given, otherwise guesses
// from path's extension. A pipe endpoint (path == "") carries no extension
// to guess from, so it requires the state to be named explicitly.
func resolveState(cat *catalog.Catalog, name, path string) (catalog.StateRef, error) {
	if name != "" {
		s, ok := cat.GetState(name)
		if !ok {
			return 0, xerrors.Errorf("no such state: %q", name)
		}
		return s, nil
	}
	if path == "" {
		return 0, xerrors.New("state cannot be guessed for a pipe endpoint")
	}
	s, ok := cat.GuessState(path)
	if !ok {
		return 0, xerrors.Errorf("cannot guess state of %q: unrecognized extension", path)
	}
	return s, nil
}
