// Command fgdump compiles a frame graph description file and prints the
// graph report: passes, execution order, resources and transitions.
//
// Usage:
//
//	fgdump [flags] file.hcl
//
// Flags:
//
//	-config path    configuration file (default fgdump.toml, if present)
//	-out path       write the report to path instead of stdout
//	-backend name   device backend: null or noop
//	-execute        execute the graph in recorded mode after compiling
//	-watch          recompile whenever the file changes
//	-strict         fail on dependency cycles
//	-log level      log level: debug, info, warn or error
//	-var name=value set a graph variable; may be repeated
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/graphfile"

	// Registers the noop backend.
	_ "github.com/gogpu/framegraph/backend/wgpu"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "fgdump:", err)
		os.Exit(1)
	}
}

// varFlags collects repeated -var flags.
type varFlags map[string]cty.Value

func (v varFlags) String() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

func (v varFlags) Set(s string) error {
	name, val, err := graphfile.ParseVar(s)
	if err != nil {
		return err
	}
	v[name] = val
	return nil
}

// options are the merged configuration and flags.
type options struct {
	Config
	path string
	vars map[string]cty.Value
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("fgdump", flag.ContinueOnError)
	var (
		configPath = fs.String("config", defaultConfigFile, "configuration `file`")
		out        = fs.String("out", "", "write the report to `file`")
		backendArg = fs.String("backend", "", "device `backend`: "+strings.Join(backend.Available(), ", "))
		execute    = fs.Bool("execute", false, "execute the graph after compiling")
		watch      = fs.Bool("watch", false, "recompile when the file changes")
		strict     = fs.Bool("strict", false, "fail on dependency cycles")
		logLevel   = fs.String("log", "", "log `level`: debug, info, warn, error")
		vars       = varFlags{}
	)
	fs.Var(vars, "var", "graph variable `name=value`; may be repeated")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one graph file")
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(*configPath, set["config"])
	if err != nil {
		return nil, err
	}
	if set["out"] {
		cfg.Out = *out
	}
	if set["backend"] {
		cfg.Backend = *backendArg
	}
	if set["execute"] {
		cfg.Execute = *execute
	}
	if set["watch"] {
		cfg.Watch = *watch
	}
	if set["strict"] {
		cfg.StrictCycles = *strict
	}
	if set["log"] {
		cfg.LogLevel = *logLevel
	}

	fileVars, err := cfg.ctyVars()
	if err != nil {
		return nil, err
	}
	return &options{
		Config: cfg,
		path:   fs.Arg(0),
		vars:   graphfile.MergeVars(fileVars, vars),
	}, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	level, err := opts.level()
	if err != nil {
		return err
	}
	framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	defer framegraph.SetLogger(nil)

	dev, err := backend.Open(opts.Backend)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(dev); err != nil {
			framegraph.Logger().Warn("fgdump: close device", "err", err)
		}
	}()

	r := &runner{opts: opts, dev: &countingDevice{Device: dev}, stdout: stdout}
	if err := r.once(ctx); err != nil {
		if !opts.Watch {
			return err
		}
		framegraph.Logger().Error("fgdump: initial load failed", "err", err)
	}
	if !opts.Watch {
		return nil
	}
	return r.watch(ctx)
}
