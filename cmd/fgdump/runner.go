package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/graphfile"
	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// countingDevice counts what the graph submits to the wrapped device.
type countingDevice struct {
	render.Device
	lists    atomic.Int64
	commands atomic.Int64
}

func (d *countingDevice) ExecuteCommandList(list *recording.CommandList) error {
	return d.ExecuteCommandLists([]*recording.CommandList{list})
}

func (d *countingDevice) ExecuteCommandLists(lists []*recording.CommandList) error {
	for _, l := range lists {
		d.lists.Add(1)
		d.commands.Add(int64(l.CommandCount()))
	}
	return d.Device.ExecuteCommandLists(lists)
}

func (d *countingDevice) reset() {
	d.lists.Store(0)
	d.commands.Store(0)
}

type runner struct {
	opts   *options
	dev    *countingDevice
	stdout io.Writer

	// watching is called once the watcher is armed.
	watching func()
}

// once loads, compiles and reports the graph file, executing it when
// requested.
func (r *runner) once(ctx context.Context) error {
	f, err := graphfile.Load(r.opts.path, r.opts.vars)
	if err != nil {
		return err
	}

	gopts := []framegraph.Option{framegraph.WithDeviceAllocators(r.dev)}
	if !f.Viewport.IsZero() {
		gopts = append(gopts, framegraph.WithDefaultViewport(f.Viewport.Width, f.Viewport.Height))
	}
	if r.opts.StrictCycles {
		gopts = append(gopts, framegraph.WithStrictCycles())
	}
	g := framegraph.New(gopts...)
	b := f.Apply(g)
	defer func() {
		b.Close()
		g.Reset()
		g.ClearPool()
	}()

	if err := g.Compile(); err != nil {
		return err
	}

	w, closeOut, err := r.output()
	if err != nil {
		return err
	}
	defer closeOut()

	if err := g.WriteReport(w); err != nil {
		return err
	}
	if !r.opts.Execute {
		return nil
	}

	r.dev.reset()
	if err := r.dev.BeginFrame(); err != nil {
		return err
	}
	err = g.ExecuteRecorded(ctx, r.dev)
	if endErr := r.dev.EndFrame(); err == nil {
		err = endErr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nexecuted on %s: %d command lists, %d commands\n",
		r.opts.Backend, r.dev.lists.Load(), r.dev.commands.Load())
	return err
}

func (r *runner) output() (io.Writer, func(), error) {
	if r.opts.Out == "" {
		return r.stdout, func() {}, nil
	}
	f, err := os.Create(r.opts.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("open report: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			framegraph.Logger().Warn("fgdump: close report", "err", err)
		}
	}, nil
}

// watch re-runs once on every write to the graph file until ctx is done.
func (r *runner) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	path := filepath.Clean(r.opts.path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log := framegraph.Logger()
	log.Info("fgdump: watching", "file", path)
	if r.watching != nil {
		r.watching()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Info("fgdump: reloading", "file", path, "op", ev.Op.String())
			if err := r.once(ctx); err != nil {
				log.Error("fgdump: reload failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("fgdump: watcher error", "err", err)
		}
	}
}
