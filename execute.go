package framegraph

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/framegraph/recording"
	"github.com/gogpu/framegraph/render"
)

// Execute runs the passes in compiled order, or in declaration order when
// the graph was not compiled. Disabled passes are skipped without invoking
// the transition callback. dev is handed to every pass and may be nil.
func (g *Graph) Execute(dev render.Device) {
	ctx := context.Background()
	for _, i := range g.executionOrder() {
		p := g.passes[i]
		if !p.enabled() {
			continue
		}
		g.notifyTransitions(i)
		if p.desc.Execute != nil {
			p.desc.Execute(g.newPassContext(ctx, dev, i, nil))
		}
	}
}

// ExecuteRecorded runs the passes in deferred mode. Every enabled pass
// records into its own command list, which starts with one ResourceBarrier
// per resolved transition. Lists are recorded concurrently when the device
// supports multithreaded recording, and submitted with a single
// ExecuteCommandLists call in execution order.
//
// Enabled predicates and the transition callback run on the calling
// goroutine before recording starts.
func (g *Graph) ExecuteRecorded(ctx context.Context, dev render.Device) error {
	if dev == nil {
		return ErrNilDevice
	}

	var enabled []int
	for _, i := range g.executionOrder() {
		if !g.passes[i].enabled() {
			continue
		}
		g.notifyTransitions(i)
		enabled = append(enabled, i)
	}

	lists := make([]*recording.CommandList, len(enabled))
	record := func(ctx context.Context, slot int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := enabled[slot]
		p := g.passes[i]
		cl := recording.NewCommandList(p.desc.Name)
		if err := cl.Begin(); err != nil {
			return fmt.Errorf("pass %q: %w", p.desc.Name, err)
		}
		g.recordBarriers(cl, p)
		if p.desc.Execute != nil {
			p.desc.Execute(g.newPassContext(ctx, dev, i, cl))
		}
		if cl.IsRecording() {
			if err := cl.End(); err != nil {
				return fmt.Errorf("pass %q: %w", p.desc.Name, err)
			}
		}
		lists[slot] = cl
		return nil
	}

	if dev.SupportsMultithreading() && len(enabled) > 1 {
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(runtime.GOMAXPROCS(0))
		for slot := range enabled {
			eg.Go(func() error { return record(egctx, slot) })
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	} else {
		for slot := range enabled {
			if err := record(ctx, slot); err != nil {
				return err
			}
		}
	}

	if len(lists) == 0 {
		return nil
	}
	if err := dev.ExecuteCommandLists(lists); err != nil {
		return fmt.Errorf("framegraph: submit %d command lists: %w", len(lists), err)
	}
	return nil
}

func (p *pass) enabled() bool {
	return p.desc.Enabled == nil || p.desc.Enabled()
}

// SetTransitionCallback replaces the callback invoked before each enabled
// pass with a non-empty transition list. nil removes it.
func (g *Graph) SetTransitionCallback(fn TransitionFunc) {
	g.onTransition = fn
}

func (g *Graph) notifyTransitions(i int) {
	if g.onTransition == nil || len(g.passes[i].transitions) == 0 {
		return
	}
	info := g.passInfo(i)
	g.onTransition(&info, info.Transitions)
}

// recordBarriers turns the pass transitions into barrier commands.
// Unresolved resources have nothing to transition and are skipped.
func (g *Graph) recordBarriers(cl *recording.CommandList, p *pass) {
	for _, t := range p.transitions {
		b := recording.ResourceBarrierCommand{Before: t.Before.Access(), After: t.After.Access()}
		switch t.Kind {
		case KindTexture:
			b.Texture = g.GetTextureResource(TextureHandle(t.Handle))
			if b.Texture == nil {
				continue
			}
		case KindBuffer:
			b.Buffer = g.GetBufferResource(BufferHandle(t.Handle))
			if b.Buffer == nil {
				continue
			}
		}
		cl.ResourceBarrier(b)
	}
}
