package framegraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/framegraph/gpu"
)

// WriteReport writes a human-readable description of the graph: declared
// passes with their usages, the execution order, declared resources with
// their resolution state, and per-pass transitions.
func (g *Graph) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "framegraph: %d passes, %d textures, %d buffers\n",
		len(g.passes), len(g.textures), len(g.buffers))
	switch {
	case !g.compiled:
		fmt.Fprintln(bw, "state: not compiled")
	case g.cycle:
		fmt.Fprintf(bw, "state: compiled, %d edges, CYCLE (declaration order)\n", g.edges)
	default:
		fmt.Fprintf(bw, "state: compiled, %d edges\n", g.edges)
	}

	fmt.Fprintln(bw, "\npasses:")
	for i, p := range g.passes {
		fmt.Fprintf(bw, "  [%d] %s\n", i, p.desc.Name)
		for _, u := range p.usages {
			fmt.Fprintf(bw, "      %-9s %s\n", u.Usage, g.resourceLabel(u.Kind, u.Handle))
		}
		if color, depth := g.targetsOf(p); color != 0 || depth != 0 {
			fmt.Fprintf(bw, "      target    color=%s depth=%s\n",
				g.resourceLabel(KindTexture, uint32(color)), g.resourceLabel(KindTexture, uint32(depth)))
		}
	}

	names := make([]string, 0, len(g.passes))
	for _, i := range g.executionOrder() {
		names = append(names, g.passes[i].desc.Name)
	}
	fmt.Fprintf(bw, "\norder: %s\n", strings.Join(names, " -> "))

	fmt.Fprintln(bw, "\nresources:")
	tw := tabwriter.NewWriter(bw, 0, 4, 2, ' ', 0)
	for i, e := range g.textures {
		fmt.Fprintf(tw, "  texture#%d\t%q\t%dx%d\t%s\t%s\t%s\n", i+1, e.desc.Name,
			e.desc.Width, e.desc.Height, gpu.FormatName(e.desc.Format),
			lifetime(e.desc.Transient), resolution(e.resource != nil, e.external, e.pool))
	}
	for i, e := range g.buffers {
		fmt.Fprintf(tw, "  buffer#%d\t%q\t%d bytes\t%s\t%s\t%s\n", i+1, e.desc.Name,
			e.desc.Size, e.desc.Kind, lifetime(e.desc.Transient),
			resolution(e.resource != nil, e.external, e.pool))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(bw, "\ntransitions:")
	for _, i := range g.executionOrder() {
		p := g.passes[i]
		if len(p.transitions) == 0 {
			fmt.Fprintf(bw, "  %s: none\n", p.desc.Name)
			continue
		}
		for _, t := range p.transitions {
			fmt.Fprintf(bw, "  %s: %s %s -> %s\n", p.desc.Name,
				g.resourceLabel(t.Kind, t.Handle), t.Before, t.After)
		}
	}

	s := g.PoolStats()
	fmt.Fprintf(bw, "\npool: %d textures, %d buffers, %d in use, %d hits, %d misses\n",
		s.Textures, s.Buffers, s.InUse, s.Hits, s.Misses)

	return bw.Flush()
}

// DumpGraph writes the WriteReport output to the file at path.
func (g *Graph) DumpGraph(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("framegraph: dump graph: %w", err)
	}
	if err := g.WriteReport(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("framegraph: dump graph: %w", err)
	}
	return f.Close()
}

func (g *Graph) resourceLabel(kind ResourceKind, h uint32) string {
	if h == 0 {
		return "-"
	}
	name := "?"
	switch kind {
	case KindTexture:
		if e := g.texture(TextureHandle(h)); e != nil {
			name = e.desc.Name
		}
	case KindBuffer:
		if e := g.buffer(BufferHandle(h)); e != nil {
			name = e.desc.Name
		}
	}
	return fmt.Sprintf("%s#%d(%s)", kind, h, name)
}

func lifetime(transient bool) string {
	if transient {
		return "transient"
	}
	return "persistent"
}

func resolution(resolved, external bool, pool int) string {
	switch {
	case !resolved:
		return "UNRESOLVED"
	case external:
		return "bound"
	case pool >= 0:
		return fmt.Sprintf("pool[%d]", pool)
	default:
		return "allocated"
	}
}
