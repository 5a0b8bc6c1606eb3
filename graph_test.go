package framegraph

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
)

// passSpec is a compact pass declaration for table tests.
type passSpec struct {
	name   string
	reads  []TextureHandle
	writes []TextureHandle
}

func colorDesc(name string) TextureDesc {
	return TextureDesc{
		Name:      name,
		Width:     64,
		Height:    64,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Transient: true,
	}
}

// declare adds passes that append their name to *ran when executed.
func declare(g *Graph, specs []passSpec, ran *[]string) {
	for _, s := range specs {
		g.AddPass(PassDesc{
			Name: s.name,
			Setup: func(b *Builder) {
				for _, h := range s.writes {
					b.WriteTexture(h, 0)
				}
				for _, h := range s.reads {
					b.ReadTexture(h, 0)
				}
			},
			Execute: func(*PassContext) { *ran = append(*ran, s.name) },
		})
	}
}

func TestCompile_Scenario(t *testing.T) {
	g := New()
	t1 := g.CreateTexture(TextureDesc{Name: "T1", Width: 64, Height: 64, Format: gputypes.TextureFormatDepth24PlusStencil8})
	t2 := g.CreateTexture(colorDesc("T2"))

	var ran []string
	declare(g, []passSpec{
		{name: "Depth", writes: []TextureHandle{t1}},
		{name: "Color", reads: []TextureHandle{t1}, writes: []TextureHandle{t2}},
		{name: "Tonemap", reads: []TextureHandle{t2}},
	}, &ran)

	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if g.HasCycle() {
		t.Fatal("HasCycle() = true, want false")
	}
	g.Execute(nil)

	if want := []string{"Depth", "Color", "Tonemap"}; !slices.Equal(ran, want) {
		t.Errorf("executed %v, want %v", ran, want)
	}

	passes := g.Passes()
	if len(passes[0].Transitions) != 0 {
		t.Errorf("Depth transitions = %v, want none", passes[0].Transitions)
	}
	wantColor := []Transition{{Kind: KindTexture, Handle: uint32(t1), Before: UsageWrite, After: UsageRead}}
	if !slices.Equal(passes[1].Transitions, wantColor) {
		t.Errorf("Color transitions = %v, want %v", passes[1].Transitions, wantColor)
	}
	wantTonemap := []Transition{{Kind: KindTexture, Handle: uint32(t2), Before: UsageWrite, After: UsageRead}}
	if !slices.Equal(passes[2].Transitions, wantTonemap) {
		t.Errorf("Tonemap transitions = %v, want %v", passes[2].Transitions, wantTonemap)
	}
}

func TestCompile_ReadBeforeFirstWrite(t *testing.T) {
	g := New()
	x := g.CreateTexture(colorDesc("X"))
	var ran []string
	declare(g, []passSpec{
		{name: "Reader", reads: []TextureHandle{x}},
		{name: "Writer", writes: []TextureHandle{x}},
	}, &ran)

	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if g.HasCycle() {
		t.Fatal("HasCycle() = true, want false")
	}
	if got := g.Order(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("Order() = %v, want [0 1]", got)
	}

	passes := g.Passes()
	if len(passes[0].Transitions) != 0 {
		t.Errorf("Reader transitions = %v, want none", passes[0].Transitions)
	}
	want := []Transition{{Kind: KindTexture, Handle: uint32(x), Before: UsageRead, After: UsageWrite}}
	if !slices.Equal(passes[1].Transitions, want) {
		t.Errorf("Writer transitions = %v, want %v", passes[1].Transitions, want)
	}
}

func TestCompile_Ordering(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *Graph, ran *[]string)
		want  []string
	}{
		{
			name: "writer before reader",
			build: func(g *Graph, ran *[]string) {
				a := g.CreateTexture(colorDesc("a"))
				declare(g, []passSpec{
					{name: "W", writes: []TextureHandle{a}},
					{name: "R", reads: []TextureHandle{a}},
				}, ran)
			},
			want: []string{"W", "R"},
		},
		{
			name: "reader declared first keeps declaration order",
			build: func(g *Graph, ran *[]string) {
				a := g.CreateTexture(colorDesc("a"))
				declare(g, []passSpec{
					{name: "R", reads: []TextureHandle{a}},
					{name: "W", writes: []TextureHandle{a}},
				}, ran)
			},
			want: []string{"R", "W"},
		},
		{
			name: "independent passes keep declaration order",
			build: func(g *Graph, ran *[]string) {
				a := g.CreateTexture(colorDesc("a"))
				b := g.CreateTexture(colorDesc("b"))
				declare(g, []passSpec{
					{name: "A", writes: []TextureHandle{a}},
					{name: "B", writes: []TextureHandle{b}},
					{name: "C"},
				}, ran)
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "consecutive writers",
			build: func(g *Graph, ran *[]string) {
				a := g.CreateTexture(colorDesc("a"))
				declare(g, []passSpec{
					{name: "W1", writes: []TextureHandle{a}},
					{name: "W2", writes: []TextureHandle{a}},
					{name: "R", reads: []TextureHandle{a}},
				}, ran)
			},
			want: []string{"W1", "W2", "R"},
		},
		{
			name: "diamond",
			build: func(g *Graph, ran *[]string) {
				src := g.CreateTexture(colorDesc("src"))
				l := g.CreateTexture(colorDesc("l"))
				r := g.CreateTexture(colorDesc("r"))
				declare(g, []passSpec{
					{name: "Src", writes: []TextureHandle{src}},
					{name: "Left", reads: []TextureHandle{src}, writes: []TextureHandle{l}},
					{name: "Right", reads: []TextureHandle{src}, writes: []TextureHandle{r}},
					{name: "Join", reads: []TextureHandle{l, r}},
				}, ran)
			},
			want: []string{"Src", "Left", "Right", "Join"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			var ran []string
			tt.build(g, &ran)
			if err := g.Compile(); err != nil {
				t.Fatalf("Compile() = %v", err)
			}
			g.Execute(nil)
			if !slices.Equal(ran, tt.want) {
				t.Errorf("executed %v, want %v", ran, tt.want)
			}
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	g := New()
	build := func() {
		a := g.CreateTexture(colorDesc("a"))
		b := g.CreateTexture(colorDesc("b"))
		c := g.CreateTexture(colorDesc("c"))
		var ran []string
		declare(g, []passSpec{
			{name: "P0", reads: []TextureHandle{c}},
			{name: "P1", writes: []TextureHandle{a}},
			{name: "P2", reads: []TextureHandle{a}, writes: []TextureHandle{b}},
			{name: "P3", writes: []TextureHandle{c}},
			{name: "P4", reads: []TextureHandle{b}},
		}, &ran)
	}

	build()
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	first := g.Order()

	for range 5 {
		g.Reset()
		build()
		if err := g.Compile(); err != nil {
			t.Fatalf("Compile() = %v", err)
		}
		if got := g.Order(); !slices.Equal(got, first) {
			t.Fatalf("Order() = %v, want %v", got, first)
		}
	}
}

func TestCompile_TransitionMinimality(t *testing.T) {
	g := New()
	a := g.CreateTexture(colorDesc("a"))
	var ran []string
	declare(g, []passSpec{
		{name: "W", writes: []TextureHandle{a}},
		{name: "R1", reads: []TextureHandle{a}},
		{name: "R2", reads: []TextureHandle{a}},
		{name: "W2", writes: []TextureHandle{a}},
		{name: "W3", writes: []TextureHandle{a}},
	}, &ran)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	want := map[string]int{"W": 0, "R1": 1, "R2": 0, "W2": 1, "W3": 0}
	for _, p := range g.Passes() {
		if got := len(p.Transitions); got != want[p.Name] {
			t.Errorf("%s: %d transitions %v, want %d", p.Name, got, p.Transitions, want[p.Name])
		}
	}
}

func TestCompile_ReadWriteUsage(t *testing.T) {
	g := New()
	a := g.CreateTexture(colorDesc("a"))
	g.AddPass(PassDesc{Name: "W", Setup: func(b *Builder) { b.WriteTexture(a, 0) }})
	g.AddPass(PassDesc{Name: "RW", Setup: func(b *Builder) { b.ReadTexture(a, UsageWrite) }})
	g.AddPass(PassDesc{Name: "R", Setup: func(b *Builder) { b.ReadTexture(a, 0) }})
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	passes := g.Passes()
	if got := passes[1].Usages[0].Usage; got != UsageReadWrite {
		t.Errorf("ReadTexture(h, UsageWrite) usage = %v, want ReadWrite", got)
	}
	want := []Transition{{Kind: KindTexture, Handle: uint32(a), Before: UsageWrite, After: UsageReadWrite}}
	if !slices.Equal(passes[1].Transitions, want) {
		t.Errorf("RW transitions = %v, want %v", passes[1].Transitions, want)
	}
	want = []Transition{{Kind: KindTexture, Handle: uint32(a), Before: UsageReadWrite, After: UsageRead}}
	if !slices.Equal(passes[2].Transitions, want) {
		t.Errorf("R transitions = %v, want %v", passes[2].Transitions, want)
	}
}

func TestCompile_MergesRepeatedUsage(t *testing.T) {
	g := New()
	a := g.CreateTexture(colorDesc("a"))
	g.AddPass(PassDesc{Name: "P", Setup: func(b *Builder) {
		b.ReadTexture(a, 0)
		b.WriteTexture(a, 0)
	}})
	_ = g.Compile()

	u := g.Passes()[0].Usages
	if len(u) != 1 || u[0].Usage != UsageReadWrite {
		t.Errorf("Usages = %v, want one ReadWrite record", u)
	}
}

func TestCompile_BuffersTrackedSeparately(t *testing.T) {
	g := New()
	tex := g.CreateTexture(colorDesc("t"))
	buf := g.CreateBuffer(BufferDesc{Name: "b", Size: 16})
	if uint32(tex) != uint32(buf) {
		t.Fatal("test expects equal handle values across kinds")
	}

	var ran []string
	g.AddPass(PassDesc{
		Name:    "ReadBuf",
		Setup:   func(b *Builder) { b.ReadBuffer(buf, 0) },
		Execute: func(*PassContext) { ran = append(ran, "ReadBuf") },
	})
	g.AddPass(PassDesc{
		Name:    "WriteTex",
		Setup:   func(b *Builder) { b.WriteTexture(tex, 0) },
		Execute: func(*PassContext) { ran = append(ran, "WriteTex") },
	})
	g.AddPass(PassDesc{
		Name:    "WriteBuf",
		Setup:   func(b *Builder) { b.WriteBuffer(buf, 0) },
		Execute: func(*PassContext) { ran = append(ran, "WriteBuf") },
	})
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	g.Execute(nil)

	if want := []string{"WriteTex", "WriteBuf", "ReadBuf"}; !slices.Equal(ran, want) {
		t.Errorf("executed %v, want %v", ran, want)
	}
}

func TestCompile_CycleFallback(t *testing.T) {
	g := New()
	r := g.CreateTexture(colorDesc("R"))
	s := g.CreateTexture(colorDesc("S"))

	counts := map[string]int{}
	var ran []string
	for _, p := range []struct {
		name      string
		write, rd TextureHandle
	}{{"A", r, s}, {"B", s, r}} {
		g.AddPass(PassDesc{
			Name: p.name,
			Setup: func(b *Builder) {
				b.WriteTexture(p.write, 0)
				b.ReadTexture(p.rd, 0)
			},
			Execute: func(*PassContext) {
				counts[p.name]++
				ran = append(ran, p.name)
			},
		})
	}

	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v, want nil in permissive mode", err)
	}
	if !g.HasCycle() {
		t.Fatal("HasCycle() = false, want true")
	}
	g.Execute(nil)

	if want := []string{"A", "B"}; !slices.Equal(ran, want) {
		t.Errorf("executed %v, want %v", ran, want)
	}
	if counts["A"] != 1 || counts["B"] != 1 {
		t.Errorf("execution counts = %v, want each pass once", counts)
	}
	if got := g.Order(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("Order() = %v, want declaration order", got)
	}
}

func TestCompile_StrictCycles(t *testing.T) {
	g := New(WithStrictCycles())
	r := g.CreateTexture(colorDesc("R"))
	s := g.CreateTexture(colorDesc("S"))
	g.AddPass(PassDesc{Name: "A", Setup: func(b *Builder) {
		b.WriteTexture(r, 0)
		b.ReadTexture(s, 0)
	}})
	g.AddPass(PassDesc{Name: "B", Setup: func(b *Builder) {
		b.WriteTexture(s, 0)
		b.ReadTexture(r, 0)
	}})

	if err := g.Compile(); !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("Compile() = %v, want ErrCyclicDependency", err)
	}

	ran := 0
	g.passes[0].desc.Execute = func(*PassContext) { ran++ }
	g.passes[1].desc.Execute = func(*PassContext) { ran++ }
	g.Execute(nil)
	if ran != 2 {
		t.Errorf("ran %d passes after strict cycle, want 2", ran)
	}
}

func TestExecute_DisabledPass(t *testing.T) {
	enabled := false
	transitions := 0
	g := New(WithTransitionCallback(func(*PassInfo, []Transition) { transitions++ }))
	a := g.CreateTexture(colorDesc("a"))

	var ran []string
	g.AddPass(PassDesc{
		Name:    "W",
		Setup:   func(b *Builder) { b.WriteTexture(a, 0) },
		Execute: func(*PassContext) { ran = append(ran, "W") },
	})
	g.AddPass(PassDesc{
		Name:    "R",
		Enabled: func() bool { return enabled },
		Setup:   func(b *Builder) { b.ReadTexture(a, 0) },
		Execute: func(*PassContext) { ran = append(ran, "R") },
	})
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	g.Execute(nil)
	if !slices.Equal(ran, []string{"W"}) || transitions != 0 {
		t.Errorf("disabled: ran %v with %d transition calls, want [W] and 0", ran, transitions)
	}

	// Disabling is evaluated per Execute, not at compile time.
	enabled = true
	ran = nil
	g.Execute(nil)
	if !slices.Equal(ran, []string{"W", "R"}) || transitions != 1 {
		t.Errorf("enabled: ran %v with %d transition calls, want [W R] and 1", ran, transitions)
	}
}

func TestExecute_TransitionCallback(t *testing.T) {
	var got []string
	g := New(WithTransitionCallback(func(p *PassInfo, ts []Transition) {
		for _, tr := range ts {
			got = append(got, p.Name+":"+tr.String())
		}
	}))
	t1 := g.CreateTexture(colorDesc("T1"))
	var ran []string
	declare(g, []passSpec{
		{name: "Depth", writes: []TextureHandle{t1}},
		{name: "Color", reads: []TextureHandle{t1}},
	}, &ran)
	_ = g.Compile()
	g.Execute(nil)

	if want := []string{"Color:texture#1 Write->Read"}; !slices.Equal(got, want) {
		t.Errorf("callback saw %v, want %v", got, want)
	}

	calls := 0
	g.SetTransitionCallback(func(*PassInfo, []Transition) { calls++ })
	g.Execute(nil)
	g.SetTransitionCallback(nil)
	g.Execute(nil)
	if calls != 1 || len(got) != 1 {
		t.Errorf("after replacing the callback: %d calls, old one saw %d, want 1 and 1", calls, len(got))
	}
}

func TestExecute_WithoutCompileUsesDeclarationOrder(t *testing.T) {
	g := New()
	var ran []string
	for _, name := range []string{"A", "B", "C"} {
		g.AddPass(PassDesc{Name: name, Execute: func(*PassContext) { ran = append(ran, name) }})
	}
	g.Execute(nil)
	if want := []string{"A", "B", "C"}; !slices.Equal(ran, want) {
		t.Errorf("executed %v, want %v", ran, want)
	}
}

func TestBuilder_InvalidHandles(t *testing.T) {
	g := New()
	a := g.CreateTexture(colorDesc("a"))
	g.AddPass(PassDesc{Name: "P", Setup: func(b *Builder) {
		if got := b.ReadTexture(0, 0); got != 0 {
			t.Errorf("ReadTexture(0) = %d, want 0", got)
		}
		b.WriteTexture(42, 0)
		b.ReadBuffer(7, 0)
		b.WriteTexture(a, 0)
		b.SetRenderTarget(a, 99).SetViewport(10, 20)
	}})
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	p := g.Passes()[0]
	if len(p.Usages) != 1 || p.Usages[0].Handle != uint32(a) {
		t.Errorf("Usages = %v, want only the valid write", p.Usages)
	}
	if p.ColorTarget != a || p.DepthTarget != 0 {
		t.Errorf("targets = %d/%d, want %d/0", p.ColorTarget, p.DepthTarget, a)
	}
	if p.Viewport != (Viewport{Width: 10, Height: 20}) {
		t.Errorf("Viewport = %+v, want 10x20", p.Viewport)
	}
}

func TestBuilder_IgnoredAfterSetup(t *testing.T) {
	g := New()
	a := g.CreateTexture(colorDesc("a"))
	var saved *Builder
	g.AddPass(PassDesc{Name: "P", Setup: func(b *Builder) { saved = b }})
	_ = g.Compile()

	saved.WriteTexture(a, 0)
	saved.SetViewport(5, 5)
	if p := g.Passes()[0]; len(p.Usages) != 0 || p.Viewport == (Viewport{Width: 5, Height: 5}) {
		t.Errorf("builder used after Setup changed the pass: %+v", p)
	}
}

func TestGraph_InvalidHandlesAreNoOps(t *testing.T) {
	g := New()
	g.BindTexture(0, nil)
	g.BindTexture(3, nil)
	g.BindBuffer(1, nil)

	if g.GetTextureResource(0) != nil || g.GetTextureResource(5) != nil {
		t.Error("GetTextureResource on invalid handle returned a resource")
	}
	if g.GetBufferResource(0) != nil {
		t.Error("GetBufferResource on invalid handle returned a resource")
	}
	if _, err := g.TextureDesc(9); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("TextureDesc(9) = %v, want ErrInvalidHandle", err)
	}
	if _, err := g.BufferDesc(0); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("BufferDesc(0) = %v, want ErrInvalidHandle", err)
	}
}

func TestGraph_HandlesAreDenseAndRestartOnReset(t *testing.T) {
	g := New()
	for want := TextureHandle(1); want <= 3; want++ {
		if got := g.CreateTexture(colorDesc("t")); got != want {
			t.Fatalf("CreateTexture() = %d, want %d", got, want)
		}
	}
	if got := g.CreateBuffer(BufferDesc{Size: 4}); got != 1 {
		t.Errorf("first CreateBuffer() = %d, want 1", got)
	}

	g.Reset()
	if g.TextureCount() != 0 || g.BufferCount() != 0 || g.PassCount() != 0 {
		t.Error("Reset() left declarations behind")
	}
	if g.Compiled() {
		t.Error("Compiled() = true after Reset")
	}
	if got := g.CreateTexture(colorDesc("t")); got != 1 {
		t.Errorf("CreateTexture() after Reset = %d, want 1", got)
	}
}

func TestPassContext_Viewport(t *testing.T) {
	g := New(WithDefaultViewport(320, 240))
	target := g.CreateTexture(TextureDesc{Name: "target", Width: 800, Height: 600})
	other := g.CreateTexture(TextureDesc{Name: "other", Width: 128, Height: 64})
	g.BindRenderTarget(target, 0, nil)

	got := map[string]Viewport{}
	add := func(name string, setup func(b *Builder)) {
		g.AddPass(PassDesc{
			Name:    name,
			Setup:   setup,
			Execute: func(ctx *PassContext) { got[name] = ctx.Viewport },
		})
	}
	add("explicit", func(b *Builder) { b.SetViewport(10, 10) })
	add("own-target", func(b *Builder) { b.SetRenderTarget(other, 0) })
	add("graph-target", func(*Builder) {})
	add("no-target", func(b *Builder) { b.SetRenderTarget(0, 0) })

	_ = g.Compile()
	g.Execute(nil)

	want := map[string]Viewport{
		"explicit":     {10, 10},
		"own-target":   {128, 64},
		"graph-target": {800, 600},
		"no-target":    {320, 240},
	}
	for name, vp := range want {
		if got[name] != vp {
			t.Errorf("%s viewport = %+v, want %+v", name, got[name], vp)
		}
	}
}
