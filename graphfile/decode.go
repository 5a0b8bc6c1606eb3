// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graphfile

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "texture", LabelNames: []string{"name"}},
		{Type: "buffer", LabelNames: []string{"name"}},
		{Type: "pass", LabelNames: []string{"name"}},
		{Type: "target"},
		{Type: "viewport"},
	},
}

type variableBody struct {
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

type textureBody struct {
	Width     uint32         `hcl:"width"`
	Height    uint32         `hcl:"height"`
	Format    hcl.Expression `hcl:"format,optional"`
	Usage     hcl.Expression `hcl:"usage,optional"`
	Transient bool           `hcl:"transient,optional"`
}

type bufferBody struct {
	Size      uint64         `hcl:"size"`
	Kind      hcl.Expression `hcl:"kind,optional"`
	Usage     hcl.Expression `hcl:"usage,optional"`
	Transient bool           `hcl:"transient,optional"`
}

type targetBody struct {
	Color hcl.Expression `hcl:"color,optional"`
	Depth hcl.Expression `hcl:"depth,optional"`
}

type viewportBody struct {
	Width  uint32 `hcl:"width"`
	Height uint32 `hcl:"height"`
}

type passBody struct {
	Reads    hcl.Expression `hcl:"reads,optional"`
	Writes   hcl.Expression `hcl:"writes,optional"`
	Draws    uint32         `hcl:"draws,optional"`
	Enabled  hcl.Expression `hcl:"enabled,optional"`
	Target   *targetBody    `hcl:"target,block"`
	Viewport *viewportBody  `hcl:"viewport,block"`
}

// declaration is a named resource and where it was declared.
type declaration struct {
	kind framegraph.ResourceKind
	rng  hcl.Range
}

// item is a string list element and its source range.
type item struct {
	value string
	rng   hcl.Range
}

type decoder struct {
	vars     map[string]cty.Value
	ctx      *hcl.EvalContext
	declared map[string]declaration
	diags    hcl.Diagnostics
}

func newDecoder(vars map[string]cty.Value) *decoder {
	return &decoder{
		vars:     vars,
		declared: make(map[string]declaration),
	}
}

func (d *decoder) decode(body hcl.Body) *File {
	content, diags := body.Content(fileSchema)
	d.diags = append(d.diags, diags...)
	if content == nil {
		return &File{}
	}

	byType := make(map[string][]*hcl.Block)
	for _, b := range content.Blocks {
		byType[b.Type] = append(byType[b.Type], b)
	}

	f := &File{Vars: d.variables(byType["variable"])}
	d.ctx = &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(f.Vars)},
	}

	for _, b := range byType["texture"] {
		if desc, ok := d.texture(b); ok {
			f.Textures = append(f.Textures, desc)
		}
	}
	for _, b := range byType["buffer"] {
		if desc, ok := d.buffer(b); ok {
			f.Buffers = append(f.Buffers, desc)
		}
	}
	if t := d.single(byType["target"]); t != nil {
		var tb targetBody
		if d.body(t.Body, &tb) {
			f.Target = d.target(&tb)
		}
	}
	if v := d.single(byType["viewport"]); v != nil {
		var vb viewportBody
		if d.body(v.Body, &vb) {
			f.Viewport = framegraph.Viewport{Width: vb.Width, Height: vb.Height}
		}
	}

	seen := make(map[string]hcl.Range)
	for _, b := range byType["pass"] {
		label := b.Labels[0]
		if prev, dup := seen[label]; dup {
			d.errorf(b.LabelRanges[0], "Duplicate pass",
				"A pass named %q was already declared at %s.", label, prev)
			continue
		}
		seen[label] = b.DefRange
		if p, ok := d.pass(b); ok {
			f.Passes = append(f.Passes, p)
		}
	}
	return f
}

// variables resolves file variables: defaults, then variable blocks, then
// the caller's values.
func (d *decoder) variables(blocks []*hcl.Block) map[string]cty.Value {
	vals := DefaultVars()
	for _, b := range blocks {
		var vb variableBody
		if !d.body(b.Body, &vb) {
			continue
		}
		v, diags := vb.Default.Value(nil)
		d.diags = append(d.diags, diags...)
		if diags.HasErrors() {
			continue
		}
		if v.IsNull() {
			if _, ok := d.vars[b.Labels[0]]; !ok {
				d.errorf(b.DefRange, "Missing variable value",
					"Variable %q has no default and no value was given.", b.Labels[0])
			}
			continue
		}
		vals[b.Labels[0]] = v
	}
	for k, v := range d.vars {
		vals[k] = v
	}
	return vals
}

func (d *decoder) texture(b *hcl.Block) (framegraph.TextureDesc, bool) {
	label := b.Labels[0]
	var tb textureBody
	if !d.body(b.Body, &tb) || !d.declare(label, framegraph.KindTexture, b) {
		return framegraph.TextureDesc{}, false
	}
	desc := framegraph.TextureDesc{
		Name:      label,
		Width:     tb.Width,
		Height:    tb.Height,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Transient: tb.Transient,
	}
	if s, ok := d.str(tb.Format); ok {
		f, err := gpu.ParseFormat(s)
		if err != nil {
			d.errorf(tb.Format.Range(), "Invalid texture format", "%s.", trimPrefix(err))
			return desc, false
		}
		desc.Format = f
	}
	if names := d.strings(tb.Usage); names != nil {
		u, err := gpu.ParseTextureUsage(values(names))
		if err != nil {
			d.errorf(tb.Usage.Range(), "Invalid texture usage", "%s.", trimPrefix(err))
			return desc, false
		}
		desc.Usage = u
	}
	return desc, true
}

func (d *decoder) buffer(b *hcl.Block) (framegraph.BufferDesc, bool) {
	label := b.Labels[0]
	var bb bufferBody
	if !d.body(b.Body, &bb) || !d.declare(label, framegraph.KindBuffer, b) {
		return framegraph.BufferDesc{}, false
	}
	desc := framegraph.BufferDesc{
		Name:      label,
		Size:      bb.Size,
		Kind:      gpu.BufferStorage,
		Transient: bb.Transient,
	}
	if s, ok := d.str(bb.Kind); ok {
		k, err := gpu.ParseBufferKind(s)
		if err != nil {
			d.errorf(bb.Kind.Range(), "Invalid buffer kind", "%s.", trimPrefix(err))
			return desc, false
		}
		desc.Kind = k
	}
	if names := d.strings(bb.Usage); names != nil {
		u, err := gpu.ParseBufferUsage(values(names))
		if err != nil {
			d.errorf(bb.Usage.Range(), "Invalid buffer usage", "%s.", trimPrefix(err))
			return desc, false
		}
		desc.Usage = u
	}
	return desc, true
}

func (d *decoder) pass(b *hcl.Block) (Pass, bool) {
	var pb passBody
	if !d.body(b.Body, &pb) {
		return Pass{}, false
	}
	p := Pass{Name: b.Labels[0], Draws: pb.Draws, Enabled: true}
	before := len(d.diags)

	for _, n := range d.strings(pb.Reads) {
		if r, ok := d.resolve(p.Name, "reads", n); ok {
			p.Reads = append(p.Reads, r)
		}
	}
	for _, n := range d.strings(pb.Writes) {
		if r, ok := d.resolve(p.Name, "writes", n); ok {
			p.Writes = append(p.Writes, r)
		}
	}
	if v, ok := d.value(pb.Enabled, cty.Bool); ok {
		p.Enabled = v.True()
	}
	if pb.Target != nil {
		t := d.target(pb.Target)
		p.Target = &t
	}
	if pb.Viewport != nil {
		p.Viewport = framegraph.Viewport{Width: pb.Viewport.Width, Height: pb.Viewport.Height}
	}
	return p, !d.diags[before:].HasErrors()
}

func (d *decoder) target(tb *targetBody) Target {
	var t Target
	for _, a := range []struct {
		expr hcl.Expression
		dst  *string
	}{
		{tb.Color, &t.Color},
		{tb.Depth, &t.Depth},
	} {
		s, ok := d.str(a.expr)
		if !ok || s == "" {
			continue
		}
		decl, found := d.declared[s]
		switch {
		case !found:
			d.errorf(a.expr.Range(), "Unknown resource",
				"Render target %q is not declared as a texture.", s)
		case decl.kind != framegraph.KindTexture:
			d.errorf(a.expr.Range(), "Invalid render target",
				"%q is a buffer; render targets must be textures.", s)
		default:
			*a.dst = s
		}
	}
	return t
}

func (d *decoder) resolve(pass, verb string, n item) (Ref, bool) {
	decl, ok := d.declared[n.value]
	if !ok {
		d.errorf(n.rng, "Unknown resource",
			"Pass %q %s %q, which is not declared as a texture or buffer.", pass, verb, n.value)
		return Ref{}, false
	}
	return Ref{Name: n.value, Kind: decl.kind}, true
}

func (d *decoder) declare(label string, kind framegraph.ResourceKind, b *hcl.Block) bool {
	if prev, dup := d.declared[label]; dup {
		d.errorf(b.LabelRanges[0], "Duplicate resource",
			"A %s named %q was already declared at %s.", prev.kind, label, prev.rng)
		return false
	}
	d.declared[label] = declaration{kind: kind, rng: b.DefRange}
	return true
}

// single returns the only block of a kind, reporting any extras.
func (d *decoder) single(blocks []*hcl.Block) *hcl.Block {
	if len(blocks) == 0 {
		return nil
	}
	for _, b := range blocks[1:] {
		d.errorf(b.DefRange, "Duplicate block",
			"Only one top-level %s block is allowed.", b.Type)
	}
	return blocks[0]
}

func (d *decoder) body(body hcl.Body, v any) bool {
	diags := gohcl.DecodeBody(body, d.ctx, v)
	d.diags = append(d.diags, diags...)
	return !diags.HasErrors()
}

// value evaluates an optional attribute and converts it to ty. ok is false
// when the attribute is absent, null or invalid.
func (d *decoder) value(expr hcl.Expression, ty cty.Type) (cty.Value, bool) {
	if expr == nil {
		return cty.NilVal, false
	}
	v, diags := expr.Value(d.ctx)
	d.diags = append(d.diags, diags...)
	if diags.HasErrors() || v.IsNull() {
		return cty.NilVal, false
	}
	v, err := convert.Convert(v, ty)
	if err != nil {
		d.errorf(expr.Range(), "Incorrect attribute value type",
			"Expected %s: %s.", ty.FriendlyName(), err)
		return cty.NilVal, false
	}
	return v, v.IsKnown()
}

func (d *decoder) str(expr hcl.Expression) (string, bool) {
	v, ok := d.value(expr, cty.String)
	if !ok {
		return "", false
	}
	return v.AsString(), true
}

// strings evaluates a list of strings, keeping the range of each element
// when the list is written literally.
func (d *decoder) strings(expr hcl.Expression) []item {
	v, ok := d.value(expr, cty.List(cty.String))
	if !ok {
		return nil
	}
	elems := v.AsValueSlice()
	exprs, diags := hcl.ExprList(expr)
	if diags.HasErrors() || len(exprs) != len(elems) {
		exprs = nil
	}

	out := make([]item, 0, len(elems))
	for i, e := range elems {
		rng := expr.Range()
		if exprs != nil {
			rng = exprs[i].Range()
		}
		if e.IsNull() {
			d.errorf(rng, "Invalid list element", "Names must not be null.")
			continue
		}
		out = append(out, item{value: e.AsString(), rng: rng})
	}
	return out
}

func (d *decoder) errorf(rng hcl.Range, summary, format string, args ...any) {
	d.diags = append(d.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  rng.Ptr(),
	})
}

func values(names []item) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.value
	}
	return out
}

// trimPrefix drops the "gpu: " package prefix from a parse error.
func trimPrefix(err error) string {
	return strings.TrimPrefix(err.Error(), "gpu: ")
}
