// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graphfile

import (
	"fmt"
	"maps"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/framegraph"
)

// File is a decoded graph description. Every name it references has been
// checked against its declarations.
type File struct {
	Filename string

	// Vars holds the resolved variables, as seen by var.* expressions.
	Vars map[string]cty.Value

	Textures []framegraph.TextureDesc
	Buffers  []framegraph.BufferDesc
	Passes   []Pass

	// Target is the graph render target. Both names are empty when the
	// file has no top-level target block.
	Target Target

	// Viewport is the top-level viewport block, zero when absent.
	Viewport framegraph.Viewport
}

// Target names the color and depth textures of a render target. Either
// may be empty.
type Target struct {
	Color string
	Depth string
}

// IsZero reports whether neither attachment is set.
func (t Target) IsZero() bool { return t.Color == "" && t.Depth == "" }

// Ref is a resolved resource reference.
type Ref struct {
	Name string
	Kind framegraph.ResourceKind
}

// Pass is a declared pass.
type Pass struct {
	Name   string
	Reads  []Ref
	Writes []Ref

	// Target is the pass render target, nil when the pass renders to the
	// graph target.
	Target *Target

	Viewport framegraph.Viewport
	Draws    uint32
	Enabled  bool
}

// DefaultVars returns the variables every file can reference.
func DefaultVars() map[string]cty.Value {
	return map[string]cty.Value{
		"width":  cty.NumberIntVal(1280),
		"height": cty.NumberIntVal(720),
	}
}

// Load parses and decodes the file at path. vars override variable
// defaults and may be nil.
func Load(path string, vars map[string]cty.Value) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("graphfile: parse %s: %w", path, diags)
	}
	return decodeFile(path, f.Body, vars)
}

// Parse decodes src. filename is used in diagnostics only.
func Parse(src []byte, filename string, vars map[string]cty.Value) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("graphfile: parse %s: %w", filename, diags)
	}
	return decodeFile(filename, f.Body, vars)
}

func decodeFile(filename string, body hcl.Body, vars map[string]cty.Value) (*File, error) {
	d := newDecoder(vars)
	f := d.decode(body)
	if d.diags.HasErrors() {
		return nil, fmt.Errorf("graphfile: decode %s: %w", filename, d.diags)
	}
	f.Filename = filename
	framegraph.Logger().Debug("graphfile: loaded",
		"file", filename,
		"textures", len(f.Textures),
		"buffers", len(f.Buffers),
		"passes", len(f.Passes))
	return f, nil
}

// ParseVar parses a "name=value" assignment. The value is read as an HCL
// expression when it evaluates on its own, and as a literal string
// otherwise, so both width=1920 and format=rgba8unorm work.
func ParseVar(s string) (string, cty.Value, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || !hclsyntax.ValidIdentifier(name) {
		return "", cty.NilVal, fmt.Errorf("graphfile: invalid variable assignment %q, want name=value", s)
	}
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "<var>", hcl.InitialPos)
	if !diags.HasErrors() {
		if v, diags := expr.Value(nil); !diags.HasErrors() {
			return name, v, nil
		}
	}
	return name, cty.StringVal(raw), nil
}

// MergeVars returns DefaultVars overlaid with each of sets in order.
func MergeVars(sets ...map[string]cty.Value) map[string]cty.Value {
	out := DefaultVars()
	for _, s := range sets {
		maps.Copy(out, s)
	}
	return out
}
