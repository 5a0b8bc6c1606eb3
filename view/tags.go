// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package view

import "strings"

// Tag classifies a drawable for visibility filtering.
type Tag uint32

const (
	// TagUntagged is the tag of drawables that declare none.
	TagUntagged Tag = 1 << iota

	// TagEditorOnly marks editor-only drawables such as light icons.
	TagEditorOnly

	// TagPreviewOnly marks drawables shown only in asset previews.
	TagPreviewOnly
)

// Mask is a set of tags a view draws.
type Mask uint32

// Built-in visibility masks.
const (
	SceneMask   = Mask(TagUntagged | TagEditorOnly)
	PreviewMask = Mask(TagPreviewOnly)
)

// Matches reports whether a drawable with tag t is visible through m.
// A zero tag counts as TagUntagged.
func (m Mask) Matches(t Tag) bool {
	if t == 0 {
		t = TagUntagged
	}
	return uint32(m)&uint32(t) != 0
}

// Feature is a bit set of optional helper passes a view runs.
type Feature uint32

// Built-in features.
const (
	FeatureSkybox Feature = 1 << iota
	FeatureGrid
	FeatureAxis
	FeatureGizmo

	FeatureNone Feature = 0
	FeatureAll          = FeatureSkybox | FeatureGrid | FeatureAxis | FeatureGizmo
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureSkybox, "skybox"},
	{FeatureGrid, "grid"},
	{FeatureAxis, "axis"},
	{FeatureGizmo, "gizmo"},
}

// Has reports whether every bit of x is set in f.
func (f Feature) Has(x Feature) bool { return x != 0 && f&x == x }

// String returns the feature names joined with "|", or "none".
func (f Feature) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range featureNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
			f &^= n.f
		}
	}
	if f != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
