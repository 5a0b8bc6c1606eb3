// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
)

// formatNames maps texture formats to their WebGPU spelling.
var formatNames = map[gputypes.TextureFormat]string{
	gputypes.TextureFormatUndefined:           "undefined",
	gputypes.TextureFormatR8Unorm:             "r8unorm",
	gputypes.TextureFormatRGBA8Unorm:          "rgba8unorm",
	gputypes.TextureFormatBGRA8Unorm:          "bgra8unorm",
	gputypes.TextureFormatRGBA16Float:         "rgba16float",
	gputypes.TextureFormatDepth32Float:        "depth32float",
	gputypes.TextureFormatDepth24PlusStencil8: "depth24plus-stencil8",
}

var textureUsageNames = map[string]gputypes.TextureUsage{
	"copy-src":          gputypes.TextureUsageCopySrc,
	"copy-dst":          gputypes.TextureUsageCopyDst,
	"texture-binding":   gputypes.TextureUsageTextureBinding,
	"storage-binding":   gputypes.TextureUsageStorageBinding,
	"render-attachment": gputypes.TextureUsageRenderAttachment,
}

var bufferUsageNames = map[string]gputypes.BufferUsage{
	"map-read":  gputypes.BufferUsageMapRead,
	"map-write": gputypes.BufferUsageMapWrite,
	"copy-src":  gputypes.BufferUsageCopySrc,
	"copy-dst":  gputypes.BufferUsageCopyDst,
	"index":     gputypes.BufferUsageIndex,
	"vertex":    gputypes.BufferUsageVertex,
	"uniform":   gputypes.BufferUsageUniform,
	"storage":   gputypes.BufferUsageStorage,
}

// FormatName returns the WebGPU name of f, or a numeric placeholder for
// formats this package does not know.
func FormatName(f gputypes.TextureFormat) string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}

// ParseFormat parses a WebGPU texture format name such as "rgba8unorm".
func ParseFormat(name string) (gputypes.TextureFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("gpu: unknown texture format %q", name)
}

// ParseTextureUsage combines WebGPU texture usage names such as
// "render-attachment".
func ParseTextureUsage(names []string) (gputypes.TextureUsage, error) {
	var u gputypes.TextureUsage
	for _, n := range names {
		v, ok := textureUsageNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("gpu: unknown texture usage %q (known: %s)", n, knownNames(textureUsageNames))
		}
		u |= v
	}
	return u, nil
}

// ParseBufferUsage combines WebGPU buffer usage names such as "storage".
func ParseBufferUsage(names []string) (gputypes.BufferUsage, error) {
	var u gputypes.BufferUsage
	for _, n := range names {
		v, ok := bufferUsageNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("gpu: unknown buffer usage %q (known: %s)", n, knownNames(bufferUsageNames))
		}
		u |= v
	}
	return u, nil
}

// ParseBufferKind parses a buffer kind name, case-insensitively.
func ParseBufferKind(name string) (BufferKind, error) {
	for k, n := range bufferKindNames {
		if strings.EqualFold(n, name) {
			return BufferKind(k), nil
		}
	}
	return 0, fmt.Errorf("gpu: unknown buffer kind %q", name)
}

func knownNames[V any](m map[string]V) string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
