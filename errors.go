package framegraph

import "errors"

// Sentinel errors. The graph itself degrades silently; these are returned
// only from strict and diagnostic entry points.
var (
	// ErrCyclicDependency is returned by Compile when WithStrictCycles is
	// set and the passes cannot be ordered.
	ErrCyclicDependency = errors.New("framegraph: cyclic dependency between passes")

	// ErrInvalidHandle is returned for zero or out-of-range handles.
	ErrInvalidHandle = errors.New("framegraph: invalid resource handle")

	// ErrNotCompiled is returned by CheckResolved before Compile.
	ErrNotCompiled = errors.New("framegraph: graph not compiled")

	// ErrUnresolvedResource is returned by CheckResolved when a logical
	// resource has no physical backing.
	ErrUnresolvedResource = errors.New("framegraph: unresolved resource")

	// ErrNilDevice is returned by ExecuteRecorded without a device.
	ErrNilDevice = errors.New("framegraph: nil device")
)
